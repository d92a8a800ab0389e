package host

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Slot derives a storage slot from a namespaced key, e.g. Slot("rewards", "stake").
func Slot(parts ...string) common.Hash {
	return crypto.Keccak256Hash([]byte(strings.Join(parts, ".")))
}

// MapSlot derives the slot of key inside the mapping rooted at base,
// using the same layout rule as solidity mappings.
func MapSlot(base common.Hash, key common.Hash) common.Hash {
	return crypto.Keccak256Hash(key.Bytes(), base.Bytes())
}

// StorageReader is read access to an account's storage.
type StorageReader interface {
	Get(slot common.Hash) common.Hash
	GetAddress(slot common.Hash) common.Address
	GetUint64(slot common.Hash) uint64
	GetBig(slot common.Hash) *big.Int
}

// Storage is the persistent word-addressed state of one account. Writes are
// journaled on the owning host so a failing call unwinds them.
type Storage struct {
	host  *Host
	slots map[common.Hash]common.Hash
}

func newStorage(h *Host) *Storage {
	return &Storage{host: h, slots: make(map[common.Hash]common.Hash)}
}

func (s *Storage) Get(slot common.Hash) common.Hash {
	return s.slots[slot]
}

// Set writes val at slot. Writing the zero word clears the slot.
func (s *Storage) Set(slot common.Hash, val common.Hash) {
	prev, existed := s.slots[slot]
	s.host.record(func() {
		if existed {
			s.slots[slot] = prev
		} else {
			delete(s.slots, slot)
		}
	})
	if val == (common.Hash{}) {
		delete(s.slots, slot)
		return
	}
	s.slots[slot] = val
}

func (s *Storage) GetAddress(slot common.Hash) common.Address {
	return common.BytesToAddress(s.Get(slot).Bytes())
}

func (s *Storage) SetAddress(slot common.Hash, addr common.Address) {
	s.Set(slot, common.BytesToHash(addr.Bytes()))
}

func (s *Storage) GetUint64(slot common.Hash) uint64 {
	return s.Get(slot).Big().Uint64()
}

func (s *Storage) SetUint64(slot common.Hash, v uint64) {
	s.Set(slot, common.BigToHash(new(big.Int).SetUint64(v)))
}

func (s *Storage) GetBig(slot common.Hash) *big.Int {
	return s.Get(slot).Big()
}

func (s *Storage) SetBig(slot common.Hash, v *big.Int) {
	s.Set(slot, common.BigToHash(v))
}

// Len returns the number of non-zero slots.
func (s *Storage) Len() int {
	return len(s.slots)
}
