package host

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-registry/internal/domain"
)

// AccountState is the serializable form of an account
type AccountState struct {
	Address  common.Address              `json:"address"`
	Artifact string                      `json:"artifact,omitempty"`
	Nonce    uint64                      `json:"nonce,omitempty"`
	Storage  map[common.Hash]common.Hash `json:"storage,omitempty"`
}

// State is the serializable form of a host
type State struct {
	Accounts []AccountState      `json:"accounts"`
	Events   []domain.AuditEvent `json:"events"`
	Seq      uint64              `json:"seq"`
}

// CodeLoader rebuilds the logic for an artifact name
type CodeLoader func(artifact string) (Contract, error)

// Export captures the full host state.
func (h *Host) Export() *State {
	h.mu.RLock()
	defer h.mu.RUnlock()

	state := &State{
		Events: append([]domain.AuditEvent(nil), h.events...),
		Seq:    h.seq,
	}
	for _, addr := range (&View{host: h}).Accounts() {
		acc := h.accounts[addr]
		as := AccountState{Address: addr, Nonce: acc.nonce}
		if acc.code != nil {
			as.Artifact = acc.code.Artifact()
		}
		if len(acc.storage.slots) > 0 {
			as.Storage = make(map[common.Hash]common.Hash, len(acc.storage.slots))
			for k, v := range acc.storage.slots {
				as.Storage[k] = v
			}
		}
		state.Accounts = append(state.Accounts, as)
	}
	return state
}

// Import replaces the host state with a previously exported one.
func (h *Host) Import(state *State, load CodeLoader) error {
	accounts := make(map[common.Address]*account, len(state.Accounts))
	for _, as := range state.Accounts {
		acc := &account{nonce: as.Nonce, storage: newStorage(h)}
		if as.Artifact != "" {
			code, err := load(as.Artifact)
			if err != nil {
				return fmt.Errorf("failed to load code for %s: %w", as.Address.Hex(), err)
			}
			acc.code = code
		}
		for k, v := range as.Storage {
			acc.storage.slots[k] = v
		}
		accounts[as.Address] = acc
	}

	events := append([]domain.AuditEvent(nil), state.Events...)
	sort.Slice(events, func(i, j int) bool { return events[i].Seq < events[j].Seq })

	h.mu.Lock()
	defer h.mu.Unlock()
	h.accounts = accounts
	h.events = events
	h.seq = state.Seq
	return nil
}
