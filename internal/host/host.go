// Package host provides the serialized execution environment components run in.
//
// A Host owns every account (address, optional code, storage, nonce) and the
// audit event log. State changes only happen inside Execute: calls run one at a
// time, every write is journaled, and a call that returns an error is unwound
// completely before the next one is observed.
package host

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"go.uber.org/atomic"
)

// Contract is logic deployed at an address.
type Contract interface {
	// Artifact names the logic so state snapshots can rebuild it
	Artifact() string
	// Invoke handles one call. Storage in call belongs to call.Self, which is
	// the proxy address when the call was delegated.
	Invoke(call *Call) (any, error)
}

type account struct {
	code    Contract
	storage *Storage
	nonce   uint64
}

type executionKey struct{}

// Host is the single-writer state machine shared by the registry and all components.
type Host struct {
	mu       sync.RWMutex
	accounts map[common.Address]*account
	events   []domain.AuditEvent
	seq      uint64
	journal  []func()
	calls    atomic.Int32 // contract invocations currently on the stack
	now      func() time.Time
	log      *slog.Logger
}

// New creates an empty host
func New(log *slog.Logger) *Host {
	if log == nil {
		log = slog.Default()
	}
	return &Host{
		accounts: make(map[common.Address]*account),
		now:      time.Now,
		log:      log,
	}
}

// SetClock overrides the time source used for event timestamps
func (h *Host) SetClock(now func() time.Time) {
	h.now = now
}

// Now returns the current host time in UTC
func (h *Host) Now() time.Time {
	return h.now().UTC()
}

// Execute runs fn as one atomic call. If fn returns an error every write it
// made is reverted. Execute refuses to start while another Execute is in
// progress on the same call chain (detected through ctx) or while contract
// code is running.
func (h *Host) Execute(ctx context.Context, fn func(tx *Tx) error) error {
	if h.InExecution(ctx) {
		return domain.Revert("host", domain.ErrReentrantCall, "state mutation while a call is in progress")
	}
	if h.calls.Load() > 0 {
		return domain.Revert("host", domain.ErrReentrantCall, "state mutation from contract code")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	tx := &Tx{host: h, ctx: context.WithValue(ctx, executionKey{}, h)}
	err := fn(tx)
	if err != nil {
		h.revertTo(0)
		h.log.Debug("call reverted", "err", err)
	}
	h.journal = nil
	return err
}

// View runs fn with read access to the host. Inside Execute (same ctx chain)
// it runs without taking the lock, which is already held. Contract code
// reads through its Call and gets ErrReentrantCall here.
func (h *Host) View(ctx context.Context, fn func(v *View) error) error {
	if h.InExecution(ctx) {
		return fn(&View{host: h})
	}
	if h.calls.Load() > 0 {
		return domain.Revert("host", domain.ErrReentrantCall, "host read from contract code outside its call")
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return fn(&View{host: h})
}

// ResumeSequence makes the next event sequence number follow after. It only
// moves the counter forward.
func (h *Host) ResumeSequence(after uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if after > h.seq {
		h.seq = after
	}
}

// Seq returns the sequence number of the last emitted event
func (h *Host) Seq() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.seq
}

// InExecution reports whether ctx belongs to a running Execute on this host.
func (h *Host) InExecution(ctx context.Context) bool {
	owner, ok := ctx.Value(executionKey{}).(*Host)
	return ok && owner == h
}

func (h *Host) record(undo func()) {
	h.journal = append(h.journal, undo)
}

func (h *Host) revertTo(mark int) {
	for i := len(h.journal) - 1; i >= mark; i-- {
		h.journal[i]()
	}
	h.journal = h.journal[:mark]
}

func (h *Host) account(addr common.Address) *account {
	return h.accounts[addr]
}

// View is read-only access to host state.
type View struct {
	host *Host
}

// Code returns the logic deployed at addr
func (v *View) Code(addr common.Address) (Contract, bool) {
	acc := v.host.account(addr)
	if acc == nil || acc.code == nil {
		return nil, false
	}
	return acc.code, true
}

// Storage returns read access to the storage of addr
func (v *View) Storage(addr common.Address) StorageReader {
	acc := v.host.account(addr)
	if acc == nil {
		return newStorage(v.host)
	}
	return acc.storage
}

// Nonce returns the number of accounts addr has created
func (v *View) Nonce(addr common.Address) uint64 {
	if acc := v.host.account(addr); acc != nil {
		return acc.nonce
	}
	return 0
}

// Events returns audit events with a sequence number greater than after.
func (v *View) Events(after uint64) []domain.AuditEvent {
	idx := sort.Search(len(v.host.events), func(i int) bool {
		return v.host.events[i].Seq > after
	})
	out := make([]domain.AuditEvent, len(v.host.events)-idx)
	copy(out, v.host.events[idx:])
	return out
}

// Accounts lists every known address in ascending order
func (v *View) Accounts() []common.Address {
	addrs := make([]common.Address, 0, len(v.host.accounts))
	for addr := range v.host.accounts {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return addrs[i].Cmp(addrs[j]) < 0
	})
	return addrs
}
