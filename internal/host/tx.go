package host

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/treb-registry/internal/domain"
)

// Message is a method invocation that has not been sent yet
type Message struct {
	Method string
	Input  any
}

// Call is one invocation delivered to a Contract.
type Call struct {
	Tx      *Tx
	Self    common.Address // account whose storage is in use
	Caller  common.Address
	Method  string
	Input   any
	Storage *Storage
}

// Context returns the context of the running call chain
func (c *Call) Context() context.Context {
	return c.Tx.Context()
}

// Tx is the write handle of one Execute call.
type Tx struct {
	host *Host
	ctx  context.Context
}

// Context carries the execution marker; pass it to anything invoked from a call.
func (tx *Tx) Context() context.Context {
	return tx.ctx
}

// View returns read access that shares this transaction's lock
func (tx *Tx) View() *View {
	return &View{host: tx.host}
}

// Savepoint runs fn and reverts only the writes fn made when it fails.
func (tx *Tx) Savepoint(fn func() error) error {
	mark := len(tx.host.journal)
	if err := fn(); err != nil {
		tx.host.revertTo(mark)
		return err
	}
	return nil
}

// NewAccount creates an account without code at the next address derived from deployer.
func (tx *Tx) NewAccount(deployer common.Address) common.Address {
	return tx.create(deployer, nil)
}

// Deploy places code at the next address derived from deployer and its nonce.
func (tx *Tx) Deploy(deployer common.Address, code Contract) (common.Address, error) {
	if code == nil {
		return common.Address{}, domain.Revert("deploy", domain.ErrNotContract, "no code to deploy")
	}
	return tx.create(deployer, code), nil
}

func (tx *Tx) create(deployer common.Address, code Contract) common.Address {
	h := tx.host
	from := h.ensureAccount(deployer)
	addr := crypto.CreateAddress(deployer, from.nonce)

	from.nonce++
	h.record(func() { from.nonce-- })

	prev, existed := h.accounts[addr]
	h.accounts[addr] = &account{code: code, storage: newStorage(h)}
	h.record(func() {
		if existed {
			h.accounts[addr] = prev
		} else {
			delete(h.accounts, addr)
		}
	})

	h.log.Debug("account created", "deployer", deployer, "address", addr, "code", code != nil)
	return addr
}

func (h *Host) ensureAccount(addr common.Address) *account {
	acc := h.accounts[addr]
	if acc != nil {
		return acc
	}
	acc = &account{storage: newStorage(h)}
	h.accounts[addr] = acc
	h.record(func() { delete(h.accounts, addr) })
	return acc
}

// Code returns the logic deployed at addr
func (tx *Tx) Code(addr common.Address) (Contract, bool) {
	return tx.View().Code(addr)
}

// Storage returns writable storage of addr. It is meant for the registry's own
// bookkeeping on accounts it controls; contracts use call.Storage.
func (tx *Tx) Storage(addr common.Address) *Storage {
	return tx.host.ensureAccount(addr).storage
}

// CallError is the failure of a call made by contract code into another
// account. It keeps the inner error matchable and its message unchanged.
type CallError struct {
	To     common.Address
	Method string
	Err    error
}

func (e *CallError) Error() string {
	return e.Err.Error()
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// Call invokes method on the contract at to, running with to's storage.
// Failures of calls made from inside contract code come back as *CallError.
func (tx *Tx) Call(from, to common.Address, method string, input any) (any, error) {
	nested := tx.host.calls.Load() > 0
	acc := tx.host.account(to)
	if acc == nil || acc.code == nil {
		err := domain.Revert("call", domain.ErrNotContract, "no code at %s", to.Hex())
		if nested {
			err = &CallError{To: to, Method: method, Err: err}
		}
		return nil, err
	}
	var out any
	err := tx.Savepoint(func() error {
		var err error
		out, err = tx.invoke(acc.code, &Call{
			Tx:      tx,
			Self:    to,
			Caller:  from,
			Method:  method,
			Input:   input,
			Storage: acc.storage,
		})
		return err
	})
	if err != nil && nested {
		err = &CallError{To: to, Method: method, Err: err}
	}
	return out, err
}

func (tx *Tx) invoke(code Contract, call *Call) (any, error) {
	tx.host.calls.Inc()
	defer tx.host.calls.Dec()
	return code.Invoke(call)
}

// DelegateCall runs the code at impl in the context of call: same self,
// caller and storage.
func (tx *Tx) DelegateCall(call *Call, impl common.Address, method string, input any) (any, error) {
	acc := tx.host.account(impl)
	if acc == nil || acc.code == nil {
		return nil, domain.Revert("delegatecall", domain.ErrNotContract, "no code at %s", impl.Hex())
	}
	return tx.invoke(acc.code, &Call{
		Tx:      tx,
		Self:    call.Self,
		Caller:  call.Caller,
		Method:  method,
		Input:   input,
		Storage: call.Storage,
	})
}

// Emit appends ev to the audit log, stamping sequence number and time.
func (tx *Tx) Emit(ev domain.AuditEvent) {
	h := tx.host
	h.seq++
	ev.Seq = h.seq
	ev.Time = h.Now()
	h.events = append(h.events, ev)
	h.record(func() {
		h.events = h.events[:len(h.events)-1]
		h.seq--
	})
}
