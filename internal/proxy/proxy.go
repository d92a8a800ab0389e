// Package proxy implements the address-stable forwarding unit behind proxied
// components. State lives at the proxy address, logic lives at the
// implementation, and only the configured admin may swap the implementation.
package proxy

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/host"
)

// Artifact is the catalog name of the proxy logic
const Artifact = "TransparentUpgradeableProxy"

// Administrative methods handled by the proxy itself
const (
	MethodUpgradeTo      = "upgradeTo"
	MethodChangeAdmin    = "changeAdmin"
	MethodAdmin          = "admin"
	MethodImplementation = "implementation"
)

// EIP-1967 storage slots
var (
	ImplementationSlot = common.HexToHash("0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc")
	AdminSlot          = common.HexToHash("0xb53127684a568b3173ae13b9f8a6016e243e63b6e8ee1178d6a717850b5d6103")
)

// Proxy is the forwarding logic deployed at every proxied component address.
type Proxy struct{}

var _ host.Contract = Proxy{}

func (Proxy) Artifact() string { return Artifact }

func (p Proxy) Invoke(call *host.Call) (any, error) {
	switch call.Method {
	case MethodUpgradeTo:
		if err := onlyAdmin(call); err != nil {
			return nil, err
		}
		impl, err := addressInput(call)
		if err != nil {
			return nil, err
		}
		return nil, setImplementation(call.Tx, call.Self, call.Caller, call.Storage, impl)
	case MethodChangeAdmin:
		if err := onlyAdmin(call); err != nil {
			return nil, err
		}
		admin, err := addressInput(call)
		if err != nil {
			return nil, err
		}
		setAdmin(call.Tx, call.Self, call.Caller, call.Storage, admin)
		return nil, nil
	case MethodAdmin:
		if err := onlyAdmin(call); err != nil {
			return nil, err
		}
		return Admin(call.Storage), nil
	case MethodImplementation:
		if err := onlyAdmin(call); err != nil {
			return nil, err
		}
		return Implementation(call.Storage), nil
	}

	impl := Implementation(call.Storage)
	return call.Tx.DelegateCall(call, impl, call.Method, call.Input)
}

// Deploy creates a new proxy from deployer pointing at impl and administered by admin.
func Deploy(tx *host.Tx, deployer, impl, admin common.Address) (common.Address, error) {
	if impl == (common.Address{}) {
		return common.Address{}, domain.Revert("proxy", domain.ErrZeroAddress, "implementation is the zero address")
	}
	addr, err := tx.Deploy(deployer, Proxy{})
	if err != nil {
		return common.Address{}, err
	}
	storage := tx.Storage(addr)
	if err := setImplementation(tx, addr, deployer, storage, impl); err != nil {
		return common.Address{}, err
	}
	setAdmin(tx, addr, deployer, storage, admin)
	return addr, nil
}

// Implementation reads the current implementation from proxy storage
func Implementation(s host.StorageReader) common.Address {
	return s.GetAddress(ImplementationSlot)
}

// Admin reads the current admin from proxy storage
func Admin(s host.StorageReader) common.Address {
	return s.GetAddress(AdminSlot)
}

// IsProxy reports whether the account at addr runs the proxy logic.
func IsProxy(v *host.View, addr common.Address) bool {
	code, ok := v.Code(addr)
	if !ok {
		return false
	}
	_, ok = code.(Proxy)
	return ok
}

func onlyAdmin(call *host.Call) error {
	admin := Admin(call.Storage)
	if admin == (common.Address{}) {
		return domain.Revert("proxy", domain.ErrUnauthorized, "proxy admin has been renounced")
	}
	if call.Caller != admin {
		return domain.Revert("proxy", domain.ErrUnauthorized, "caller %s is not the proxy admin", call.Caller.Hex())
	}
	return nil
}

func setImplementation(tx *host.Tx, self, sender common.Address, s *host.Storage, impl common.Address) error {
	if _, ok := tx.Code(impl); !ok {
		return domain.Revert("proxy", domain.ErrNotContract, "new implementation %s is not a contract", impl.Hex())
	}
	s.SetAddress(ImplementationSlot, impl)
	tx.Emit(domain.AuditEvent{
		Type:           domain.EventTypeUpgraded,
		Emitter:        self,
		Sender:         sender,
		Implementation: impl,
	})
	return nil
}

func setAdmin(tx *host.Tx, self, sender common.Address, s *host.Storage, admin common.Address) {
	prev := Admin(s)
	s.SetAddress(AdminSlot, admin)
	tx.Emit(domain.AuditEvent{
		Type:          domain.EventTypeAdminChanged,
		Emitter:       self,
		Sender:        sender,
		PreviousAdmin: prev,
		NewAdmin:      admin,
	})
}

func addressInput(call *host.Call) (common.Address, error) {
	addr, ok := call.Input.(common.Address)
	if !ok {
		return common.Address{}, domain.Revert("proxy", domain.ErrInvalidArgument, "%s expects an address argument", call.Method)
	}
	return addr, nil
}
