// Package components holds the component logic that can be deployed behind
// registry names, and the catalog that maps artifact names to that logic.
package components

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/host"
	"github.com/trebuchet-org/treb-registry/internal/registry"
)

var (
	injectorSlot = host.Slot("dependant", "injector")
	bindingsSlot = host.Slot("dependant", "bindings")
)

// Dependant implements the dependency entry point shared by components.
// The first account to inject becomes the injector; later injections must
// come from the same account.
type Dependant struct {
	Artifact string
	Needs    []domain.Name
}

// SetDependencies resolves every needed name through the registry handle in
// call.Input and replaces the stored bindings.
func (d Dependant) SetDependencies(call *host.Call) error {
	injector := Injector(call.Storage)
	if injector != (common.Address{}) && injector != call.Caller {
		return domain.Revert(d.Artifact, domain.ErrUnauthorized, "not an injector")
	}
	res, ok := call.Input.(registry.Resolver)
	if !ok {
		return domain.Revert(d.Artifact, domain.ErrInvalidArgument, "setDependencies expects a registry resolver")
	}

	resolved := make([]common.Address, len(d.Needs))
	for i, name := range d.Needs {
		addr, err := res.Resolve(call.Context(), name)
		if err != nil {
			return err
		}
		resolved[i] = addr
	}

	if injector == (common.Address{}) {
		call.Storage.SetAddress(injectorSlot, call.Caller)
	}
	for i, name := range d.Needs {
		call.Storage.SetAddress(BindingSlot(name), resolved[i])
	}
	return nil
}

// Injector returns the account allowed to inject dependencies
func Injector(s host.StorageReader) common.Address {
	return s.GetAddress(injectorSlot)
}

// BindingSlot is the storage slot caching the address of name
func BindingSlot(name domain.Name) common.Hash {
	return host.MapSlot(bindingsSlot, name.Bytes32())
}

// Binding returns the cached address of name, zero if never injected.
func Binding(s host.StorageReader, name domain.Name) common.Address {
	return s.GetAddress(BindingSlot(name))
}

// Bindings returns the cached addresses of every needed name.
func (d Dependant) Bindings(s host.StorageReader) map[domain.Name]common.Address {
	out := make(map[domain.Name]common.Address, len(d.Needs))
	for _, name := range d.Needs {
		out[name] = Binding(s, name)
	}
	return out
}

func unknownMethod(artifact, method string) error {
	return domain.Revert(artifact, domain.ErrUnknownMethod, "unknown method %q", method)
}

func bigInput(artifact string, call *host.Call) (*big.Int, error) {
	switch v := call.Input.(type) {
	case *big.Int:
		if v == nil || v.Sign() < 0 {
			break
		}
		return v, nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int:
		if v >= 0 {
			return big.NewInt(int64(v)), nil
		}
	}
	return nil, domain.Revert(artifact, domain.ErrInvalidArgument, "%s expects a non-negative amount", call.Method)
}
