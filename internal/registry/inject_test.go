package registry_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-registry/internal/components"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/host"
	"github.com/trebuchet-org/treb-registry/internal/registry"
)

// rebinder tries to change the name table while it is being injected
type rebinder struct {
	reg *registry.Registry
}

func (rebinder) Artifact() string { return "Rebinder" }

func (r rebinder) Invoke(call *host.Call) (any, error) {
	if call.Method != registry.MethodSetDependencies {
		return nil, domain.Revert("Rebinder", domain.ErrUnknownMethod, "unknown method")
	}
	return nil, r.reg.RegisterDirect(call.Context(), admin, domain.BMI, common.HexToAddress("0xbad"))
}

// detachedRebinder changes the name table with a context of its own
type detachedRebinder struct {
	reg *registry.Registry
}

func (detachedRebinder) Artifact() string { return "DetachedRebinder" }

func (r detachedRebinder) Invoke(call *host.Call) (any, error) {
	if call.Method != registry.MethodSetDependencies {
		return nil, domain.Revert("DetachedRebinder", domain.ErrUnknownMethod, "unknown method")
	}
	if _, err := r.reg.Resolve(context.Background(), domain.BMI); !errors.Is(err, domain.ErrReentrantCall) {
		return nil, fmt.Errorf("read from contract code was not refused: %v", err)
	}
	return nil, r.reg.RegisterDirect(context.Background(), admin, domain.BMI, common.HexToAddress("0xbad"))
}

// backgroundResolver resolves BMI with a context unrelated to the running call
type backgroundResolver struct{}

func (backgroundResolver) Artifact() string { return "BackgroundResolver" }

func (backgroundResolver) Invoke(call *host.Call) (any, error) {
	if call.Method != registry.MethodSetDependencies {
		return nil, domain.Revert("BackgroundResolver", domain.ErrUnknownMethod, "unknown method")
	}
	addr, err := call.Input.(registry.Resolver).Resolve(context.Background(), domain.BMI)
	if err != nil {
		return nil, err
	}
	call.Storage.SetAddress(components.BindingSlot(domain.BMI), addr)
	return nil, nil
}

// pinger calls ping on BMI while it is being injected
type pinger struct{}

func (pinger) Artifact() string { return "Pinger" }

func (pinger) Invoke(call *host.Call) (any, error) {
	if call.Method != registry.MethodSetDependencies {
		return nil, domain.Revert("Pinger", domain.ErrUnknownMethod, "unknown method")
	}
	addr, err := call.Input.(registry.Resolver).Resolve(call.Context(), domain.BMI)
	if err != nil {
		return nil, err
	}
	return call.Tx.Call(call.Self, addr, "ping", nil)
}

// returns runs fn and fails the test if it does not return in time
func returns(t *testing.T, fn func() error) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("call did not return")
		return nil
	}
}

func binding(t *testing.T, f *fixture, addr common.Address, name domain.Name) common.Address {
	t.Helper()
	var out common.Address
	require.NoError(t, f.h.View(f.ctx, func(v *host.View) error {
		out = components.Binding(v.Storage(addr), name)
		return nil
	}))
	return out
}

func TestInject_CallerAuthorizationFromBinding(t *testing.T) {
	f := newFixture(t)
	impl := f.deploy(t, components.RewardsGenerator{})
	rewards, err := f.reg.RegisterProxied(f.ctx, admin, domain.RewardsGenerator, impl)
	require.NoError(t, err)

	x := common.HexToAddress("0x5000000000000000000000000000000000000005")
	require.NoError(t, f.reg.RegisterDirect(f.ctx, admin, domain.BMICoverStaking, x))
	require.NoError(t, f.reg.Inject(f.ctx, admin, domain.RewardsGenerator))

	_, err = f.call(x, rewards, "updateStake", big.NewInt(10))
	require.NoError(t, err)

	for _, from := range []common.Address{stranger, admin, f.reg.Address()} {
		_, err = f.call(from, rewards, "updateStake", big.NewInt(10))
		require.ErrorIs(t, err, domain.ErrUnauthorized)

		var rev *domain.RevertError
		require.ErrorAs(t, err, &rev)
		assert.Equal(t, components.RewardsGeneratorArtifact, rev.Op)
	}

	out, err := f.call(stranger, rewards, "totalStake", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(10), out.(*big.Int).Int64())
}

func TestInject_CircularDependencies(t *testing.T) {
	f := newFixture(t)
	rgImpl := f.deploy(t, components.RewardsGenerator{})
	csImpl := f.deploy(t, components.BMICoverStaking{})
	token := f.deploy(t, components.Token{})

	// phase one: register everything
	require.NoError(t, f.reg.RegisterDirect(f.ctx, admin, domain.BMI, token))
	rewards, err := f.reg.RegisterProxied(f.ctx, admin, domain.RewardsGenerator, rgImpl)
	require.NoError(t, err)
	staking, err := f.reg.RegisterProxied(f.ctx, admin, domain.BMICoverStaking, csImpl)
	require.NoError(t, err)

	// phase two: wire
	require.NoError(t, f.reg.Inject(f.ctx, admin, domain.RewardsGenerator))
	require.NoError(t, f.reg.Inject(f.ctx, admin, domain.BMICoverStaking))

	assert.Equal(t, staking, binding(t, f, rewards, domain.BMICoverStaking))
	assert.Equal(t, rewards, binding(t, f, staking, domain.RewardsGenerator))
	assert.Equal(t, token, binding(t, f, staking, domain.BMI))

	_, err = f.call(stranger, staking, "stake", big.NewInt(3))
	require.NoError(t, err)
	out, err := f.call(stranger, rewards, "totalStake", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.(*big.Int).Int64())
}

func TestInject_Idempotent(t *testing.T) {
	f := newFixture(t)
	impl := f.deploy(t, components.RewardsGenerator{})
	rewards, err := f.reg.RegisterProxied(f.ctx, admin, domain.RewardsGenerator, impl)
	require.NoError(t, err)
	require.NoError(t, f.reg.RegisterDirect(f.ctx, admin, domain.BMICoverStaking, external))

	require.NoError(t, f.reg.Inject(f.ctx, admin, domain.RewardsGenerator))
	first := binding(t, f, rewards, domain.BMICoverStaking)

	require.NoError(t, f.reg.Inject(f.ctx, admin, domain.RewardsGenerator))
	second := binding(t, f, rewards, domain.BMICoverStaking)

	assert.Equal(t, external, first)
	assert.Equal(t, first, second)
}

func TestInject_StaleUntilReinjected(t *testing.T) {
	f := newFixture(t)
	impl := f.deploy(t, components.RewardsGenerator{})
	rewards, err := f.reg.RegisterProxied(f.ctx, admin, domain.RewardsGenerator, impl)
	require.NoError(t, err)

	oldStaking := common.HexToAddress("0x0100")
	newStaking := common.HexToAddress("0x0200")
	require.NoError(t, f.reg.RegisterDirect(f.ctx, admin, domain.BMICoverStaking, oldStaking))
	require.NoError(t, f.reg.Inject(f.ctx, admin, domain.RewardsGenerator))

	require.NoError(t, f.reg.RegisterDirect(f.ctx, admin, domain.BMICoverStaking, newStaking))
	assert.Equal(t, oldStaking, binding(t, f, rewards, domain.BMICoverStaking))

	_, err = f.call(newStaking, rewards, "updateStake", big.NewInt(1))
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	require.NoError(t, f.reg.Inject(f.ctx, admin, domain.RewardsGenerator))
	assert.Equal(t, newStaking, binding(t, f, rewards, domain.BMICoverStaking))

	_, err = f.call(newStaking, rewards, "updateStake", big.NewInt(1))
	require.NoError(t, err)
}

func TestInject_MissingDependencyKeepsBinding(t *testing.T) {
	f := newFixture(t)
	v1 := f.deploy(t, components.StakingV1{})
	v2 := f.deploy(t, components.StakingV2{})
	token := f.deploy(t, components.Token{})
	require.NoError(t, f.reg.RegisterDirect(f.ctx, admin, domain.BMI, token))
	p, err := f.reg.RegisterProxied(f.ctx, admin, domain.BMIStaking, v1)
	require.NoError(t, err)
	require.NoError(t, f.reg.Inject(f.ctx, admin, domain.BMIStaking))

	// v2 also needs REWARDS_GENERATOR, which is not registered yet
	require.NoError(t, f.reg.Upgrade(f.ctx, admin, domain.BMIStaking, v2))
	otherToken := f.deploy(t, components.Token{})
	require.NoError(t, f.reg.RegisterDirect(f.ctx, admin, domain.BMI, otherToken))
	snapBefore, stateBefore := f.snapshot(t)

	err = f.reg.Inject(f.ctx, admin, domain.BMIStaking)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, domain.ReasonOf(err), string(domain.RewardsGenerator))

	// BMI resolved before the failure, but the binding was not partially rewritten
	assert.Equal(t, token, binding(t, f, p, domain.BMI))
	snapAfter, stateAfter := f.snapshot(t)
	assert.Equal(t, snapBefore, snapAfter)
	assert.Equal(t, stateBefore, stateAfter)
}

func TestInject_Failures(t *testing.T) {
	t.Run("unregistered component", func(t *testing.T) {
		f := newFixture(t)
		err := f.reg.Inject(f.ctx, admin, domain.RewardsGenerator)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unauthorized", func(t *testing.T) {
		f := newFixture(t)
		impl := f.deploy(t, components.RewardsGenerator{})
		_, err := f.reg.RegisterProxied(f.ctx, admin, domain.RewardsGenerator, impl)
		require.NoError(t, err)
		require.NoError(t, f.reg.RegisterDirect(f.ctx, admin, domain.BMICoverStaking, external))

		err = f.reg.Inject(f.ctx, stranger, domain.RewardsGenerator)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("component without entry point", func(t *testing.T) {
		f := newFixture(t)
		token := f.deploy(t, components.Token{})
		require.NoError(t, f.reg.RegisterDirect(f.ctx, admin, domain.BMI, token))
		require.NoError(t, f.reg.RegisterDirect(f.ctx, admin, domain.USDT, external))

		assert.ErrorIs(t, f.reg.Inject(f.ctx, admin, domain.BMI), domain.ErrNotInjectable)
		assert.ErrorIs(t, f.reg.Inject(f.ctx, admin, domain.USDT), domain.ErrNotInjectable)
	})

	t.Run("injector guard", func(t *testing.T) {
		f := newFixture(t)
		impl := f.deploy(t, components.RewardsGenerator{})
		rewards, err := f.reg.RegisterProxied(f.ctx, admin, domain.RewardsGenerator, impl)
		require.NoError(t, err)
		require.NoError(t, f.reg.RegisterDirect(f.ctx, admin, domain.BMICoverStaking, external))
		require.NoError(t, f.reg.Inject(f.ctx, admin, domain.RewardsGenerator))

		// a second registry cannot rewire a component the first one injected
		other, err := registry.New(f.ctx, f.h, stranger, stranger, nil)
		require.NoError(t, err)
		require.NoError(t, other.RegisterDirect(f.ctx, stranger, domain.RewardsGenerator, rewards))
		require.NoError(t, other.RegisterDirect(f.ctx, stranger, domain.BMICoverStaking, stranger))

		err = other.Inject(f.ctx, stranger, domain.RewardsGenerator)
		require.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Contains(t, domain.ReasonOf(err), "not an injector")
		assert.Equal(t, external, binding(t, f, rewards, domain.BMICoverStaking))
	})

	t.Run("reentrant registry mutation", func(t *testing.T) {
		f := newFixture(t)
		addr := f.deploy(t, rebinder{reg: f.reg})
		require.NoError(t, f.reg.RegisterDirect(f.ctx, admin, domain.PolicyQuote, addr))

		err := f.reg.Inject(f.ctx, admin, domain.PolicyQuote)
		require.ErrorIs(t, err, domain.ErrReentrantCall)

		_, err = f.reg.Resolve(f.ctx, domain.BMI)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestInjectAll(t *testing.T) {
	f := newFixture(t)
	rgImpl := f.deploy(t, components.RewardsGenerator{})
	csImpl := f.deploy(t, components.BMICoverStaking{})
	token := f.deploy(t, components.Token{})

	require.NoError(t, f.reg.RegisterDirect(f.ctx, admin, domain.BMI, token))
	rewards, err := f.reg.RegisterProxied(f.ctx, admin, domain.RewardsGenerator, rgImpl)
	require.NoError(t, err)
	staking, err := f.reg.RegisterProxied(f.ctx, admin, domain.BMICoverStaking, csImpl)
	require.NoError(t, err)

	t.Run("unauthorized", func(t *testing.T) {
		_, err := f.reg.InjectAll(f.ctx, stranger)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	injected, err := f.reg.InjectAll(f.ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, []domain.Name{domain.BMICoverStaking, domain.RewardsGenerator}, injected)
	assert.Equal(t, staking, binding(t, f, rewards, domain.BMICoverStaking))
	assert.Equal(t, rewards, binding(t, f, staking, domain.RewardsGenerator))
}

func TestInjectAll_AbortsOnFailure(t *testing.T) {
	f := newFixture(t)
	token := f.deploy(t, components.Token{})
	v1 := f.deploy(t, components.StakingV1{})
	rgImpl := f.deploy(t, components.RewardsGenerator{})

	require.NoError(t, f.reg.RegisterDirect(f.ctx, admin, domain.BMI, token))
	staking, err := f.reg.RegisterProxied(f.ctx, admin, domain.BMIStaking, v1)
	require.NoError(t, err)
	// REWARDS_GENERATOR needs BMI_COVER_STAKING, which is never registered
	_, err = f.reg.RegisterProxied(f.ctx, admin, domain.RewardsGenerator, rgImpl)
	require.NoError(t, err)
	_, stateBefore := f.snapshot(t)

	_, err = f.reg.InjectAll(f.ctx, admin)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// BMI_STAKING sorts before REWARDS_GENERATOR, but its binding was rolled back
	assert.Equal(t, common.Address{}, binding(t, f, staking, domain.BMI))
	_, stateAfter := f.snapshot(t)
	assert.Equal(t, stateBefore, stateAfter)
}

func TestInject_ContextIndependent(t *testing.T) {
	t.Run("resolver works with any context", func(t *testing.T) {
		f := newFixture(t)
		token := f.deploy(t, components.Token{})
		require.NoError(t, f.reg.RegisterDirect(f.ctx, admin, domain.BMI, token))
		addr := f.deploy(t, backgroundResolver{})
		require.NoError(t, f.reg.RegisterDirect(f.ctx, admin, domain.PolicyQuote, addr))

		err := returns(t, func() error { return f.reg.Inject(f.ctx, admin, domain.PolicyQuote) })
		require.NoError(t, err)
		assert.Equal(t, token, binding(t, f, addr, domain.BMI))
	})

	t.Run("resolver reports missing names", func(t *testing.T) {
		f := newFixture(t)
		addr := f.deploy(t, backgroundResolver{})
		require.NoError(t, f.reg.RegisterDirect(f.ctx, admin, domain.PolicyQuote, addr))

		err := returns(t, func() error { return f.reg.Inject(f.ctx, admin, domain.PolicyQuote) })
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("registry entry from contract code is refused", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.reg.RegisterDirect(f.ctx, admin, domain.BMI, external))
		addr := f.deploy(t, detachedRebinder{reg: f.reg})
		require.NoError(t, f.reg.RegisterDirect(f.ctx, admin, domain.PolicyQuote, addr))

		err := returns(t, func() error { return f.reg.Inject(f.ctx, admin, domain.PolicyQuote) })
		require.ErrorIs(t, err, domain.ErrReentrantCall)
		assert.Contains(t, domain.ReasonOf(err), "state mutation from contract code")

		got, err := f.reg.Resolve(f.ctx, domain.BMI)
		require.NoError(t, err)
		assert.Equal(t, external, got)

		// the host accepts calls again once the failed one unwound
		require.NoError(t, f.reg.RegisterDirect(f.ctx, admin, domain.USDT, external))
	})
}

func TestInject_FailingDependencyCall(t *testing.T) {
	for _, tt := range []struct {
		name string
		bmi  func(t *testing.T, f *fixture) common.Address
		kind error
	}{
		{
			name: "dependency without the method",
			bmi:  func(t *testing.T, f *fixture) common.Address { return f.deploy(t, components.Token{}) },
			kind: domain.ErrUnknownMethod,
		},
		{
			name: "dependency without code",
			bmi:  func(*testing.T, *fixture) common.Address { return external },
			kind: domain.ErrNotContract,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.reg.RegisterDirect(f.ctx, admin, domain.BMI, tt.bmi(t, f)))
			require.NoError(t, f.reg.RegisterDirect(f.ctx, admin, domain.PolicyQuote, f.deploy(t, pinger{})))

			err := f.reg.Inject(f.ctx, admin, domain.PolicyQuote)
			require.ErrorIs(t, err, tt.kind)
			assert.NotErrorIs(t, err, domain.ErrNotInjectable)

			_, err = f.reg.InjectAll(f.ctx, admin)
			require.ErrorIs(t, err, tt.kind)
			assert.NotErrorIs(t, err, domain.ErrNotInjectable)
		})
	}
}
