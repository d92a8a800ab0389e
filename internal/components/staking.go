package components

import (
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/host"
	"github.com/trebuchet-org/treb-registry/internal/registry"
)

const (
	StakingV1Artifact = "BMIStakingV1"
	StakingV2Artifact = "BMIStakingV2"
)

// Storage layout shared by both versions. V2 only appends.
var (
	stakingTotalSlot    = host.Slot("staking", "totalStaked")
	stakingMigratedSlot = host.Slot("staking", "v2", "migrated")
	stakingBaseSlot     = host.Slot("staking", "v2", "migratedTotal")
)

// StakingV1 keeps a running total of deposits and depends on the BMI token.
type StakingV1 struct{}

var stakingV1Deps = Dependant{
	Artifact: StakingV1Artifact,
	Needs:    []domain.Name{domain.BMI},
}

func (StakingV1) Artifact() string { return StakingV1Artifact }

func (StakingV1) Invoke(call *host.Call) (any, error) {
	switch call.Method {
	case registry.MethodSetDependencies:
		return nil, stakingV1Deps.SetDependencies(call)
	case "deposit":
		return deposit(StakingV1Artifact, call)
	case "totalStaked":
		return call.Storage.GetBig(stakingTotalSlot), nil
	case "version":
		return uint64(1), nil
	}
	return nil, unknownMethod(StakingV1Artifact, call.Method)
}

// StakingV2 is storage compatible with StakingV1. It adds a dependency on
// REWARDS_GENERATOR and a one-shot migrate initializer.
type StakingV2 struct{}

var stakingV2Deps = Dependant{
	Artifact: StakingV2Artifact,
	Needs:    []domain.Name{domain.BMI, domain.RewardsGenerator},
}

func (StakingV2) Artifact() string { return StakingV2Artifact }

func (StakingV2) Invoke(call *host.Call) (any, error) {
	switch call.Method {
	case registry.MethodSetDependencies:
		return nil, stakingV2Deps.SetDependencies(call)
	case "migrate":
		if call.Storage.GetUint64(stakingMigratedSlot) != 0 {
			return nil, domain.Revert(StakingV2Artifact, domain.ErrUnauthorized, "already migrated")
		}
		call.Storage.SetUint64(stakingMigratedSlot, 1)
		total := call.Storage.GetBig(stakingTotalSlot)
		call.Storage.SetBig(stakingBaseSlot, total)
		return total, nil
	case "migrated":
		return call.Storage.GetUint64(stakingMigratedSlot) != 0, nil
	case "migratedTotal":
		return call.Storage.GetBig(stakingBaseSlot), nil
	case "deposit":
		if call.Storage.GetUint64(stakingMigratedSlot) == 0 {
			return nil, domain.Revert(StakingV2Artifact, domain.ErrUnauthorized, "not migrated")
		}
		return deposit(StakingV2Artifact, call)
	case "totalStaked":
		return call.Storage.GetBig(stakingTotalSlot), nil
	case "rewardsGenerator":
		return Binding(call.Storage, domain.RewardsGenerator), nil
	case "version":
		return uint64(2), nil
	}
	return nil, unknownMethod(StakingV2Artifact, call.Method)
}

func deposit(artifact string, call *host.Call) (any, error) {
	amount, err := bigInput(artifact, call)
	if err != nil {
		return nil, err
	}
	total := call.Storage.GetBig(stakingTotalSlot)
	total.Add(total, amount)
	call.Storage.SetBig(stakingTotalSlot, total)
	return total, nil
}
