package components

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/host"
	"github.com/trebuchet-org/treb-registry/internal/registry"
)

const (
	RewardsGeneratorArtifact = "RewardsGenerator"
	BMICoverStakingArtifact  = "BMICoverStaking"
)

var (
	rewardsStakeSlot = host.Slot("rewards", "totalStake")
	coverStakedSlot  = host.Slot("coverStaking", "totalStaked")
)

// RewardsGenerator accepts stake updates only from the BMI_COVER_STAKING
// address it was last injected with.
type RewardsGenerator struct{}

var rewardsDeps = Dependant{
	Artifact: RewardsGeneratorArtifact,
	Needs:    []domain.Name{domain.BMICoverStaking},
}

func (RewardsGenerator) Artifact() string { return RewardsGeneratorArtifact }

func (RewardsGenerator) Invoke(call *host.Call) (any, error) {
	switch call.Method {
	case registry.MethodSetDependencies:
		return nil, rewardsDeps.SetDependencies(call)
	case "updateStake":
		staking := Binding(call.Storage, domain.BMICoverStaking)
		if staking == (common.Address{}) || call.Caller != staking {
			return nil, domain.Revert(RewardsGeneratorArtifact, domain.ErrUnauthorized, "caller is not the BMICoverStaking")
		}
		amount, err := bigInput(RewardsGeneratorArtifact, call)
		if err != nil {
			return nil, err
		}
		total := call.Storage.GetBig(rewardsStakeSlot)
		total.Add(total, amount)
		call.Storage.SetBig(rewardsStakeSlot, total)
		return total, nil
	case "totalStake":
		return call.Storage.GetBig(rewardsStakeSlot), nil
	case "bmiCoverStaking":
		return Binding(call.Storage, domain.BMICoverStaking), nil
	}
	return nil, unknownMethod(RewardsGeneratorArtifact, call.Method)
}

// BMICoverStaking forwards every stake to the RewardsGenerator it was
// injected with. Together with RewardsGenerator it forms a dependency cycle.
type BMICoverStaking struct{}

var coverStakingDeps = Dependant{
	Artifact: BMICoverStakingArtifact,
	Needs:    []domain.Name{domain.BMI, domain.RewardsGenerator},
}

func (BMICoverStaking) Artifact() string { return BMICoverStakingArtifact }

func (BMICoverStaking) Invoke(call *host.Call) (any, error) {
	switch call.Method {
	case registry.MethodSetDependencies:
		return nil, coverStakingDeps.SetDependencies(call)
	case "stake":
		amount, err := bigInput(BMICoverStakingArtifact, call)
		if err != nil {
			return nil, err
		}
		total := call.Storage.GetBig(coverStakedSlot)
		total.Add(total, amount)
		call.Storage.SetBig(coverStakedSlot, total)
		if _, err := call.Tx.Call(call.Self, Binding(call.Storage, domain.RewardsGenerator), "updateStake", amount); err != nil {
			return nil, err
		}
		return total, nil
	case "totalStaked":
		return call.Storage.GetBig(coverStakedSlot), nil
	case "rewardsGenerator":
		return Binding(call.Storage, domain.RewardsGenerator), nil
	case "bmi":
		return Binding(call.Storage, domain.BMI), nil
	}
	return nil, unknownMethod(BMICoverStakingArtifact, call.Method)
}
