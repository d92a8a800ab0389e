package domain

import (
	"regexp"

	"github.com/ethereum/go-ethereum/common"
)

// Name is the logical identifier a component is registered under.
type Name string

// Well-known component names.
const (
	ContractsRegistry         Name = "CONTRACTS_REGISTRY"
	BMI                       Name = "BMI"
	BMIStaking                Name = "BMI_STAKING"
	BMICoverStaking           Name = "BMI_COVER_STAKING"
	BMICoverStakingView       Name = "BMI_COVER_STAKING_VIEW"
	BMIUtilityNFT             Name = "BMI_UTILITY_NFT"
	BMITreasury               Name = "BMI_TREASURY"
	StkBMI                    Name = "STKBMI"
	StkBMIStaking             Name = "STKBMI_STAKING"
	VBMI                      Name = "VBMI"
	RewardsGenerator          Name = "REWARDS_GENERATOR"
	PolicyBookRegistry        Name = "POLICY_BOOK_REGISTRY"
	PolicyBookFabric          Name = "POLICY_BOOK_FABRIC"
	PolicyBookAdmin           Name = "POLICY_BOOK_ADMIN"
	PolicyRegistry            Name = "POLICY_REGISTRY"
	PolicyQuote               Name = "POLICY_QUOTE"
	ClaimVoting               Name = "CLAIM_VOTING"
	ClaimingRegistry          Name = "CLAIMING_REGISTRY"
	ReinsurancePool           Name = "REINSURANCE_POOL"
	CapitalPool               Name = "CAPITAL_POOL"
	LiquidityRegistry         Name = "LIQUIDITY_REGISTRY"
	LiquidityMining           Name = "LIQUIDITY_MINING"
	LiquidityMiningStaking    Name = "LIQUIDITY_MINING_STAKING"
	LiquidityMiningStakingETH Name = "LIQUIDITY_MINING_STAKING_ETH"
	ShieldMining              Name = "SHIELD_MINING"
	PriceFeed                 Name = "PRICE_FEED"
	ReputationSystem          Name = "REPUTATION_SYSTEM"
	USDT                      Name = "USDT"
	UniswapRouter             Name = "UNISWAP_ROUTER"
	UniswapBMIToETHPair       Name = "UNISWAP_BMI_TO_ETH_PAIR"
	Uniswapv2Router           Name = "UNISWAP_V2_ROUTER"
)

var namePattern = regexp.MustCompile(`^[A-Z0-9_]{1,32}$`)

// Validate checks the name fits a bytes32 constant of upper-case words.
func (n Name) Validate() error {
	if !namePattern.MatchString(string(n)) {
		return Revert("name", ErrInvalidName, "%q must be 1-32 characters of A-Z, 0-9 or _", string(n))
	}
	return nil
}

// Bytes32 returns the name right-padded into a 32 byte word.
func (n Name) Bytes32() common.Hash {
	var h common.Hash
	copy(h[:], n)
	return h
}

func (n Name) String() string {
	return string(n)
}

// WellKnownNames lists every predefined component name.
func WellKnownNames() []Name {
	return []Name{
		ContractsRegistry, BMI, BMIStaking, BMICoverStaking, BMICoverStakingView,
		BMIUtilityNFT, BMITreasury, StkBMI, StkBMIStaking, VBMI, RewardsGenerator,
		PolicyBookRegistry, PolicyBookFabric, PolicyBookAdmin, PolicyRegistry,
		PolicyQuote, ClaimVoting, ClaimingRegistry, ReinsurancePool, CapitalPool,
		LiquidityRegistry, LiquidityMining, LiquidityMiningStaking,
		LiquidityMiningStakingETH, ShieldMining, PriceFeed, ReputationSystem, USDT,
		UniswapRouter, UniswapBMIToETHPair, Uniswapv2Router,
	}
}
