package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Role names an administrative permission set.
type Role string

const (
	// RegistryAdminRole gates every mutating registry operation
	RegistryAdminRole Role = "REGISTRY_ADMIN"
)

// ID returns the keccak256 identifier of the role.
func (r Role) ID() common.Hash {
	return crypto.Keccak256Hash([]byte(r))
}

func (r Role) String() string {
	return string(r)
}
