package config

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	// Identities
	From     common.Address // caller of mutating commands
	Admin    common.Address // initial REGISTRY_ADMIN when the registry is first created
	Deployer common.Address // deploys the registry and implementations

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool // Output in JSON format
	Timeout        time.Duration

	// Server settings
	ListenAddr string
	LogUID     bool
}

// StatePath returns the path of the registry snapshot
func (c *RuntimeConfig) StatePath() string {
	return joinData(c.DataDir, StateFileName)
}

// AuditPath returns the path of the audit journal database
func (c *RuntimeConfig) AuditPath() string {
	return joinData(c.DataDir, AuditFileName)
}
