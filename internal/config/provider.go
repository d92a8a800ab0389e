package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// DataDirName is the default data directory inside the project root
	DataDirName   = ".treg"
	StateFileName = "registry.json"
	AuditFileName = "audit.db"

	// DefaultAccount is the first well-known development account
	DefaultAccount = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	dataDir := v.GetString("data_dir")
	if dataDir == "" {
		dataDir = filepath.Join(projectRoot, DataDirName)
	} else if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(projectRoot, dataDir)
	}

	cfg := &RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        dataDir,
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
		ListenAddr:     v.GetString("listen_addr"),
		LogUID:         v.GetBool("log_uid"),
	}

	var err error
	if cfg.Admin, err = parseAddress("admin", v.GetString("admin")); err != nil {
		return nil, err
	}
	if cfg.Deployer, err = parseAddress("deployer", v.GetString("deployer")); err != nil {
		return nil, err
	}
	from := v.GetString("from")
	if from == "" {
		cfg.From = cfg.Admin
	} else if cfg.From, err = parseAddress("from", from); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseAddress(key, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid %s address: %q", key, value)
	}
	return common.HexToAddress(value), nil
}

// FindProjectRoot walks up from the current directory looking for a treg
// config file or data directory. Falls back to the current directory.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		for _, marker := range []string{"treg.yaml", "treg.yml", "treg.toml", "treg.json", DataDirName} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	loadEnvFiles(projectRoot)

	v := viper.New()

	// treg.yaml, treg.toml or treg.json
	v.SetConfigName("treg")
	v.AddConfigPath(projectRoot)
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, DataDirName))
	}

	v.SetEnvPrefix("TREG")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("timeout", "1m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)
	v.SetDefault("admin", DefaultAccount)
	v.SetDefault("deployer", DefaultAccount)
	v.SetDefault("listen_addr", "127.0.0.1:8080")

	// Try to read config file (ignore error if not found)
	_ = v.ReadInConfig()

	if cmd != nil {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if err := v.BindPFlag(key, f); err != nil {
				panic(err)
			}
		})
	}

	return v
}

func joinData(dataDir, name string) string {
	return filepath.Join(dataDir, name)
}
