package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/syncwatch/syncwatch/types"
)

const (
	// LogFormatPlain is a format for plain text
	LogFormatPlain = "plain"
	// LogFormatJSON is a format for json output
	LogFormatJSON = "json"

	// DefaultLogLevel defines a default log level as INFO.
	DefaultLogLevel = "info"

	// DefaultSyncwatchDir is the default home directory name.
	DefaultSyncwatchDir = ".syncwatch"
	defaultConfigDir    = "config"
	defaultDataDir      = "data"

	defaultConfigFileName = "config.toml"
)

var defaultConfigFilePath = filepath.Join(defaultConfigDir, defaultConfigFileName)

// Config defines the top level configuration for syncwatch.
type Config struct {
	// Top level options use an anonymous struct
	BaseConfig `mapstructure:",squash"`

	// Options for the simulated peer and the wait on completion
	Sync *SyncConfig `mapstructure:"sync"`

	// Options for metrics collection
	Instrumentation *InstrumentationConfig `mapstructure:"instrumentation"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseConfig:      DefaultBaseConfig(),
		Sync:            DefaultSyncConfig(),
		Instrumentation: DefaultInstrumentationConfig(),
	}
}

// TestConfig returns a configuration that can be used for testing
func TestConfig() *Config {
	return &Config{
		BaseConfig:      TestBaseConfig(),
		Sync:            TestSyncConfig(),
		Instrumentation: TestInstrumentationConfig(),
	}
}

// SetRoot sets the RootDir for all Config structs
func (cfg *Config) SetRoot(root string) *Config {
	cfg.BaseConfig.RootDir = root
	return cfg
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *Config) ValidateBasic() error {
	if err := cfg.BaseConfig.ValidateBasic(); err != nil {
		return err
	}
	if err := cfg.Sync.ValidateBasic(); err != nil {
		return pkgerrors.Wrap(err, "error in [sync] section")
	}
	if err := cfg.Instrumentation.ValidateBasic(); err != nil {
		return pkgerrors.Wrap(err, "error in [instrumentation] section")
	}
	return nil
}

//-----------------------------------------------------------------------------
// BaseConfig

// BaseConfig defines the base configuration.
type BaseConfig struct {
	// The root directory for all data.
	// This should be set in viper so it can unmarshal into this struct
	RootDir string `mapstructure:"home"`

	// Output level for logging
	LogLevel string `mapstructure:"log-level"`

	// Output format: 'plain' (plain text) or 'json'
	LogFormat string `mapstructure:"log-format"`
}

// DefaultBaseConfig returns a default base configuration.
func DefaultBaseConfig() BaseConfig {
	return BaseConfig{
		LogLevel:  DefaultLogLevel,
		LogFormat: LogFormatPlain,
	}
}

// TestBaseConfig returns a base configuration for testing.
func TestBaseConfig() BaseConfig {
	cfg := DefaultBaseConfig()
	cfg.LogLevel = "debug"
	return cfg
}

// ConfigFile returns the full path to the config.toml file.
func (cfg BaseConfig) ConfigFile() string {
	return rootify(defaultConfigFilePath, cfg.RootDir)
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg BaseConfig) ValidateBasic() error {
	switch cfg.LogFormat {
	case LogFormatPlain, LogFormatJSON:
	default:
		return errors.New("unknown log format (must be 'plain' or 'json')")
	}
	return nil
}

//-----------------------------------------------------------------------------
// SyncConfig

// SyncConfig configures the simulated peer that feeds the progress tracker
// and how long the controller waits for the download to finish.
type SyncConfig struct {
	// Chain the simulated peer serves blocks for
	ChainID string `mapstructure:"chain-id"`

	// Node ID of the simulated peer
	PeerID string `mapstructure:"peer-id"`

	// Height already present locally
	StartHeight int64 `mapstructure:"start-height"`

	// Chain tip reported by the peer
	TargetHeight int64 `mapstructure:"target-height"`

	// Number of blocks delivered per event
	BatchSize int64 `mapstructure:"batch-size"`

	// Delay between two deliveries
	BlockInterval time.Duration `mapstructure:"block-interval"`

	// Maximum time to wait for completion. 0 waits forever.
	WaitTimeout time.Duration `mapstructure:"wait-timeout"`
}

// DefaultSyncConfig returns a default configuration for the simulated peer.
func DefaultSyncConfig() *SyncConfig {
	return &SyncConfig{
		ChainID:       "syncwatch-sim",
		PeerID:        "5d3a8e4b0c2f4a19b7e6d1c0a9f8e7d6c5b4a392",
		StartHeight:   0,
		TargetHeight:  5000,
		BatchSize:     25,
		BlockInterval: 10 * time.Millisecond,
		WaitTimeout:   0,
	}
}

// TestSyncConfig returns a configuration for testing the simulated peer.
func TestSyncConfig() *SyncConfig {
	cfg := DefaultSyncConfig()
	cfg.TargetHeight = 200
	cfg.BatchSize = 10
	cfg.BlockInterval = time.Millisecond
	cfg.WaitTimeout = 10 * time.Second
	return cfg
}

// Blocks returns the number of blocks the peer has to deliver.
func (cfg *SyncConfig) Blocks() int64 {
	return cfg.TargetHeight - cfg.StartHeight
}

// ValidateBasic performs basic validation.
func (cfg *SyncConfig) ValidateBasic() error {
	if cfg.ChainID == "" {
		return errors.New("chain-id can't be empty")
	}
	if _, err := types.NewNodeID(cfg.PeerID); err != nil {
		return pkgerrors.Wrap(err, "invalid peer-id")
	}
	if cfg.StartHeight < 0 {
		return errors.New("start-height can't be negative")
	}
	if cfg.TargetHeight < cfg.StartHeight {
		return fmt.Errorf("target-height (%d) can't be below start-height (%d)", cfg.TargetHeight, cfg.StartHeight)
	}
	if cfg.BatchSize <= 0 {
		return errors.New("batch-size must be positive")
	}
	if cfg.BlockInterval < 0 {
		return errors.New("block-interval can't be negative")
	}
	if cfg.WaitTimeout < 0 {
		return errors.New("wait-timeout can't be negative")
	}
	return nil
}

//-----------------------------------------------------------------------------
// InstrumentationConfig

// InstrumentationConfig defines the configuration for metrics reporting.
type InstrumentationConfig struct {
	// When true, Prometheus metrics are served under /metrics on
	// PrometheusListenAddr.
	// Check out the documentation for the list of available metrics.
	Prometheus bool `mapstructure:"prometheus"`

	// Address to listen for Prometheus collector(s) connections.
	PrometheusListenAddr string `mapstructure:"prometheus-listen-addr"`

	// Instrumentation namespace.
	Namespace string `mapstructure:"namespace"`
}

// DefaultInstrumentationConfig returns a default configuration for metrics
// reporting.
func DefaultInstrumentationConfig() *InstrumentationConfig {
	return &InstrumentationConfig{
		Prometheus:           false,
		PrometheusListenAddr: ":26660",
		Namespace:            "syncwatch",
	}
}

// TestInstrumentationConfig returns a default configuration for metrics
// reporting.
func TestInstrumentationConfig() *InstrumentationConfig {
	return DefaultInstrumentationConfig()
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *InstrumentationConfig) ValidateBasic() error {
	if cfg.Namespace == "" {
		return errors.New("namespace can't be empty")
	}
	if cfg.Prometheus && cfg.PrometheusListenAddr == "" {
		return errors.New("prometheus-listen-addr can't be empty when prometheus is enabled")
	}
	return nil
}

//-----------------------------------------------------------------------------
// Utils

// helper function to make config creation independent of root dir
func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
