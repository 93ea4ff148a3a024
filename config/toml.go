package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/creachadair/atomicfile"
	"github.com/pkg/errors"
)

// defaultDirPerm is the default permissions used when creating directories.
const defaultDirPerm = 0700

var configTemplate *template.Template

func init() {
	var err error
	if configTemplate, err = template.New("configFileTemplate").Parse(defaultConfigTemplate); err != nil {
		panic(err)
	}
}

// EnsureRoot creates the root, config, and data directories if they don't
// exist and writes the default config file when none is present.
func EnsureRoot(rootDir string) error {
	for _, dir := range []string{rootDir, filepath.Join(rootDir, defaultConfigDir), filepath.Join(rootDir, defaultDataDir)} {
		if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
			return errors.Wrapf(err, "could not create directory %q", dir)
		}
	}

	configFilePath := filepath.Join(rootDir, defaultConfigFilePath)
	if _, err := os.Stat(configFilePath); os.IsNotExist(err) {
		return WriteConfigFile(rootDir, DefaultConfig())
	}
	return nil
}

// WriteConfigFile renders config using the template and writes it to
// the config file under rootDir.
func WriteConfigFile(rootDir string, config *Config) error {
	return config.WriteToTemplate(filepath.Join(rootDir, defaultConfigFilePath))
}

// WriteToTemplate writes the config to the exact file specified by
// the path, in the default toml template and does not mangle the path
// or filename at all.
func (cfg *Config) WriteToTemplate(path string) error {
	var buffer bytes.Buffer

	if err := configTemplate.Execute(&buffer, cfg); err != nil {
		return err
	}

	if _, err := atomicfile.WriteAll(path, &buffer, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// fileConfig mirrors the TOML layout of the config file.
type fileConfig struct {
	LogLevel  string `toml:"log-level"`
	LogFormat string `toml:"log-format"`

	Sync struct {
		ChainID       string `toml:"chain-id"`
		PeerID        string `toml:"peer-id"`
		StartHeight   int64  `toml:"start-height"`
		TargetHeight  int64  `toml:"target-height"`
		BatchSize     int64  `toml:"batch-size"`
		BlockInterval string `toml:"block-interval"`
		WaitTimeout   string `toml:"wait-timeout"`
	} `toml:"sync"`

	Instrumentation struct {
		Prometheus           bool   `toml:"prometheus"`
		PrometheusListenAddr string `toml:"prometheus-listen-addr"`
		Namespace            string `toml:"namespace"`
	} `toml:"instrumentation"`
}

// LoadFile reads a config file without going through viper. Keys missing
// from the file keep their default values. The returned config is rooted at
// rootDir and validated.
func LoadFile(rootDir string) (*Config, error) {
	def := DefaultConfig()

	var fc fileConfig
	fc.LogLevel = def.LogLevel
	fc.LogFormat = def.LogFormat
	fc.Sync.ChainID = def.Sync.ChainID
	fc.Sync.PeerID = def.Sync.PeerID
	fc.Sync.StartHeight = def.Sync.StartHeight
	fc.Sync.TargetHeight = def.Sync.TargetHeight
	fc.Sync.BatchSize = def.Sync.BatchSize
	fc.Sync.BlockInterval = def.Sync.BlockInterval.String()
	fc.Sync.WaitTimeout = def.Sync.WaitTimeout.String()
	fc.Instrumentation.Prometheus = def.Instrumentation.Prometheus
	fc.Instrumentation.PrometheusListenAddr = def.Instrumentation.PrometheusListenAddr
	fc.Instrumentation.Namespace = def.Instrumentation.Namespace

	path := filepath.Join(rootDir, defaultConfigFilePath)
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}

	blockInterval, err := time.ParseDuration(fc.Sync.BlockInterval)
	if err != nil {
		return nil, errors.Wrap(err, "invalid block-interval")
	}
	waitTimeout, err := time.ParseDuration(fc.Sync.WaitTimeout)
	if err != nil {
		return nil, errors.Wrap(err, "invalid wait-timeout")
	}

	cfg := &Config{
		BaseConfig: BaseConfig{
			LogLevel:  fc.LogLevel,
			LogFormat: fc.LogFormat,
		},
		Sync: &SyncConfig{
			ChainID:       fc.Sync.ChainID,
			PeerID:        fc.Sync.PeerID,
			StartHeight:   fc.Sync.StartHeight,
			TargetHeight:  fc.Sync.TargetHeight,
			BatchSize:     fc.Sync.BatchSize,
			BlockInterval: blockInterval,
			WaitTimeout:   waitTimeout,
		},
		Instrumentation: &InstrumentationConfig{
			Prometheus:           fc.Instrumentation.Prometheus,
			PrometheusListenAddr: fc.Instrumentation.PrometheusListenAddr,
			Namespace:            fc.Instrumentation.Namespace,
		},
	}
	cfg.SetRoot(rootDir)

	if err := cfg.ValidateBasic(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Note: any changes to the comments/variables/mapstructure
// must be reflected in the appropriate struct in config/config.go
const defaultConfigTemplate = `# This is a TOML config file.
# For more information, see https://github.com/toml-lang/toml

#######################################################################
###                   Main Base Config Options                      ###
#######################################################################

# Output level for logging, including package level options
log-level = "{{ .BaseConfig.LogLevel }}"

# Output format: 'plain' (plain text) or 'json'
log-format = "{{ .BaseConfig.LogFormat }}"

#######################################################################
###                 Block Download Configuration                    ###
#######################################################################
[sync]

# Chain the simulated peer serves blocks for
chain-id = "{{ .Sync.ChainID }}"

# Node ID of the simulated peer
peer-id = "{{ .Sync.PeerID }}"

# Height already present locally
start-height = {{ .Sync.StartHeight }}

# Chain tip reported by the peer
target-height = {{ .Sync.TargetHeight }}

# Number of blocks delivered per event
batch-size = {{ .Sync.BatchSize }}

# Delay between two deliveries
block-interval = "{{ .Sync.BlockInterval }}"

# Maximum time to wait for the download to finish. "0s" waits forever.
wait-timeout = "{{ .Sync.WaitTimeout }}"

#######################################################################
###                 Instrumentation Configuration                   ###
#######################################################################
[instrumentation]

# When true, Prometheus metrics are served under /metrics on
# PrometheusListenAddr.
prometheus = {{ .Instrumentation.Prometheus }}

# Address to listen for Prometheus collector(s) connections
prometheus-listen-addr = "{{ .Instrumentation.PrometheusListenAddr }}"

# Instrumentation namespace
namespace = "{{ .Instrumentation.Namespace }}"
`
