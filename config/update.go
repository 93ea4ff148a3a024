package config

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/creachadair/atomicfile"
	"github.com/creachadair/tomledit"
	"github.com/creachadair/tomledit/parser"
	"github.com/creachadair/tomledit/transform"
	"github.com/pkg/errors"
)

// setting is one key of the config file with its value in TOML syntax.
// Keys of the top-level table have an empty table name.
type setting struct {
	table string
	name  string
	value string
	doc   string
}

func (s setting) String() string {
	if s.table == "" {
		return s.name
	}
	return s.table + "." + s.name
}

func quoted(v string) string { return strconv.Quote(v) }

func duration(d time.Duration) string { return strconv.Quote(d.String()) }

func integer(n int64) string { return strconv.FormatInt(n, 10) }

// settings lists every key the template writes, in template order.
func (cfg *Config) settings() []setting {
	return []setting{
		{"", "log-level", quoted(cfg.LogLevel), "Output level for logging, including package level options"},
		{"", "log-format", quoted(cfg.LogFormat), "Output format: 'plain' (plain text) or 'json'"},

		{"sync", "chain-id", quoted(cfg.Sync.ChainID), "Chain the simulated peer serves blocks for"},
		{"sync", "peer-id", quoted(cfg.Sync.PeerID), "Node ID of the simulated peer"},
		{"sync", "start-height", integer(cfg.Sync.StartHeight), "Height already present locally"},
		{"sync", "target-height", integer(cfg.Sync.TargetHeight), "Chain tip reported by the peer"},
		{"sync", "batch-size", integer(cfg.Sync.BatchSize), "Number of blocks delivered per event"},
		{"sync", "block-interval", duration(cfg.Sync.BlockInterval), "Delay between two deliveries"},
		{"sync", "wait-timeout", duration(cfg.Sync.WaitTimeout), `Maximum time to wait for the download to finish. "0s" waits forever.`},

		{"instrumentation", "prometheus", strconv.FormatBool(cfg.Instrumentation.Prometheus), "When true, Prometheus metrics are served under /metrics"},
		{"instrumentation", "prometheus-listen-addr", quoted(cfg.Instrumentation.PrometheusListenAddr), "Address to listen for Prometheus collector(s) connections"},
		{"instrumentation", "namespace", quoted(cfg.Instrumentation.Namespace), "Instrumentation namespace"},
	}
}

// updatePlan returns the steps that set every key of the document to the
// value held by cfg.
func updatePlan(cfg *Config) transform.Plan {
	var plan transform.Plan
	for _, s := range cfg.settings() {
		s := s
		plan = append(plan, transform.Step{
			Desc: fmt.Sprintf("Set %s to %s", s, s.value),
			T:    transform.Func(s.apply),
		})
	}
	return plan
}

func (s setting) apply(ctx context.Context, doc *tomledit.Document) error {
	value, err := parser.ParseValue(s.value)
	if err != nil {
		return errors.Wrapf(err, "invalid value for %s", s)
	}

	var key parser.Key
	if s.table != "" {
		key = parser.Key{s.table}
	}

	if found := doc.First(append(key, s.name)...); found != nil {
		if !found.IsMapping() {
			return fmt.Errorf("%s is not a key-value mapping", s)
		}
		// keep the comments around the old value
		found.Value.X = value.X
		return nil
	}

	if s.table != "" && transform.FindTable(doc, s.table) == nil {
		doc.Sections = append(doc.Sections, &tomledit.Section{
			Heading: &parser.Heading{Name: key},
		})
	}
	return transform.EnsureKey(key, &parser.KeyValue{
		Block: parser.Comments{s.doc},
		Name:  parser.Key{s.name},
		Value: value,
	})(ctx, doc)
}

// UpdateConfigFile sets every key of the config file under rootDir to its
// value in cfg. Comments, key order and keys the file carries beyond the
// known ones are left in place. A missing file is written from the
// template.
func UpdateConfigFile(ctx context.Context, rootDir string, cfg *Config) error {
	path := filepath.Join(rootDir, defaultConfigFilePath)

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return WriteConfigFile(rootDir, cfg)
	} else if err != nil {
		return err
	}
	doc, err := tomledit.Parse(f)
	f.Close()
	if err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}

	if err := updatePlan(cfg).Apply(ctx, doc); err != nil {
		return errors.Wrapf(err, "updating %s", path)
	}

	var buf bytes.Buffer
	if err := tomledit.Format(&buf, doc); err != nil {
		return errors.Wrap(err, "formatting config")
	}
	if _, err := atomicfile.WriteAll(path, &buf, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
