package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	cfg "github.com/syncwatch/syncwatch/config"
	"github.com/syncwatch/syncwatch/libs/log"
)

func simulateRootCmd(conf *cfg.Config, out *bytes.Buffer) *cobra.Command {
	cmd := RootCommand(conf, log.NewNopLogger())
	cmd.AddCommand(
		MakeInitCommand(conf),
		MakeSimulateCommand(conf),
	)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SilenceUsage = true
	return cmd
}

func logMessages(t *testing.T, out string) []string {
	t.Helper()

	var messages []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			// cobra writes plain text errors to the same buffer
			continue
		}
		if msg, ok := entry["message"].(string); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}

func TestSimulateCommand(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	home := t.TempDir()
	conf := clearConfig(t, home)

	var out bytes.Buffer
	cmd := simulateRootCmd(conf, &out)

	err := testSetup(ctx, t, cmd, []string{
		"--home", home,
		"--log-format", "json",
		"simulate",
		"--sync.target-height", "120",
		"--sync.batch-size", "30",
		"--sync.block-interval", "1ms",
	}, nil)
	require.NoError(t, err)

	messages := logMessages(t, out.String())
	require.Contains(t, messages, "Downloading block chain of size 90.")
	require.Contains(t, messages, "Done downloading block chain")
	require.Contains(t, messages, "block chain synced")

	var progress []string
	for _, msg := range messages {
		if strings.HasPrefix(msg, "Chain download") {
			progress = append(progress, msg)
		}
	}
	require.Equal(t, []string{
		"Chain download 0% done",
		"Chain download 33% done",
		"Chain download 66% done",
	}, progress)

	require.Equal(t, int64(120), conf.Sync.TargetHeight)
}

func TestSimulateCommandTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	home := t.TempDir()
	conf := clearConfig(t, home)

	var out bytes.Buffer
	cmd := simulateRootCmd(conf, &out)

	err := testSetup(ctx, t, cmd, []string{
		"--home", home,
		"--log-format", "json",
		"simulate",
		"--sync.block-interval", "1h",
		"--sync.wait-timeout", "50ms",
	}, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	messages := logMessages(t, out.String())
	require.Contains(t, messages, "block chain download did not finish")
	require.NotContains(t, messages, "Done downloading block chain")
}

func TestSimulateCommandInvalidFlags(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	home := t.TempDir()
	conf := clearConfig(t, home)

	var out bytes.Buffer
	cmd := simulateRootCmd(conf, &out)
	cmd.SilenceErrors = true

	err := testSetup(ctx, t, cmd, []string{
		"--home", home,
		"simulate",
		"--sync.batch-size", "0",
	}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "[sync]")
}

func TestInitCommandForce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	home := t.TempDir()
	conf := clearConfig(t, home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, "config"), 0700))
	require.NoError(t, os.WriteFile(conf.ConfigFile(), []byte("# tuned for the lab box\n[sync]\ntarget-height = 300\n"), 0600))

	var out bytes.Buffer
	cmd := simulateRootCmd(conf, &out)

	err := testSetup(ctx, t, cmd, []string{"--home", home, "--log-level", "debug", "init", "--force"}, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(conf.ConfigFile())
	require.NoError(t, err)
	require.Contains(t, string(data), `log-level = "debug"`)
	require.Contains(t, string(data), "# tuned for the lab box")

	loaded, err := cfg.LoadFile(home)
	require.NoError(t, err)
	require.Equal(t, "debug", loaded.LogLevel)
	require.Equal(t, int64(300), loaded.Sync.TargetHeight)
}

func TestVersionCommand(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	home := t.TempDir()
	conf := clearConfig(t, home)
	var out bytes.Buffer
	cmd := RootCommand(conf, log.NewNopLogger())
	cmd.AddCommand(VersionCmd)
	cmd.SetOut(&out)

	require.NoError(t, testSetup(ctx, t, cmd, []string{"--home", home, "version"}, nil))
	require.NotEmpty(t, strings.TrimSpace(out.String()))
}
