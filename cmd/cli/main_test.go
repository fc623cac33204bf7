package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radartools/models"
)

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "a.xlsx"), outputPath("out", "a.xlsx"))
	assert.Equal(t, "/tmp/a.xlsx", outputPath("out", "/tmp/a.xlsx"))
	assert.Equal(t, "a.xlsx", outputPath("", "a.xlsx"))
}

func TestOperatingFlags_OnlyChangedFlagsApply(t *testing.T) {
	var op operatingFlags
	cmd := &cobra.Command{Use: "test"}
	op.register(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--variant", "sw2", "-n", "4", "--pfa", "1e-8"}))

	var req models.EvaluateRequest
	op.apply(cmd, &req)

	assert.Equal(t, "sw2", req.Variant)
	assert.Equal(t, 4, req.Pulses)
	require.NotNil(t, req.Pfa)
	assert.Equal(t, 1e-8, *req.Pfa)
	assert.Nil(t, req.Threshold)
}

// runCLI executes a fresh root with the given arguments against an isolated environment
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("OUTPUT_DIR", dir)
	t.Setenv("SWEEP_SNR_MIN_DB", "0")
	t.Setenv("SWEEP_SNR_MAX_DB", "10")
	t.Setenv("SWEEP_SNR_STEP_DB", "2")
	t.Setenv("LOG_LEVEL", "ERROR")

	root := &cobra.Command{Use: "radartools", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(newPdCmd(), newSNRCmd(), newThresholdCmd(), newSweepCmd(), newBatchCmd(), newSelfCheckCmd())
	root.SetArgs(args)
	return dir, root.Execute()
}

func TestCommands_Execute(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"pd", []string{"pd", "--snr", "10", "-n", "3"}},
		{"pd in dB", []string{"pd", "--variant", "sw1", "--snr-db", "12", "--pfa", "1e-6", "--json"}},
		{"snr", []string{"snr", "--pd", "0.9"}},
		{"threshold", []string{"threshold", "--pfa", "1e-6", "-n", "4"}},
		{"sweep", []string{"sweep", "-n", "1,2", "--variants", "marcum,sw1", "--pd-targets", "0.5"}},
		{"selfcheck", []string{"selfcheck"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			assert.NoError(t, err)
		})
	}
}

func TestCommands_RejectBadFlags(t *testing.T) {
	_, err := runCLI(t, "pd", "-n", "3")
	assert.Error(t, err, "snr or snr-db is required")

	_, err = runCLI(t, "pd", "--snr", "1", "--threshold", "5", "--pfa", "1e-6")
	assert.Error(t, err)

	_, err = runCLI(t, "snr", "--pd", "1.5")
	assert.Error(t, err)
}

func TestSweepCommand_WritesExports(t *testing.T) {
	dir, err := runCLI(t, "sweep", "-n", "1", "--variants", "marcum",
		"--xlsx", "sweep.xlsx", "--png", "sweep.png", "--pdf", "sweep.pdf")
	require.NoError(t, err)

	for _, name := range []string{"sweep.xlsx", "sweep.png", "sweep.pdf"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
}

func TestBatchCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.csv")
	require.NoError(t, os.WriteFile(path, []byte("variant,pulses,snr\nmarcum,3,10\nsw2,10,5\n"), 0o644))

	_, err := runCLI(t, "batch", path)
	assert.NoError(t, err)

	bad := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("variant,pulses,snr\nmarcum,3,10\nmarcum,-2,10\n"), 0o644))
	_, err = runCLI(t, "batch", bad)
	assert.EqualError(t, err, "1 of 2 rows failed")

	_, err = runCLI(t, "batch")
	assert.Error(t, err)
}
