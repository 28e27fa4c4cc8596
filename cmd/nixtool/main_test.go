package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/G-Node/nix-sub001/nix"
	"github.com/G-Node/nix-sub001/testutil"
	"github.com/G-Node/nix-sub001/types"
)

// runCLI executes the root command with args and returns stdout and stderr
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeUniverse saves the test universe to a file and returns its path
func writeUniverse(t *testing.T, name string, extra func(u *testutil.Universe)) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := nix.Open(path, nix.Overwrite)
	require.NoError(t, err)
	u, err := testutil.BuildUniverse(f)
	require.NoError(t, err)
	if extra != nil {
		extra(u)
	}
	require.NoError(t, f.Close())
	return path
}

func TestValidateCommand(t *testing.T) {
	path := writeUniverse(t, "session.yaml", nil)

	t.Run("warnings pass", func(t *testing.T) {
		out, _, err := runCLI(t, "validate", path)
		require.NoError(t, err)
		assert.Contains(t, out, "0 error(s), 2 warning(s)")
		assert.Contains(t, out, "values are set, but unit is missing")
	})

	t.Run("strict", func(t *testing.T) {
		_, _, err := runCLI(t, "validate", "--strict", path)
		var cliErr *CLIError
		require.ErrorAs(t, err, &cliErr)
		assert.Contains(t, cliErr.Error(), "2 validation error(s)")
	})

	t.Run("strict from env", func(t *testing.T) {
		t.Setenv("NIXTOOL_STRICT", "true")
		_, _, err := runCLI(t, "validate", path)
		assert.Error(t, err)
	})

	t.Run("errors fail", func(t *testing.T) {
		broken := writeUniverse(t, "broken.json", func(u *testutil.Universe) {
			_, err := u.Block.CreateDataArray("undescribed", "test", types.Double, nix.NDSize{3})
			require.NoError(t, err)
		})
		out, _, err := runCLI(t, "validate", path, broken)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken.json has 1 validation error(s)")
		assert.Contains(t, out, "ERROR:")
		assert.Contains(t, out, "dimensionality")
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := runCLI(t, "validate", filepath.Join(t.TempDir(), "missing.json"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("no arguments", func(t *testing.T) {
		_, _, err := runCLI(t, "validate")
		assert.Error(t, err)
	})
}

func TestDumpCommand(t *testing.T) {
	path := writeUniverse(t, "session.json", nil)

	t.Run("yaml", func(t *testing.T) {
		out, _, err := runCLI(t, "dump", path)
		require.NoError(t, err)

		var s fileSummary
		require.NoError(t, yaml.Unmarshal([]byte(out), &s))
		require.Len(t, s.Blocks, 1)
		b := s.Blocks[0]
		assert.Equal(t, "session-1", b.Name)
		require.Len(t, b.DataArrays, 6)
		assert.Equal(t, "1.2.1", s.Version)

		var voltage arraySummary
		for _, a := range b.DataArrays {
			if a.Name == "voltage" {
				voltage = a
			}
		}
		assert.Equal(t, []uint64{2, 10, 5}, voltage.Shape)
		require.Len(t, voltage.Dimensions, 3)
		assert.Equal(t, []string{"trial-1", "trial-2"}, voltage.Dimensions[0].Labels)
		assert.Equal(t, 1.0, voltage.Dimensions[1].SamplingInterval)

		require.Len(t, b.Tags, 1)
		assert.Equal(t, []string{"voltage"}, b.Tags[0].References)
		require.Len(t, b.MultiTags, 1)
		assert.Equal(t, uint64(3), b.MultiTags[0].Rows)
		assert.Equal(t, "spike_positions", b.MultiTags[0].Positions)

		require.Len(t, s.Sections, 1)
		assert.Equal(t, "recording", s.Sections[0].Name)
		require.Len(t, s.Sections[0].Sections, 1)
	})

	t.Run("json from config", func(t *testing.T) {
		config := filepath.Join(t.TempDir(), "nixtool.yaml")
		require.NoError(t, os.WriteFile(config, []byte("format: json\n"), 0o644))

		out, _, err := runCLI(t, "--config", config, "dump", path)
		require.NoError(t, err)
		var s fileSummary
		require.NoError(t, json.Unmarshal([]byte(out), &s))
		assert.Equal(t, path, s.Path)
	})

	t.Run("flag beats env", func(t *testing.T) {
		t.Setenv("NIXTOOL_FORMAT", "json")
		out, _, err := runCLI(t, "dump", "--format", "yaml", path)
		require.NoError(t, err)
		assert.False(t, strings.HasPrefix(strings.TrimSpace(out), "{"))
	})

	t.Run("text", func(t *testing.T) {
		out, _, err := runCLI(t, "dump", "-f", "text", path)
		require.NoError(t, err)
		assert.Contains(t, out, "Block session-1 [nix.session]")
		assert.Contains(t, out, "  Data Arrays\n")
		assert.Contains(t, out, "    voltage: Double [2 10 5] mV\n")
		assert.Contains(t, out, "      1 Set: trial-1, trial-2\n")
		assert.Contains(t, out, "      2 Sample: every 1 ms from 0\n")
		assert.Contains(t, out, "    event: position [0 2 2] extent [0 6 2] -> voltage\n")
		assert.Contains(t, out, "  gain = [2.5] mV\n")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := runCLI(t, "dump", "--format", "csv", path)
		var cliErr *CLIError
		require.ErrorAs(t, err, &cliErr)
		assert.Contains(t, cliErr.Error(), "unknown output format")
		assert.Contains(t, cliErr.Suggestions, CommonSuggestions.RunHelp)
	})

	t.Run("missing config", func(t *testing.T) {
		_, _, err := runCLI(t, "--config", filepath.Join(t.TempDir(), "none.yaml"), "dump", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration error")
	})
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "nixtool dev (nix format 1.2.1)\n", out)
}

func TestLogStderr(t *testing.T) {
	path := writeUniverse(t, "session.yaml", nil)
	_, stderr, err := runCLI(t, "--log-level", "info", "--log-stderr", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "validated file")
}

func TestNewFileError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"missing", os.ErrNotExist, "not found"},
		{"permissions", os.ErrPermission, "insufficient permissions"},
		{"not nix", types.ErrUninitializedEntity, "is not a nix file"},
		{"locked", errors.New("failed to acquire lock after 10 attempts"), "locked by another process"},
		{"other", errors.New("boom"), "cannot open"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewFileError("dump", "x.json", tt.err)
			assert.Contains(t, err.Error(), tt.want)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestHeading(t *testing.T) {
	assert.Equal(t, "Multi Tags", heading("multi_tags"))
	assert.Equal(t, "Range", title("range"))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLogLevel("Debug").String())
	assert.Equal(t, "WARN", parseLogLevel("verbose").String())
}
