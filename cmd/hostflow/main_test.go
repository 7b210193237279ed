package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidate_ShippedFlow(t *testing.T) {
	out, err := run(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
	assert.Contains(t, out, "nodes: 9")
	assert.Contains(t, out, "greeting")
}

func TestValidate_BrokenFlow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
initial_node: start
nodes:
  start:
    functions:
      - {name: go, transition_to: nowhere}
`), 0o600))

	_, err := run(t, "validate", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nowhere")
}

func TestGraph(t *testing.T) {
	out, err := run(t, "graph")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph TD"), out)
}

func TestDescribe_Raw(t *testing.T) {
	out, err := run(t, "describe", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "`begin_interview`")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "hostflow version 0.1.0")
}
