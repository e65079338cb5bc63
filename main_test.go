package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"achievement-engine/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestVersionCmd(t *testing.T) {
	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "achievement-engine version dev")
	assert.Contains(t, out, catalog.DefaultVersion)
}

func TestCatalogExportThenValidate(t *testing.T) {
	out, _, err := runCLI(t, "catalog", "export")
	require.NoError(t, err)

	path := writeFile(t, "catalog.yaml", out)
	out, stderr, err := runCLI(t, "catalog", "validate", "--strict", path)
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Contains(t, out, "ok: catalog builtin-1, 22 achievements")
}

func TestCatalogValidate_UnknownMetric(t *testing.T) {
	path := writeFile(t, "catalog.yaml", `
version: "2026.1"
achievements:
  - id: marathon
    name: Marathon
    category: engagement
    points: 50
    requirements:
      - {type: count, metric: kilometres_run, value: 42}
`)

	out, stderr, err := runCLI(t, "catalog", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, `marathon: unknown metric "kilometres_run"`)
	assert.Contains(t, out, "ok: catalog 2026.1, 1 achievements")

	_, _, err = runCLI(t, "catalog", "validate", "--strict", path)
	assert.Error(t, err)
}

func TestCatalogValidate_Invalid(t *testing.T) {
	path := writeFile(t, "catalog.yaml", `
version: "2026.1"
achievements:
  - id: broken
    name: Broken
    category: sports
    points: -1
`)
	_, _, err := runCLI(t, "catalog", "validate", path)
	assert.Error(t, err)

	_, _, err = runCLI(t, "catalog", "validate")
	assert.Error(t, err, "file argument required")
}

func TestCatalogList(t *testing.T) {
	t.Setenv("CATALOG_S3_BUCKET", "")
	t.Setenv("CATALOG_FILE", "")

	out, _, err := runCLI(t, "catalog", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "catalog builtin-1 from builtin")
	assert.Contains(t, out, "cv-first")
	assert.NotContains(t, out, "night-owl")

	out, _, err = runCLI(t, "catalog", "list", "--hidden")
	require.NoError(t, err)
	assert.Contains(t, out, "night-owl")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 2+1+22, "header lines, table header, every achievement")
}

func TestNormalizeOrigins(t *testing.T) {
	assert.Equal(t, "https://a.example,https://b.example", normalizeOrigins(" https://a.example , https://b.example,"))
	assert.Equal(t, "http://localhost:3000", normalizeOrigins(" , "))
}
