package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TFMV/neongraph/config"
	"github.com/TFMV/neongraph/ingest"
	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

// run executes the command tree with a config path inside dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", filepath.Join(dir, "neongraph.yaml")}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestFrameName(t *testing.T) {
	assert.Equal(t, "out.png", frameName("out.png", 0, 1))
	assert.Equal(t, "out-000.png", frameName("out.png", 0, 3))
	assert.Equal(t, "dir/out-012.svg", frameName("dir/out.svg", 12, 20))
	assert.Equal(t, "frames-001", frameName("frames", 1, 2))
}

func TestIntroCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "frames", "intro.png")

	stdout, err := run(t, dir, "intro", "--out", out, "--frames", "3", "--skip-at", "3100ms", "--seed", "9")
	require.NoError(t, err)
	for i := range 3 {
		name := frameName(out, i, 3)
		data, err := os.ReadFile(name)
		require.NoError(t, err, name)
		assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")), name)
		assert.Contains(t, stdout, name)
	}
	assert.Contains(t, stdout, "paths")
}

func TestIntroCommand_JSONAfterSkip(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "intro.json")

	_, err := run(t, dir, "intro", "--out", out, "--format", "json", "--skip-at", "1s", "--at", "2s")
	require.NoError(t, err)

	var doc struct {
		Kind  string `json:"kind"`
		Frame struct {
			Paths []struct {
				Progress float64 `json:"progress"`
			} `json:"paths"`
		} `json:"frame"`
	}
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "intro", doc.Kind)
	require.NotEmpty(t, doc.Frame.Paths)
	for _, p := range doc.Frame.Paths {
		assert.Equal(t, 1.0, p.Progress)
	}
}

func TestIntroCommand_BadFormat(t *testing.T) {
	_, err := run(t, t.TempDir(), "intro", "--format", "gif")
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "view.svg")

	stdout, err := run(t, dir, "render", "--department", "college-of-arts-and-humanities",
		"--format", "svg", "--out", out, "--highlight", "degree", "--zoom", "2")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
	assert.Contains(t, stdout, "fully_revealed")
	assert.Contains(t, stdout, "zoom 1.4")
}

func TestRenderCommand_UnknownDepartment(t *testing.T) {
	_, err := run(t, t.TempDir(), "render", "--department", "nope")
	assert.ErrorContains(t, err, `unknown department "nope"`)
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "plan.csv")
	out := filepath.Join(dir, "plan.json")
	csv := ingest.ColumnDepartment + "," + ingest.ColumnInternal + "\n" +
		"Music Dept,Choir; Band\n"
	require.NoError(t, os.WriteFile(in, []byte(csv), 0o644))

	_, err := run(t, dir, "convert", "--in", in, "--out", out)
	require.NoError(t, err)

	ds, err := ingest.LoadFile(out)
	require.NoError(t, err)
	require.Len(t, ds.Departments, 1)
	assert.Equal(t, "music-dept", ds.Departments[0].ID)
	assert.Equal(t, []string{"Choir", "Band"}, ds.Departments[0].InternalPartners)
}

func TestDepartmentsCommand(t *testing.T) {
	stdout, err := run(t, t.TempDir(), "departments")
	require.NoError(t, err)
	assert.Contains(t, stdout, ingest.FallbackSource)
	assert.Contains(t, stdout, "college-of-arts-and-humanities")
	assert.Contains(t, stdout, "ID")
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "neongraph.yaml")

	_, err := run(t, dir, "config", "init")
	require.NoError(t, err)
	cfg, err := config.LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	_, err = run(t, dir, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	stdout, err := run(t, dir, "--seed", "42", "config", "show", "--format", "toml")
	require.NoError(t, err)
	assert.True(t, strings.Contains(stdout, "seed = 42"), stdout)
}
