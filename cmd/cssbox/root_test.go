package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/benoitkugler/cssbox/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body style="margin:0"><div style="width:10px;height:10px;background:red"></div><p>text</p></body></html>`

// execute runs the command line `args` and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, version.VersionString)
}

func TestRenderTrace(t *testing.T) {
	input := writeTemp(t, "page.html", page)
	out, err := execute(t, "render", input, "--format", "trace", "--fixed-fonts", "--width", "100", "--height", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "<viewport>")
	assert.Contains(t, out, "Background (0, 0, 10, 10)")
	assert.Contains(t, out, `Text "text"`)
}

func TestRenderPNG(t *testing.T) {
	input := writeTemp(t, "page.html", page)
	output := filepath.Join(t.TempDir(), "out.png")
	_, err := execute(t, "render", input, "-o", output, "--fixed-fonts", "--width", "100", "--height", "50")
	require.NoError(t, err)

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.GreaterOrEqual(t, img.Bounds().Dy(), 50)
}

func TestRenderSVG(t *testing.T) {
	input := writeTemp(t, "page.html", page)
	out, err := execute(t, "render", input, "--format", "svg", "--fixed-fonts", "--width", "100")
	require.NoError(t, err)
	assert.Contains(t, out, `<svg xmlns="http://www.w3.org/2000/svg" width="100"`)
}

func TestRenderErrors(t *testing.T) {
	input := writeTemp(t, "page.html", page)
	_, err := execute(t, "render", input, "--format", "pdf")
	assert.ErrorContains(t, err, "unsupported output format")

	_, err = execute(t, "render", filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)

	_, err = execute(t, "render")
	assert.Error(t, err)
}

func TestConfigSources(t *testing.T) {
	input := writeTemp(t, "page.html", page)
	cfg := writeTemp(t, "cssbox.yaml", "viewport:\n  width: 80\nfonts:\n  fixed: true\n")

	out, err := execute(t, "render", input, "--config", cfg, "--format", "svg")
	require.NoError(t, err)
	assert.Contains(t, out, `width="80"`)

	t.Setenv("CSSBOX_VIEWPORT_WIDTH", "90")
	out, err = execute(t, "render", input, "--config", cfg, "--format", "svg")
	require.NoError(t, err)
	assert.Contains(t, out, `width="90"`)

	// flags take precedence
	out, err = execute(t, "render", input, "--config", cfg, "--format", "svg", "--width", "70")
	require.NoError(t, err)
	assert.Contains(t, out, `width="70"`)

	bad := writeTemp(t, "bad.yaml", "viewport:\n  width: -1\n")
	_, err = execute(t, "render", input, "--config", bad)
	assert.ErrorContains(t, err, "invalid viewport")
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"reftest-toc.htm": `<table><tbody><tr><td><a href="t.html">t</a></td></tr></tbody></table>`,
		"t.html":          `<link rel="match" href="r.html"><body style="margin:0"><div style="width:4px;height:4px;background:red"></div></body>`,
		"r.html":          `<body style="margin:0"><p style="margin:0;width:4px;height:4px;background:red"></p></body>`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	results := filepath.Join(dir, "results.csv")
	out, err := execute(t, "batch", dir+string(filepath.Separator), "-o", results, "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "1 tests: 1 passed, 0 failed (0 fatal)")
	content, err := os.ReadFile(results)
	require.NoError(t, err)
	assert.Equal(t, "t,0\n", string(content))
}
