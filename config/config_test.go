package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/packlist/layout"
	"github.com/ByLCY/packlist/packlist"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "invoice_codex.pdf", cfg.Render.Filename)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, "packlist.yaml", `
server:
  addr: "127.0.0.1:9000"
  request_timeout: 5s
render:
  strategy: fixed
  backend: fpdf
log:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "fixed", cfg.Render.Strategy)
	assert.Equal(t, "invoice_codex.pdf", cfg.Render.Filename)

	opts, err := cfg.Options(nil)
	require.NoError(t, err)
	assert.Equal(t, layout.StrategyFixed, opts.Strategy)
	assert.Equal(t, packlist.BackendFPDF, opts.Backend)
	assert.Nil(t, opts.Theme)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsUnknownAndInvalid(t *testing.T) {
	_, err := Load(writeFile(t, "unknown.yaml", "render:\n  colour: red\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")

	_, err = Load(writeFile(t, "bad.yaml", "render:\n  strategy: columns\n  backend: svg\nlog:\n  level: loud\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "columns")
	assert.Contains(t, err.Error(), "svg")
	assert.Contains(t, err.Error(), "log.level")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestOptionsLoadsThemeAndFonts(t *testing.T) {
	cfg := Default()
	cfg.Render.Theme = writeFile(t, "custom.theme", "theme C v1 {\n  captions { heading: \"X\" }\n}\n")
	cfg.Fonts = Fonts{Family: "Mono", Regular: "embed:Go-Mono", Bold: "embed:Go-Mono-Bold"}

	opts, err := cfg.Options(nil)
	require.NoError(t, err)
	require.NotNil(t, opts.Theme)
	assert.Equal(t, "C", opts.Theme.Name)
	assert.Equal(t, "Mono", opts.Fonts.Name)

	cfg.Render.Theme = filepath.Join(t.TempDir(), "missing.theme")
	_, err = cfg.Options(nil)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Log{Level: "warn", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = Log{Level: "verbose"}.NewLogger(&buf)
	assert.Error(t, err)
}
