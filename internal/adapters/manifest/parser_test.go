package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-registry/internal/domain"
)

const yamlManifest = `
components:
  BMI:
    artifact: Token
    init:
      method: initialize
      arg: BMI
  REWARDS_GENERATOR:
    artifact: RewardsGenerator
    proxy: true
  USDT:
    address: "0x00000000000000000000000000000000000000aa"
`

const tomlManifest = `
[components.BMI]
artifact = "Token"
init = { method = "initialize", arg = "BMI" }

[components.REWARDS_GENERATOR]
artifact = "RewardsGenerator"
proxy = true

[components.USDT]
address = "0x00000000000000000000000000000000000000aa"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseFile(t *testing.T) {
	want := &domain.Manifest{Components: map[string]domain.ManifestComponent{
		"BMI":               {Artifact: "Token", Init: &domain.ManifestCall{Method: "initialize", Arg: "BMI"}},
		"REWARDS_GENERATOR": {Artifact: "RewardsGenerator", Proxy: true},
		"USDT":              {Address: "0x00000000000000000000000000000000000000aa"},
	}}
	p := NewParserAdapter()

	for _, tt := range []struct{ file, content string }{
		{"registry.yaml", yamlManifest},
		{"registry.yml", yamlManifest},
		{"registry.toml", tomlManifest},
	} {
		t.Run(tt.file, func(t *testing.T) {
			got, err := p.ParseFile(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.NoError(t, got.Validate())
		})
	}
}

func TestParseFileErrors(t *testing.T) {
	p := NewParserAdapter()

	t.Run("missing file", func(t *testing.T) {
		_, err := p.ParseFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "failed to read manifest")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := p.ParseFile(writeFile(t, "registry.json", "{}"))
		assert.ErrorContains(t, err, "unsupported manifest format")
	})

	t.Run("unknown yaml key", func(t *testing.T) {
		_, err := p.ParseFile(writeFile(t, "registry.yaml", "components:\n  BMI:\n    artefact: Token\n"))
		assert.ErrorContains(t, err, "failed to parse YAML manifest")
	})

	t.Run("unknown toml key", func(t *testing.T) {
		_, err := p.ParseFile(writeFile(t, "registry.toml", "[components.BMI]\nartefact = \"Token\"\n"))
		assert.ErrorContains(t, err, "unknown manifest keys: components.BMI.artefact")
	})

	t.Run("broken toml", func(t *testing.T) {
		_, err := p.ParseFile(writeFile(t, "registry.toml", "[components\n"))
		assert.ErrorContains(t, err, "failed to parse TOML manifest")
	})
}
