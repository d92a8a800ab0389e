package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
	"gopkg.in/yaml.v3"
)

// ParserAdapter reads component manifests. The format follows the file
// extension: .yaml/.yml or .toml.
type ParserAdapter struct{}

// NewParserAdapter creates a new manifest parser
func NewParserAdapter() *ParserAdapter {
	return &ParserAdapter{}
}

// ParseFile reads and decodes the manifest at path. Unknown keys are rejected.
func (p *ParserAdapter) ParseFile(path string) (*domain.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return parseYAML(data)
	case ".toml":
		return parseTOML(data)
	default:
		return nil, fmt.Errorf("unsupported manifest format %q (use .yaml or .toml)", ext)
	}
}

func parseYAML(data []byte) (*domain.Manifest, error) {
	var m domain.Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse YAML manifest: %w", err)
	}
	return &m, nil
}

func parseTOML(data []byte) (*domain.Manifest, error) {
	var m domain.Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML manifest: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown manifest keys: %s", strings.Join(keys, ", "))
	}
	return &m, nil
}

// Ensure ParserAdapter implements ManifestParser
var _ usecase.ManifestParser = (*ParserAdapter)(nil)
