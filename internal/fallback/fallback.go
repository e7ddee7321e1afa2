package fallback

import (
	"bytes"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gnome-horoscope/gnome-bridge/internal/resolver"
	"gopkg.in/yaml.v3"
	"lukechampine.com/blake3"
)

//go:embed fallbacks.yaml
var defaultContent []byte

// Entries holds the fallback texts for each key family.
type Entries struct {
	Families map[string]Family `yaml:"families"`

	// digest is the BLAKE3 hash of the source YAML content.
	digest string `yaml:"-"`
}

// Family is the fallback for one key family: a default plus optional
// per-value overrides, keyed by the lower-cased domain value.
type Family struct {
	Default string            `yaml:"default"`
	Values  map[string]string `yaml:"values"`
}

// Digest returns the BLAKE3 hash of the source YAML content used to create
// the entries.
func (e Entries) Digest() string {
	return e.digest
}

// Lookup returns the fallback for the key: the per-value override when
// present, otherwise the family default.
func (e Entries) Lookup(key resolver.ContentKey) (string, bool) {
	family, ok := e.Families[key.Family()]
	if !ok {
		return "", false
	}

	if text, ok := family.Values[key.Value()]; ok {
		return text, true
	}

	return family.Default, true
}

// Parse decodes and validates fallback YAML. Unknown fields are rejected so
// that typos do not silently remove a fallback.
func Parse(content []byte) (Entries, error) {
	var entries Entries

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	err := dec.Decode(&entries)
	if err != nil && !errors.Is(err, io.EOF) {
		return Entries{}, fmt.Errorf("fallback content decode failed: %w", err)
	}

	if len(entries.Families) == 0 {
		return Entries{}, errors.New("fallback content defines no families")
	}

	normalized := make(map[string]Family, len(entries.Families))
	for name, family := range entries.Families {
		if strings.TrimSpace(family.Default) == "" {
			return Entries{}, fmt.Errorf("fallback family %q has no default text", name)
		}

		values := make(map[string]string, len(family.Values))
		for value, text := range family.Values {
			if strings.TrimSpace(text) == "" {
				return Entries{}, fmt.Errorf("fallback family %q: value %q has no text", name, value)
			}
			values[strings.ToLower(value)] = text
		}

		normalized[strings.ToLower(name)] = Family{Default: family.Default, Values: values}
	}
	entries.Families = normalized

	hash := blake3.Sum256(content)
	entries.digest = hex.EncodeToString(hash[:])

	return entries, nil
}

// Default returns the fallback texts compiled into the binary.
func Default() (Entries, error) {
	return Parse(defaultContent)
}

// LoadFile reads fallback texts from a YAML file.
func LoadFile(path string) (Entries, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Entries{}, fmt.Errorf("reading fallback file: %w", err)
	}

	return Parse(content)
}
