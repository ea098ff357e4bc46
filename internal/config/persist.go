package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/phyten/humanpp/internal/model"
)

const aliasKeyPrefix = "markers.aliases."

// Save writes cfg to path in the format implied by its extension.
func Save(path string, cfg Config) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	case ".toml":
		data, err = toml.Marshal(cfg)
	case ".json":
		data, err = json.MarshalIndent(cfg, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	default:
		return fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".humanpp-*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return err
	}
	return nil
}

// ParseAssignment resolves key (any accepted spelling, or markers.aliases.<type>)
// and applies value to layer. It returns the canonical key.
func ParseAssignment(layer *Config, key, value string) (string, error) {
	norm := normalizeKey(key)
	if rest, ok := strings.CutPrefix(norm, aliasKeyPrefix); ok {
		t, err := model.ParseMarkerType(rest)
		if err != nil {
			return "", fmt.Errorf("unknown config key: %s", key)
		}
		aliases := map[string][]string{}
		if layer.Markers.Aliases != nil {
			aliases = cloneAliases(*layer.Markers.Aliases)
		}
		aliases[t.String()] = normalizeList(strings.Split(value, ","))
		layer.Markers.Aliases = &aliases
		return aliasKeyPrefix + t.String(), nil
	}
	canonical, ok := keyMap[norm]
	if !ok || canonical == "markers.aliases" {
		return "", fmt.Errorf("unknown config key: %s", key)
	}
	if err := assign(layer, canonical, value); err != nil {
		return "", err
	}
	return canonical, nil
}

// SetValue persists one key to the file at path, creating it if needed.
// The result must still validate on top of the defaults.
func SetValue(path, key, value string) (string, error) {
	cfg, err := Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	canonical, err := ParseAssignment(&cfg, key, value)
	if err != nil {
		return "", err
	}
	if err := Merge(Defaults(), cfg).Validate(); err != nil {
		return "", err
	}
	if err := Save(path, cfg); err != nil {
		return "", err
	}
	return canonical, nil
}
