package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lookup returns the resolved value for key. Any spelling accepted by Set
// works, as do section names such as "markers", which yield the whole section.
func (s Settings) Lookup(key string) (any, error) {
	norm := normalizeKey(key)
	path := norm
	if canonical, ok := keyMap[norm]; ok {
		path = canonical
	} else if _, ok := sections[norm]; !ok && !strings.HasPrefix(norm, aliasKeyPrefix) {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	var cur any = tree
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unknown config key: %s", key)
		}
		if cur, ok = m[part]; !ok {
			// omitempty fields and unset alias lists read as empty.
			return nil, nil
		}
	}
	return cur, nil
}
