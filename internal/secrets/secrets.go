package secrets

import (
	"errors"
	"fmt"
	"strings"
)

// ValueProvider yields a secret configured inline, via a flag or a config
// value.
type ValueProvider struct {
	Value string
}

func (p *ValueProvider) Name() string { return "inline" }

func (p *ValueProvider) Lookup() (Credentials, bool, error) {
	value := strings.TrimSpace(p.Value)
	if value == "" {
		return nil, false, nil
	}
	return Credentials(value), true, nil
}

// LoadKey resolves a single API key through the standard provider chain: the
// file wins over the inline value. The returned key is always trimmed.
func LoadKey(name, value, file string) (string, error) {
	if strings.TrimSpace(name) == "" {
		name = "secret"
	}

	key, _, err := Resolve(
		&FileProvider{Path: file},
		&ValueProvider{Value: value},
	)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("%s is not configured", name)
		}
		return "", fmt.Errorf("loading %s: %w", name, err)
	}

	return strings.TrimSpace(string(key)), nil
}
