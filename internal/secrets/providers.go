package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound is returned when no provider in a chain yields credentials.
var ErrNotFound = errors.New("no credentials found")

// Credentials holds a Google service account key in JSON form.
type Credentials []byte

// Provider is a single step in an ordered credential resolution chain. Lookup
// reports whether credentials were found; an error means the provider was
// configured but unusable (for example an unreadable file), which aborts the
// chain instead of silently falling through.
type Provider interface {
	Name() string
	Lookup() (Credentials, bool, error)
}

// Resolve tries the providers in order and returns the first credentials found.
func Resolve(providers ...Provider) (Credentials, string, error) {
	for _, p := range providers {
		creds, ok, err := p.Lookup()
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", p.Name(), err)
		}
		if ok {
			return creds, p.Name(), nil
		}
	}
	return nil, "", ErrNotFound
}

// EnvProvider assembles a service account key from the
// GOOGLE_SHEETS_CREDENTIALS_* environment variables.
type EnvProvider struct {
	// Getenv defaults to os.Getenv; overridable for tests.
	Getenv func(string) string
}

func (p *EnvProvider) Name() string { return "environment" }

func (p *EnvProvider) Lookup() (Credentials, bool, error) {
	getenv := p.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	clientEmail := getenv("GOOGLE_SHEETS_CREDENTIALS_CLIENT_EMAIL")
	privateKey := getenv("GOOGLE_SHEETS_CREDENTIALS_PRIVATE_KEY")
	if clientEmail == "" || privateKey == "" {
		return nil, false, nil
	}

	universe := getenv("GOOGLE_SHEETS_CREDENTIALS_UNIVERSE_DOMAIN")
	if universe == "" {
		universe = "googleapis.com"
	}

	key := map[string]string{
		"type":                        getenv("GOOGLE_SHEETS_CREDENTIALS_TYPE"),
		"project_id":                  getenv("GOOGLE_SHEETS_CREDENTIALS_PROJECT_ID"),
		"private_key_id":              getenv("GOOGLE_SHEETS_CREDENTIALS_PRIVATE_KEY_ID"),
		"private_key":                 strings.ReplaceAll(privateKey, `\n`, "\n"),
		"client_email":                clientEmail,
		"client_id":                   getenv("GOOGLE_SHEETS_CREDENTIALS_CLIENT_ID"),
		"auth_uri":                    getenv("GOOGLE_SHEETS_CREDENTIALS_AUTH_URI"),
		"token_uri":                   getenv("GOOGLE_SHEETS_CREDENTIALS_TOKEN_URI"),
		"auth_provider_x509_cert_url": getenv("GOOGLE_SHEETS_CREDENTIALS_AUTH_PROVIDER_X509_CERT_URL"),
		"client_x509_cert_url":        getenv("GOOGLE_SHEETS_CREDENTIALS_CLIENT_X509_CERT_URL"),
		"universe_domain":             universe,
	}

	data, err := json.Marshal(key)
	if err != nil {
		return nil, false, fmt.Errorf("encoding credentials: %w", err)
	}

	return Credentials(data), true, nil
}

// FileProvider reads a service account key from a JSON file. An unset path
// means not found; a set but unreadable path is an error.
type FileProvider struct {
	Path string
}

func (p *FileProvider) Name() string { return "file" }

func (p *FileProvider) Lookup() (Credentials, bool, error) {
	path := strings.TrimSpace(p.Path)
	if path == "" {
		return nil, false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading credentials file %q: %w", path, err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, false, fmt.Errorf("credentials file %q is empty", path)
	}

	return Credentials(data), true, nil
}
