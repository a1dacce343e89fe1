// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves publisher API keys. Three backends are supported:
// the process environment, the OS credential store, and a directory of
// plain-text files (the layout hosted notebooks and container runtimes mount
// secrets in). Each file in the directory represents one secret: the filename
// is the key name and the file contents (trimmed) are the value.
//
// Key names used by acquisition: ELSEVIER_KEY, SPRINGER_KEY, WILEY_KEY.
// In a secrets directory they may also be stored kebab-cased
// (elsevier-key, springer-key, wiley-key).
package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

// ErrNotFound is returned when no backend holds the requested secret.
var ErrNotFound = errors.New("secret not found")

// Resolver looks up a secret by name.
type Resolver interface {
	Lookup(name string) (string, error)
}

// Env resolves secrets from environment variables.
type Env struct {
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Lookup returns the trimmed value of the environment variable name.
func (e Env) Lookup(name string) (string, error) {
	lookup := e.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(name)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", fmt.Errorf("env %s: %w", name, ErrNotFound)
	}
	return v, nil
}

// DefaultKeyringService is the service name secrets are stored under.
const DefaultKeyringService = "system"

// Keyring resolves secrets from the OS credential store.
type Keyring struct {
	Service string
}

// Lookup reads name from the credential store under k.Service.
func (k Keyring) Lookup(name string) (string, error) {
	service := k.Service
	if service == "" {
		service = DefaultKeyringService
	}
	v, err := keyring.Get(service, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("keyring %s/%s: %w", service, name, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("keyring %s/%s: %w", service, name, err)
	}
	if v = strings.TrimSpace(v); v == "" {
		return "", fmt.Errorf("keyring %s/%s: %w", service, name, ErrNotFound)
	}
	return v, nil
}

// Dir resolves secrets from a map loaded with Load.
type Dir struct {
	Values map[string]string
}

// NewDir loads dir and returns a Dir resolver.
func NewDir(dir string) (Dir, error) {
	values, err := Load(dir)
	if err != nil {
		return Dir{}, err
	}
	return Dir{Values: values}, nil
}

// Lookup tries name as given, then its kebab-cased form
// (ELSEVIER_KEY -> elsevier-key).
func (d Dir) Lookup(name string) (string, error) {
	if v, ok := d.Values[name]; ok {
		return v, nil
	}
	if v, ok := d.Values[kebab(name)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("secrets dir %s: %w", name, ErrNotFound)
}

func kebab(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", "-"))
}

// Chain tries each resolver in order and returns the first value found.
type Chain []Resolver

// Lookup returns the first hit. Backend failures other than ErrNotFound do
// not stop the chain; if nothing is found the last such failure is reported
// alongside ErrNotFound.
func (c Chain) Lookup(name string) (string, error) {
	var lastErr error
	for _, r := range c {
		v, err := r.Lookup(name)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrNotFound) {
			lastErr = err
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("%s: %w (last backend error: %v)", name, ErrNotFound, lastErr)
	}
	return "", fmt.Errorf("%s: %w", name, ErrNotFound)
}

// Backend names accepted by New.
const (
	BackendEnv     = "env"
	BackendKeyring = "keyring"
	BackendDir     = "dir"
	BackendChain   = "chain"
)

// New builds a resolver for the named backend. The chain backend tries the
// environment, then the secrets directory, then the OS credential store.
func New(backend, dir string) (Resolver, error) {
	switch backend {
	case BackendEnv:
		return Env{}, nil
	case BackendKeyring:
		return Keyring{}, nil
	case BackendDir:
		return NewDir(dir)
	case BackendChain, "":
		d, err := NewDir(dir)
		if err != nil {
			return nil, err
		}
		return Chain{Env{}, d, Keyring{}}, nil
	default:
		return nil, fmt.Errorf("unknown secrets backend %q (want env, keyring, dir, or chain)", backend)
	}
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
