package secrets

import (
	"context"
	"os"
)

// EnvStore serves credentials from fixed values, falling back to the process
// environment. It backs the legacy build-time key path and the demo binary.
type EnvStore struct {
	values map[string]string
}

func NewEnvStore(values map[string]string) *EnvStore {
	return &EnvStore{values: values}
}

func (s *EnvStore) Lookup(_ context.Context, name string) (string, error) {
	if v := s.values[name]; v != "" {
		return v, nil
	}
	if v := os.Getenv(name); v != "" {
		return v, nil
	}
	return "", ErrNotConfigured
}
