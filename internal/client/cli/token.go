package cli

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/cocoinbox/cocoinbox/internal/filex"
)

const tokenFile = "token"

// tokenStore keeps the session token between invocations.
type tokenStore struct {
	dir string
}

func (s tokenStore) path() string {
	return filepath.Join(s.dir, tokenFile)
}

func (s tokenStore) Load() (string, error) {
	return filex.ReadSecret(s.path())
}

func (s tokenStore) Save(token string) error {
	if _, err := filex.EnsureDir(s.dir, ""); err != nil {
		return err
	}
	return filex.WriteSecret(s.path(), token)
}

func (s tokenStore) Clear() error {
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
