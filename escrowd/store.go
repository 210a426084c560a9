package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"

	"github.com/cloudx-io/openescrow/core"
	"github.com/cloudx-io/openescrow/validation"
)

// StateStore persists the contract state to a single file.
type StateStore struct {
	path string
}

func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// Load reads the stored registry. It reports false if nothing was stored yet.
// State that fails validation is rejected.
func (s *StateStore) Load() (*core.Registry, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "read state file")
	}

	result, err := validation.ValidateStateBytes(data)
	if err != nil {
		return nil, false, errors.Wrapf(err, "load %s", s.path)
	}
	if !result.IsValid() {
		return nil, false, errors.Errorf("load %s: inconsistent state: %s", s.path, strings.Join(result.ValidationDetails, "; "))
	}

	registry, err := core.UnmarshalState(data)
	if err != nil {
		return nil, false, errors.Wrapf(err, "load %s", s.path)
	}
	return registry, true, nil
}

// Save replaces the stored state with registry. The file is swapped in
// atomically so a crash leaves either the old or the new state.
func (s *StateStore) Save(registry *core.Registry) error {
	data, err := registry.MarshalState()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create temp state file")
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write state")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "sync state")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close state")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "replace state file")
	}
	return nil
}
