package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/openescrow/core"
)

func TestStateStore_MissingFile(t *testing.T) {
	store := NewStateStore(filepath.Join(t.TempDir(), "absent"))

	registry, ok, err := store.Load()
	check.NoError(t, err)
	check.False(t, ok)
	check.Nil(t, registry)
}

func TestStateStore_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	store := NewStateStore(filepath.Join(dir, "state"))

	registry := core.Init("deployer")
	registry.Append(core.Auction{
		State:         core.NotSoldYet(),
		InitialPrice:  10,
		Item:          "lamp",
		End:           time.Date(2025, 6, 1, 0, 0, 0, 500, time.UTC),
		Owner:         "alice",
		TokenContract: core.ContractAddress{Index: 7},
		TokenID:       2,
		TokenAmount:   1,
	})
	assert.NoError(t, store.Save(registry))

	loaded, ok, err := store.Load()
	assert.NoError(t, err)
	assert.True(t, ok)
	check.Equal(t, registry.Snapshot(), loaded.Snapshot())
	check.Equal(t, core.AccountAddress("deployer"), loaded.CommissionRecipient())

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	check.Equal(t, 1, len(entries))
}

func TestStateStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	assert.NoError(t, os.WriteFile(path, []byte("not cbor"), 0o600))

	_, _, err := NewStateStore(path).Load()
	check.Error(t, err)
}

func TestStateStore_RejectsInconsistentState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	store := NewStateStore(path)

	registry := core.Init("deployer")
	registry.Append(core.Auction{
		State: core.Sold("mallory"),
		Item:  "lamp",
		End:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Owner: "alice",
	})
	assert.NoError(t, store.Save(registry))

	_, ok, err := store.Load()
	check.Error(t, err)
	check.False(t, ok)
}
