package ros

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileConfigStoreLoadMissingReturnsZeroValue(t *testing.T) {
	store := NewFileConfigStore(t.TempDir(), "/talker")
	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, NodeConfig{}, cfg)
}

func TestFileConfigStoreSaveThenLoadRoundTrips(t *testing.T) {
	store := NewFileConfigStore(t.TempDir(), "/talker")
	want := NodeConfig{
		NodeName:   "/talker",
		XMLRPCAddr: "127.0.0.1:11311",
		XMLRPCURI:  "http://127.0.0.1:11311",
		MasterURI:  "http://localhost:11311",
	}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileConfigStoreSaveOverwrites(t *testing.T) {
	home := t.TempDir()
	store := NewFileConfigStore(home, "/talker")
	require.NoError(t, store.Save(NodeConfig{NodeName: "/talker", MasterURI: "http://a"}))
	require.NoError(t, store.Save(NodeConfig{NodeName: "/talker", MasterURI: "http://b"}))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "http://b", got.MasterURI)
}

func TestNewFileConfigStorePathIsKeyedByNodeName(t *testing.T) {
	home := t.TempDir()
	a := NewFileConfigStore(home, "/talker").(*fileConfigStore)
	b := NewFileConfigStore(home, "/listener").(*fileConfigStore)
	assert.NotEqual(t, a.path, b.path)
	assert.Equal(t, filepath.Join(home, "uros", "talker.cfg"), a.path)
}
