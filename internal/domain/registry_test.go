package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	m "testgate.dev/pkg/testgate/internal/model"
)

func TestNewRegistry(t *testing.T) {
	t.Run("rejects empty module list", func(t *testing.T) {
		_, err := NewRegistry(nil)
		require.Error(t, err)

		var cfgErr *m.ConfigError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		_, err := NewRegistry([]m.Module{{Name: "core"}, {Name: "core"}})
		require.Error(t, err)

		var cfgErr *m.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		require.Contains(t, err.Error(), "duplicate")
	})

	t.Run("preserves configuration order and lookup", func(t *testing.T) {
		registry, err := NewRegistry([]m.Module{{Name: "core"}, {Name: "utils"}})
		require.NoError(t, err)
		require.Equal(t, 2, registry.Len())

		modules := registry.Modules()
		require.Equal(t, "core", modules[0].Name)
		require.Equal(t, "utils", modules[1].Name)

		module, ok := registry.Lookup("utils")
		require.True(t, ok)
		require.Equal(t, "utils", module.Name)

		_, ok = registry.Lookup("missing")
		require.False(t, ok)
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		registry, err := NewRegistry([]m.Module{{Name: "core"}})
		require.NoError(t, err)

		modules := registry.Modules()
		modules[0].Name = "mutated"

		fresh, _ := registry.Lookup("core")
		require.Equal(t, "core", fresh.Name)
	})
}
