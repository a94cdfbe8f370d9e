package adapters

import (
	"context"
	"testing"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vulcanocraft/plugdex/pkg/client"
	"github.com/vulcanocraft/plugdex/pkg/platform"
)

func newTestClient(t *testing.T) *client.Client {
	t.Helper()

	c, err := client.New(context.Background())
	require.NoError(t, err)

	return c
}

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry(newTestClient(t), github.NewClient(nil), "")

	for _, p := range []platform.Platform{
		platform.Modrinth,
		platform.Spigot,
		platform.Hangar,
		platform.BukkitDev,
		platform.CurseForge,
		platform.GitHub,
		platform.PlanetMinecraft,
	} {
		adapter, ok := registry.Get(p)
		assert.True(t, ok, p)
		assert.NotNil(t, adapter, p)
	}

	// BukkitDev and CurseForge front the same API.
	bukkitdev, _ := registry.Get(platform.BukkitDev)
	curseforge, _ := registry.Get(platform.CurseForge)
	assert.Same(t, bukkitdev, curseforge)

	_, ok := registry.Get(platform.Platform("unknown"))
	assert.False(t, ok)
}

func Test_stripQuery(t *testing.T) {
	testCases := []struct {
		desc     string
		url      string
		expected string
	}{
		{
			desc:     "query string removed",
			url:      "https://cdn.modrinth.com/icon.png?v=123&size=64",
			expected: "https://cdn.modrinth.com/icon.png",
		},
		{
			desc:     "fragment removed",
			url:      "https://cdn.modrinth.com/icon.png#top",
			expected: "https://cdn.modrinth.com/icon.png",
		},
		{
			desc:     "clean URL unchanged",
			url:      "https://cdn.modrinth.com/icon.png",
			expected: "https://cdn.modrinth.com/icon.png",
		},
		{
			desc:     "empty",
			url:      "",
			expected: "",
		},
	}

	for _, test := range testCases {
		t.Run(test.desc, func(t *testing.T) {
			t.Parallel()

			stripped := stripQuery(test.url)

			assert.Equal(t, test.expected, stripped)
			assert.Equal(t, stripped, stripQuery(stripped), "stripQuery must be idempotent")
			assert.NotContains(t, stripped, "?")
		})
	}
}
