package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key"

// newCurseForgeServer fakes the CurseForge API plus project pages.
func newCurseForgeServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/v1/mods/search", func(rw http.ResponseWriter, req *http.Request) {
		if req.Header.Get("x-api-key") != testAPIKey {
			http.Error(rw, "missing key", http.StatusForbidden)
			return
		}

		switch req.URL.Query().Get("slug") {
		case "jei":
			assert.Equal(t, "6", req.URL.Query().Get("classId"))
			_, _ = rw.Write([]byte(`{"data": [{
				"id": 238222,
				"name": "Just Enough Items",
				"slug": "jei",
				"summary": "View items and recipes.",
				"authors": [{"name": "mezz"}],
				"logo": {"url": "https://media.forgecdn.net/jei.png?size=256", "thumbnailUrl": "https://media.forgecdn.net/jei_thumb.png?size=64"},
				"latestFilesIndexes": [{"gameVersion": "1.20.1"}, {"gameVersion": "1.19.2"}, {"gameVersion": "1.20.1"}]
			}]}`))
		case "uberenchant":
			assert.Equal(t, "5", req.URL.Query().Get("classId"))
			_, _ = rw.Write([]byte(`{"data": [{
				"id": 9001,
				"name": "UberEnchant",
				"slug": "uberenchant",
				"summary": "Uber enchantments.",
				"authors": [{"name": "sciolizer"}]
			}]}`))
		default:
			_, _ = rw.Write([]byte(`{"data": []}`))
		}
	})

	mux.HandleFunc("/v1/mods/238222/files", func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = rw.Write([]byte(`{"data": [
			{"gameVersions": ["1.20.1", "Forge", "Java 17"]},
			{"gameVersions": ["1.19.2", "Fabric", "Client", "NeoForge"]}
		]}`))
	})

	mux.HandleFunc("/servermods/projects", func(rw http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("search") == "ghostplugin" {
			_, _ = rw.Write([]byte(`[{"slug": "ghost-plugin"}]`))
			return
		}
		_, _ = rw.Write([]byte(`[]`))
	})

	// BukkitDev project pages for the HTML fallback.
	mux.HandleFunc("/projects/", func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = rw.Write([]byte(`<html><head>
			<meta property="og:description" content="A scraped description.">
			<meta property="og:image" content="https://media.forgecdn.net/avatar.png?v=3">
			<meta name="author" content="PageAuthor">
		</head></html>`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func newCurseForgeAdapter(t *testing.T, srv *httptest.Server, apiKey string) *CurseForge {
	t.Helper()

	c := NewCurseForge(newTestClient(t), apiKey)
	c.baseURL = srv.URL
	c.siteURL = srv.URL

	return c
}

func TestCurseForge_modFields(t *testing.T) {
	srv := newCurseForgeServer(t)
	c := newCurseForgeAdapter(t, srv, testAPIKey)

	// The identifier for curseforge.com URLs is the URL itself.
	id := srv.URL + "/minecraft/mc-mods/jei"
	ctx := context.Background()

	title, err := c.Title(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Just Enough Items", title)

	author, err := c.Author(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "mezz", author)

	description, err := c.Description(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "View items and recipes.", description)

	icon, err := c.Icon(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://media.forgecdn.net/jei_thumb.png", icon)

	versions, err := c.Versions(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.19.2", "1.20.1"}, versions)
}

func TestCurseForge_Loaders_inferredForMods(t *testing.T) {
	srv := newCurseForgeServer(t)
	c := newCurseForgeAdapter(t, srv, testAPIKey)

	loaders, err := c.Loaders(context.Background(), srv.URL+"/minecraft/mc-mods/jei")
	require.NoError(t, err)

	// Version numbers and Java/Client tokens are not loaders.
	assert.Equal(t, []string{"fabric", "forge", "neoforge"}, loaders)
}

func TestCurseForge_Loaders_staticForBukkitPlugins(t *testing.T) {
	srv := newCurseForgeServer(t)
	c := newCurseForgeAdapter(t, srv, testAPIKey)

	loaders, err := c.Loaders(context.Background(), srv.URL+"/minecraft/bukkit-plugins/uberenchant")
	require.NoError(t, err)
	assert.Equal(t, []string{"bukkit", "spigot", "paper"}, loaders)

	// Same policy for dev.bukkit.org slugs, and without an API key.
	noKey := newCurseForgeAdapter(t, srv, "")

	loaders, err = noKey.Loaders(context.Background(), "uberenchant")
	require.NoError(t, err)
	assert.Equal(t, []string{"bukkit", "spigot", "paper"}, loaders)
}

func TestCurseForge_bukkitDevSlug(t *testing.T) {
	srv := newCurseForgeServer(t)
	c := newCurseForgeAdapter(t, srv, testAPIKey)

	title, err := c.Title(context.Background(), "uberenchant")
	require.NoError(t, err)

	assert.Equal(t, "UberEnchant", title)
}

func TestCurseForge_servermodsCanonicalSlug(t *testing.T) {
	srv := newCurseForgeServer(t)
	c := newCurseForgeAdapter(t, srv, testAPIKey)

	project, err := c.parseIdentifier(context.Background(), "ghostplugin")
	require.NoError(t, err)

	assert.Equal(t, "ghost-plugin", project.slug)
	assert.Equal(t, srv.URL+"/projects/ghost-plugin", project.pageURL)
}

func TestCurseForge_htmlFallback(t *testing.T) {
	srv := newCurseForgeServer(t)
	// An unknown slug makes the structured search return nothing.
	c := newCurseForgeAdapter(t, srv, testAPIKey)

	ctx := context.Background()

	description, err := c.Description(ctx, "unknown-plugin")
	require.NoError(t, err)
	assert.Equal(t, "A scraped description.", description)

	icon, err := c.Icon(ctx, "unknown-plugin")
	require.NoError(t, err)
	assert.Equal(t, "https://media.forgecdn.net/avatar.png", icon)

	author, err := c.Author(ctx, "unknown-plugin")
	require.NoError(t, err)
	assert.Equal(t, "PageAuthor", author)
}

func TestCurseForge_missingAPIKey(t *testing.T) {
	srv := newCurseForgeServer(t)
	c := newCurseForgeAdapter(t, srv, "")

	ctx := context.Background()

	// Structured-only fields degrade to an error (the resolver turns it
	// into an empty field), never a panic.
	_, err := c.Title(ctx, srv.URL+"/minecraft/mc-mods/jei")
	require.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = c.Versions(ctx, srv.URL+"/minecraft/mc-mods/jei")
	require.ErrorIs(t, err, ErrMissingAPIKey)

	// Fields with an HTML fallback still resolve.
	description, err := c.Description(ctx, "uberenchant")
	require.NoError(t, err)
	assert.Equal(t, "A scraped description.", description)
}

func TestCurseForge_searchMiss(t *testing.T) {
	srv := newCurseForgeServer(t)
	c := newCurseForgeAdapter(t, srv, testAPIKey)

	// mc-mods has no HTML fallback: a search miss is an error for every
	// structured field.
	id := srv.URL + "/minecraft/mc-mods/does-not-exist"
	ctx := context.Background()

	_, err := c.Title(ctx, id)
	assert.Error(t, err)

	_, err = c.Versions(ctx, id)
	assert.Error(t, err)

	_, err = c.Loaders(ctx, id)
	assert.Error(t, err)
}

func Test_loaderForToken(t *testing.T) {
	testCases := []struct {
		token    string
		expected string
		ok       bool
	}{
		{token: "Forge", expected: "forge", ok: true},
		{token: "fabric", expected: "fabric", ok: true},
		{token: "NeoForge", expected: "neoforge", ok: true},
		{token: "Quilt", expected: "quilt", ok: true},
		{token: "1.20.1"},
		{token: "1.8"},
		{token: "Java 17"},
		{token: "Client"},
		{token: "Server"},
		{token: ""},
	}

	for _, test := range testCases {
		t.Run(test.token, func(t *testing.T) {
			loader, ok := loaderForToken(test.token)

			assert.Equal(t, test.ok, ok)
			assert.Equal(t, test.expected, loader)
		})
	}
}
