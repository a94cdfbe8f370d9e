// Package adapters implements the per-platform metadata fetchers.
//
// Every adapter exposes the same six capabilities. Each one is independent:
// adapters never use the result of one field to compute another, so the
// resolver is free to run them concurrently. A failed fetch returns an error
// for that field only; the resolver converts it into the field's empty value.
package adapters

import (
	"context"
	"net/url"

	"github.com/google/go-github/v57/github"
	"github.com/vulcanocraft/plugdex/pkg/client"
	"github.com/vulcanocraft/plugdex/pkg/platform"
)

// Adapter fetches one platform's metadata fields.
type Adapter interface {
	Title(ctx context.Context, id string) (string, error)
	Author(ctx context.Context, id string) (string, error)
	Description(ctx context.Context, id string) (string, error)
	Icon(ctx context.Context, id string) (string, error)
	Loaders(ctx context.Context, id string) ([]string, error)
	Versions(ctx context.Context, id string) ([]string, error)
}

// Registry maps each platform to its adapter.
type Registry map[platform.Platform]Adapter

// NewRegistry wires the adapters for all supported platforms.
// The CurseForge adapter also serves dev.bukkit.org: both front the same API.
func NewRegistry(httpClient *client.Client, ghClient *github.Client, curseforgeAPIKey string) Registry {
	modrinth := NewModrinth(httpClient)
	curseforge := NewCurseForge(httpClient, curseforgeAPIKey)

	return Registry{
		platform.Modrinth:        modrinth,
		platform.Spigot:          NewSpigot(httpClient),
		platform.Hangar:          NewHangar(httpClient),
		platform.BukkitDev:       curseforge,
		platform.CurseForge:      curseforge,
		platform.GitHub:          NewGitHub(ghClient),
		platform.PlanetMinecraft: NewPlanetMinecraft(httpClient, modrinth),
	}
}

// Get returns the adapter for a platform.
func (r Registry) Get(p platform.Platform) (Adapter, bool) {
	a, ok := r[p]
	return a, ok
}

// stripQuery removes the query and fragment from an icon URL.
// Idempotent: stripQuery(stripQuery(x)) == stripQuery(x).
func stripQuery(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.RawQuery = ""
	u.Fragment = ""

	return u.String()
}
