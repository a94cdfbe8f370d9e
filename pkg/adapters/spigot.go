package adapters

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	spigetAPIURL  = "https://api.spiget.org/v2"
	spigotSiteURL = "https://www.spigotmc.org/"
)

// Spigot resources never declare loaders structurally; every Bukkit-family
// resource runs on these.
var spigotLoaders = []string{"bukkit", "spigot", "paper"}

var expSpigotResource = regexp.MustCompile(`/resources/[^/]+\.(\d+)/?`)

// Spigot resolves SpigotMC resources through the Spiget API.
// The identifier is the full resource URL; the numeric resource id is
// extracted from its path.
type Spigot struct {
	client  jsonGetter
	baseURL string
}

// NewSpigot creates a Spigot adapter.
func NewSpigot(c jsonGetter) *Spigot {
	return &Spigot{client: c, baseURL: spigetAPIURL}
}

type spigetResource struct {
	Name string `json:"name"`
	Tag  string `json:"tag"`
	Icon struct {
		URL string `json:"url"`
	} `json:"icon"`
	TestedVersions []string `json:"testedVersions"`
}

func (s *Spigot) resource(ctx context.Context, id string) (spigetResource, error) {
	m := expSpigotResource.FindStringSubmatch(id)
	if m == nil {
		return spigetResource{}, fmt.Errorf("no resource id in %q", id)
	}

	var resource spigetResource

	err := s.client.GetJSON(ctx, s.baseURL+"/resources/"+m[1], nil, &resource)
	if err != nil {
		return spigetResource{}, fmt.Errorf("failed to get resource %s: %w", m[1], err)
	}

	return resource, nil
}

// Title returns the resource name.
func (s *Spigot) Title(ctx context.Context, id string) (string, error) {
	resource, err := s.resource(ctx, id)
	if err != nil {
		return "", err
	}

	return resource.Name, nil
}

// Author queries the resource author endpoint.
func (s *Spigot) Author(ctx context.Context, id string) (string, error) {
	m := expSpigotResource.FindStringSubmatch(id)
	if m == nil {
		return "", fmt.Errorf("no resource id in %q", id)
	}

	var author struct {
		Name string `json:"name"`
	}

	err := s.client.GetJSON(ctx, s.baseURL+"/resources/"+m[1]+"/author", nil, &author)
	if err != nil {
		return "", fmt.Errorf("failed to get resource author: %w", err)
	}

	return author.Name, nil
}

// Description returns the resource tag line.
func (s *Spigot) Description(ctx context.Context, id string) (string, error) {
	resource, err := s.resource(ctx, id)
	if err != nil {
		return "", err
	}

	return resource.Tag, nil
}

// Icon returns the resource icon. Spiget serves icon paths relative to the
// SpigotMC site, so relative URLs are rebased onto spigotmc.org.
func (s *Spigot) Icon(ctx context.Context, id string) (string, error) {
	resource, err := s.resource(ctx, id)
	if err != nil {
		return "", err
	}

	iconURL := resource.Icon.URL
	if iconURL == "" {
		return "", nil
	}

	if !strings.HasPrefix(iconURL, "http://") && !strings.HasPrefix(iconURL, "https://") {
		iconURL = spigotSiteURL + strings.TrimPrefix(iconURL, "/")
	}

	return stripQuery(iconURL), nil
}

// Loaders returns the fixed Bukkit-family loader set, regardless of upstream.
func (s *Spigot) Loaders(_ context.Context, _ string) ([]string, error) {
	loaders := make([]string, len(spigotLoaders))
	copy(loaders, spigotLoaders)

	return loaders, nil
}

// Versions returns the resource's tested game versions.
func (s *Spigot) Versions(ctx context.Context, id string) ([]string, error) {
	resource, err := s.resource(ctx, id)
	if err != nil {
		return nil, err
	}

	versions := make([]string, len(resource.TestedVersions))
	copy(versions, resource.TestedVersions)
	sort.Strings(versions)

	return versions, nil
}
