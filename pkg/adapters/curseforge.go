package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/vulcanocraft/plugdex/pkg/htmlmeta"
)

const (
	curseforgeAPIURL = "https://api.curseforge.com"
	bukkitDevSiteURL = "https://dev.bukkit.org"

	// Minecraft on CurseForge.
	curseforgeGameID = 432
)

// CurseForge project classes relevant to Minecraft servers.
const (
	classBukkitPlugins = 5
	classMods          = 6
	classModpacks      = 4471
)

var curseforgeClassIDs = map[string]int{
	"bukkit-plugins": classBukkitPlugins,
	"mc-mods":        classMods,
	"modpacks":       classModpacks,
}

// Like Spigot resources, bukkit-plugins never declare loaders structurally.
var bukkitLoaders = []string{"bukkit", "spigot", "paper"}

// Loader tokens that can appear in a file's gameVersions array, mixed in
// with game version numbers and Java/OS identifiers.
var knownLoaderTokens = map[string]struct{}{
	"forge":      {},
	"fabric":     {},
	"quilt":      {},
	"neoforge":   {},
	"rift":       {},
	"liteloader": {},
	"cauldron":   {},
}

var expVersionToken = regexp.MustCompile(`^\d+(\.\d+)*`)

// ErrMissingAPIKey is returned when no CurseForge API key is configured.
// The structured API requires one; resolution degrades to the HTML fallback
// (or empty fields) instead of failing the whole record.
var ErrMissingAPIKey = errors.New("missing CurseForge API key")

type htmlGetter interface {
	jsonGetter
	GetHTML(ctx context.Context, rawURL string) (string, error)
}

// CurseForge resolves CurseForge projects and dev.bukkit.org projects, which
// front the same API. The identifier is either a full curseforge.com URL or a
// bare BukkitDev project slug.
type CurseForge struct {
	client  htmlGetter
	apiKey  string
	baseURL string
	siteURL string // BukkitDev project pages, for the HTML fallback
}

// NewCurseForge creates a CurseForge adapter. An empty API key is a normal,
// recoverable condition: structured lookups fail soft and only the HTML
// fallback remains.
func NewCurseForge(c htmlGetter, apiKey string) *CurseForge {
	return &CurseForge{
		client:  c,
		apiKey:  apiKey,
		baseURL: curseforgeAPIURL,
		siteURL: bukkitDevSiteURL,
	}
}

// cfProject is the parsed form of an adapter identifier.
type cfProject struct {
	category string
	slug     string
	pageURL  string
}

func (c *CurseForge) parseIdentifier(ctx context.Context, id string) (cfProject, error) {
	if !strings.Contains(id, "://") {
		// Bare slug: a dev.bukkit.org project. The legacy servermods search
		// knows slugs the main search does not, so resolve through it first.
		slug := c.canonicalSlug(ctx, id)

		return cfProject{
			category: "bukkit-plugins",
			slug:     slug,
			pageURL:  c.siteURL + "/projects/" + slug,
		}, nil
	}

	u, err := url.Parse(id)
	if err != nil {
		return cfProject{}, fmt.Errorf("invalid curseforge URL %q: %w", id, err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 3 {
		return cfProject{}, fmt.Errorf("no project slug in %q", id)
	}

	// Path shape: /minecraft/<category>/<slug>.
	return cfProject{category: segments[1], slug: segments[2], pageURL: id}, nil
}

// canonicalSlug resolves a BukkitDev slug through the legacy servermods
// search, falling back to the input as-is.
func (c *CurseForge) canonicalSlug(ctx context.Context, slug string) string {
	var projects []struct {
		Slug string `json:"slug"`
	}

	err := c.client.GetJSON(ctx, c.baseURL+"/servermods/projects?search="+url.QueryEscape(slug), nil, &projects)
	if err != nil || len(projects) == 0 {
		return slug
	}

	for _, p := range projects {
		if p.Slug == slug {
			return slug
		}
	}

	return projects[0].Slug
}

type cfMod struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Summary string `json:"summary"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	Logo struct {
		URL          string `json:"url"`
		ThumbnailURL string `json:"thumbnailUrl"`
	} `json:"logo"`
	LatestFilesIndexes []struct {
		GameVersion string `json:"gameVersion"`
	} `json:"latestFilesIndexes"`
}

func (c *CurseForge) searchMod(ctx context.Context, project cfProject) (cfMod, error) {
	if c.apiKey == "" {
		return cfMod{}, ErrMissingAPIKey
	}

	endpoint := fmt.Sprintf("%s/v1/mods/search?gameId=%d&slug=%s", c.baseURL, curseforgeGameID, url.QueryEscape(project.slug))
	if classID, ok := curseforgeClassIDs[project.category]; ok {
		endpoint += fmt.Sprintf("&classId=%d", classID)
	}

	var result struct {
		Data []cfMod `json:"data"`
	}

	err := c.client.GetJSON(ctx, endpoint, c.headers(), &result)
	if err != nil {
		return cfMod{}, fmt.Errorf("failed to search mod %s: %w", project.slug, err)
	}

	if len(result.Data) == 0 {
		return cfMod{}, fmt.Errorf("no mod found for slug %s", project.slug)
	}

	for _, mod := range result.Data {
		if mod.Slug == project.slug {
			return mod, nil
		}
	}

	return result.Data[0], nil
}

func (c *CurseForge) headers() map[string]string {
	return map[string]string{
		"Accept":    "application/json",
		"x-api-key": c.apiKey,
	}
}

// hasHTMLFallback reports whether the project has a scrapeable public page.
// Only the bukkit-plugins pages are worth it; the modern mod pages are
// rendered client side.
func (c *CurseForge) hasHTMLFallback(project cfProject) bool {
	return project.category == "bukkit-plugins"
}

func (c *CurseForge) page(ctx context.Context, project cfProject) (string, error) {
	if !c.hasHTMLFallback(project) {
		return "", fmt.Errorf("no HTML fallback for category %s", project.category)
	}

	return c.client.GetHTML(ctx, project.pageURL)
}

// Title returns the mod name from the structured search.
func (c *CurseForge) Title(ctx context.Context, id string) (string, error) {
	project, err := c.parseIdentifier(ctx, id)
	if err != nil {
		return "", err
	}

	mod, err := c.searchMod(ctx, project)
	if err != nil {
		return "", err
	}

	return mod.Name, nil
}

// Author returns the first mod author, falling back to the public page's
// author metadata.
func (c *CurseForge) Author(ctx context.Context, id string) (string, error) {
	project, err := c.parseIdentifier(ctx, id)
	if err != nil {
		return "", err
	}

	mod, err := c.searchMod(ctx, project)
	if err == nil && len(mod.Authors) > 0 && mod.Authors[0].Name != "" {
		return mod.Authors[0].Name, nil
	}

	text, err := c.page(ctx, project)
	if err != nil {
		return "", err
	}

	author := htmlmeta.Author(text)
	if author == "" {
		return "", errors.New("no author metadata on page")
	}

	return author, nil
}

// Description returns the mod summary, falling back to the page's
// description meta tags.
func (c *CurseForge) Description(ctx context.Context, id string) (string, error) {
	project, err := c.parseIdentifier(ctx, id)
	if err != nil {
		return "", err
	}

	mod, err := c.searchMod(ctx, project)
	if err == nil && mod.Summary != "" {
		return mod.Summary, nil
	}

	text, err := c.page(ctx, project)
	if err != nil {
		return "", err
	}

	if description := htmlmeta.Meta(text, "og:description"); description != "" {
		return description, nil
	}

	if description := htmlmeta.Meta(text, "description"); description != "" {
		return description, nil
	}

	return "", errors.New("no description metadata on page")
}

// Icon returns the mod logo (thumbnail preferred), falling back to the
// page's og:image. The query string is always stripped.
func (c *CurseForge) Icon(ctx context.Context, id string) (string, error) {
	project, err := c.parseIdentifier(ctx, id)
	if err != nil {
		return "", err
	}

	mod, err := c.searchMod(ctx, project)
	if err == nil {
		if iconURL := mod.Logo.ThumbnailURL; iconURL != "" {
			return stripQuery(iconURL), nil
		}
		if iconURL := mod.Logo.URL; iconURL != "" {
			return stripQuery(iconURL), nil
		}
	}

	text, err := c.page(ctx, project)
	if err != nil {
		return "", err
	}

	if iconURL := htmlmeta.Meta(text, "og:image"); iconURL != "" {
		return stripQuery(iconURL), nil
	}

	return "", errors.New("no icon metadata on page")
}

// Loaders returns the static Bukkit-family set for bukkit-plugins, and
// infers loaders from file metadata for mods and modpacks.
func (c *CurseForge) Loaders(ctx context.Context, id string) ([]string, error) {
	project, err := c.parseIdentifier(ctx, id)
	if err != nil {
		return nil, err
	}

	if project.category == "bukkit-plugins" {
		loaders := make([]string, len(bukkitLoaders))
		copy(loaders, bukkitLoaders)

		return loaders, nil
	}

	mod, err := c.searchMod(ctx, project)
	if err != nil {
		return nil, err
	}

	var files struct {
		Data []struct {
			GameVersions []string `json:"gameVersions"`
		} `json:"data"`
	}

	endpoint := fmt.Sprintf("%s/v1/mods/%d/files?pageSize=50", c.baseURL, mod.ID)

	err = c.client.GetJSON(ctx, endpoint, c.headers(), &files)
	if err != nil {
		return nil, fmt.Errorf("failed to get mod files: %w", err)
	}

	seen := map[string]struct{}{}
	var loaders []string
	for _, file := range files.Data {
		for _, token := range file.GameVersions {
			loader, ok := loaderForToken(token)
			if !ok {
				continue
			}
			if _, dup := seen[loader]; dup {
				continue
			}
			seen[loader] = struct{}{}
			loaders = append(loaders, loader)
		}
	}

	sort.Strings(loaders)

	return loaders, nil
}

// Versions collects the game versions of the mod's latest file indexes.
func (c *CurseForge) Versions(ctx context.Context, id string) ([]string, error) {
	project, err := c.parseIdentifier(ctx, id)
	if err != nil {
		return nil, err
	}

	mod, err := c.searchMod(ctx, project)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var versions []string
	for _, index := range mod.LatestFilesIndexes {
		if index.GameVersion == "" {
			continue
		}
		if _, ok := seen[index.GameVersion]; ok {
			continue
		}
		seen[index.GameVersion] = struct{}{}
		versions = append(versions, index.GameVersion)
	}

	sort.Strings(versions)

	return versions, nil
}

// loaderForToken classifies a gameVersions token as a loader name.
// Game version numbers ("1.20.1") and environment tokens ("Java 17",
// "Client", "Server") are not loaders.
func loaderForToken(token string) (string, bool) {
	token = strings.ToLower(strings.TrimSpace(token))

	if token == "" || expVersionToken.MatchString(token) {
		return "", false
	}

	if _, ok := knownLoaderTokens[token]; !ok {
		return "", false
	}

	return token, true
}
