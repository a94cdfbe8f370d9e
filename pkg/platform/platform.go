// Package platform classifies plugin URLs into a closed set of hosting platforms.
package platform

import (
	"net/url"
	"regexp"
	"strings"
)

// Platform identifies a plugin hosting ecosystem.
type Platform string

const (
	Modrinth        Platform = "modrinth"
	Spigot          Platform = "spigot"
	Hangar          Platform = "hangar"
	BukkitDev       Platform = "bukkitdev"
	CurseForge      Platform = "curseforge"
	GitHub          Platform = "github"
	PlanetMinecraft Platform = "planetminecraft"
)

// Identity is the transient result of classifying a URL.
// The ID format is platform-specific: a project slug for Modrinth,
// "author/project" for Hangar, "owner/repo" for GitHub, and the full
// original URL for platforms whose identifiers need another network
// round trip to resolve (Spigot, CurseForge, PlanetMinecraft).
type Identity struct {
	Platform Platform
	ID       string
}

var (
	expModrinth  = regexp.MustCompile(`/(?:plugin|mod|datapack)/([^/]+)/?`)
	expBukkitDev = regexp.MustCompile(`/projects/([^/]+)/?`)
)

// Detect classifies a raw URL. It is a pure function of the URL string:
// no network access, deterministic, and it never panics. Malformed or
// unrecognized URLs yield ok == false.
func Detect(rawURL string) (Identity, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return Identity{}, false
	}

	host := strings.ToLower(u.Host)

	switch {
	case strings.Contains(host, "modrinth.com"):
		m := expModrinth.FindStringSubmatch(u.Path)
		if m == nil {
			return Identity{}, false
		}
		return Identity{Platform: Modrinth, ID: m[1]}, true

	case strings.Contains(host, "spigotmc.org"):
		// The resource id is buried in the path ("/resources/<name>.<id>/");
		// the Spigot adapter extracts it, so the full URL is the identifier.
		return Identity{Platform: Spigot, ID: rawURL}, true

	case strings.Contains(host, "hangar.papermc.io"):
		segments := pathSegments(u.Path)
		if len(segments) < 2 {
			return Identity{}, false
		}
		return Identity{Platform: Hangar, ID: segments[len(segments)-2] + "/" + segments[len(segments)-1]}, true

	case strings.Contains(host, "dev.bukkit.org"):
		m := expBukkitDev.FindStringSubmatch(u.Path)
		if m == nil {
			return Identity{}, false
		}
		return Identity{Platform: BukkitDev, ID: m[1]}, true

	case strings.Contains(host, "curseforge.com"):
		// Category and slug are parsed downstream by the CurseForge adapter.
		return Identity{Platform: CurseForge, ID: rawURL}, true

	case strings.Contains(host, "github.com"):
		segments := pathSegments(u.Path)
		if len(segments) < 2 {
			return Identity{}, false
		}
		return Identity{Platform: GitHub, ID: segments[0] + "/" + strings.TrimSuffix(segments[1], ".git")}, true

	case strings.Contains(host, "planetminecraft.com"):
		return Identity{Platform: PlanetMinecraft, ID: rawURL}, true
	}

	return Identity{}, false
}

func pathSegments(p string) []string {
	var segments []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
