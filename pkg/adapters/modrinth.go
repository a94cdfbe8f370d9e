package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

const modrinthAPIURL = "https://api.modrinth.com/v2"

// Modrinth resolves projects through the Modrinth REST API
// (unauthenticated, JSON).
type Modrinth struct {
	client  jsonGetter
	baseURL string
}

type jsonGetter interface {
	GetJSON(ctx context.Context, rawURL string, headers map[string]string, target interface{}) error
}

// NewModrinth creates a Modrinth adapter.
func NewModrinth(c jsonGetter) *Modrinth {
	return &Modrinth{client: c, baseURL: modrinthAPIURL}
}

type modrinthProject struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	IconURL     string   `json:"icon_url"`
	Loaders     []string `json:"loaders"`
	Team        string   `json:"team"`
}

func (m *Modrinth) project(ctx context.Context, slug string) (modrinthProject, error) {
	var project modrinthProject

	err := m.client.GetJSON(ctx, m.baseURL+"/project/"+url.PathEscape(slug), nil, &project)
	if err != nil {
		return modrinthProject{}, fmt.Errorf("failed to get project %s: %w", slug, err)
	}

	return project, nil
}

// Title returns the project title.
func (m *Modrinth) Title(ctx context.Context, id string) (string, error) {
	project, err := m.project(ctx, id)
	if err != nil {
		return "", err
	}

	return project.Title, nil
}

// Author resolves the project team and joins the member usernames with spaces.
func (m *Modrinth) Author(ctx context.Context, id string) (string, error) {
	project, err := m.project(ctx, id)
	if err != nil {
		return "", err
	}

	if project.Team == "" {
		return "", errors.New("project has no team")
	}

	var members []struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
	}

	err = m.client.GetJSON(ctx, m.baseURL+"/team/"+url.PathEscape(project.Team)+"/members", nil, &members)
	if err != nil {
		return "", fmt.Errorf("failed to get team members: %w", err)
	}

	var usernames []string
	for _, member := range members {
		if member.User.Username != "" {
			usernames = append(usernames, member.User.Username)
		}
	}

	return strings.Join(usernames, " "), nil
}

// Description returns the project summary.
func (m *Modrinth) Description(ctx context.Context, id string) (string, error) {
	project, err := m.project(ctx, id)
	if err != nil {
		return "", err
	}

	return project.Description, nil
}

// Icon returns the project icon URL, query string stripped.
func (m *Modrinth) Icon(ctx context.Context, id string) (string, error) {
	project, err := m.project(ctx, id)
	if err != nil {
		return "", err
	}

	return stripQuery(project.IconURL), nil
}

// Loaders returns the project loaders, lowercased.
func (m *Modrinth) Loaders(ctx context.Context, id string) ([]string, error) {
	project, err := m.project(ctx, id)
	if err != nil {
		return nil, err
	}

	loaders := make([]string, 0, len(project.Loaders))
	for _, loader := range project.Loaders {
		loaders = append(loaders, strings.ToLower(loader))
	}

	return loaders, nil
}

// Versions unions game_versions across all published versions of the project.
func (m *Modrinth) Versions(ctx context.Context, id string) ([]string, error) {
	var published []struct {
		GameVersions []string `json:"game_versions"`
	}

	err := m.client.GetJSON(ctx, m.baseURL+"/project/"+url.PathEscape(id)+"/version", nil, &published)
	if err != nil {
		return nil, fmt.Errorf("failed to get project versions: %w", err)
	}

	seen := map[string]struct{}{}
	var versions []string
	for _, version := range published {
		for _, gameVersion := range version.GameVersions {
			if _, ok := seen[gameVersion]; ok {
				continue
			}
			seen[gameVersion] = struct{}{}
			versions = append(versions, gameVersion)
		}
	}

	sort.Strings(versions)

	return versions, nil
}

// Search returns the slug of the best search hit for a free-text query.
// Used by the PlanetMinecraft adapter as a last-resort author lookup.
func (m *Modrinth) Search(ctx context.Context, query string) (string, error) {
	var result struct {
		Hits []struct {
			Slug string `json:"slug"`
		} `json:"hits"`
	}

	err := m.client.GetJSON(ctx, m.baseURL+"/search?query="+url.QueryEscape(query), nil, &result)
	if err != nil {
		return "", fmt.Errorf("failed to search: %w", err)
	}

	if len(result.Hits) == 0 {
		return "", fmt.Errorf("no search hit for %q", query)
	}

	return result.Hits[0].Slug, nil
}
