package adapters

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

const (
	hangarAPIURL   = "https://hangar.papermc.io/api/v1"
	hangarPageSize = 25
)

// The generic versions API under-reports the Velocity proxy itself.
var velocityLoaders = []string{"velocity", "waterfall", "paper"}

// Hangar resolves projects through the PaperMC Hangar API.
// The identifier is "author/project".
type Hangar struct {
	client  jsonGetter
	baseURL string
}

// NewHangar creates a Hangar adapter.
func NewHangar(c jsonGetter) *Hangar {
	return &Hangar{client: c, baseURL: hangarAPIURL}
}

type hangarProject struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	AvatarURL   string `json:"avatarUrl"`
}

func (h *Hangar) project(ctx context.Context, id string) (hangarProject, error) {
	var project hangarProject

	err := h.client.GetJSON(ctx, h.baseURL+"/projects/"+id, nil, &project)
	if err != nil {
		return hangarProject{}, fmt.Errorf("failed to get project %s: %w", id, err)
	}

	return project, nil
}

// Title returns the project name.
func (h *Hangar) Title(ctx context.Context, id string) (string, error) {
	project, err := h.project(ctx, id)
	if err != nil {
		return "", err
	}

	return project.Name, nil
}

// Author is the first identifier segment; no network call needed.
func (h *Hangar) Author(_ context.Context, id string) (string, error) {
	author, _, ok := strings.Cut(id, "/")
	if !ok || author == "" {
		return "", fmt.Errorf("invalid hangar identifier %q", id)
	}

	return author, nil
}

// Description returns the project description.
func (h *Hangar) Description(ctx context.Context, id string) (string, error) {
	project, err := h.project(ctx, id)
	if err != nil {
		return "", err
	}

	return project.Description, nil
}

// Icon returns the project avatar, query string stripped.
func (h *Hangar) Icon(ctx context.Context, id string) (string, error) {
	project, err := h.project(ctx, id)
	if err != nil {
		return "", err
	}

	return stripQuery(project.AvatarURL), nil
}

// Loaders unions the platformDependencies keys (loader names) across all
// project versions.
func (h *Hangar) Loaders(ctx context.Context, id string) ([]string, error) {
	if strings.EqualFold(id, "papermc/velocity") {
		loaders := make([]string, len(velocityLoaders))
		copy(loaders, velocityLoaders)

		return loaders, nil
	}

	versions, err := h.versions(ctx, id)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var loaders []string
	for _, version := range versions {
		for loader := range version.PlatformDependencies {
			loader = strings.ToLower(loader)
			if _, ok := seen[loader]; ok {
				continue
			}
			seen[loader] = struct{}{}
			loaders = append(loaders, loader)
		}
	}

	sort.Strings(loaders)

	return loaders, nil
}

// Versions unions the platformDependencies values (game versions) across all
// project versions.
func (h *Hangar) Versions(ctx context.Context, id string) ([]string, error) {
	versions, err := h.versions(ctx, id)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var gameVersions []string
	for _, version := range versions {
		for _, deps := range version.PlatformDependencies {
			for _, gameVersion := range deps {
				if _, ok := seen[gameVersion]; ok {
					continue
				}
				seen[gameVersion] = struct{}{}
				gameVersions = append(gameVersions, gameVersion)
			}
		}
	}

	sort.Strings(gameVersions)

	return gameVersions, nil
}

type hangarVersion struct {
	PlatformDependencies map[string][]string `json:"platformDependencies"`
}

// versions pages through the project's versions endpoint.
func (h *Hangar) versions(ctx context.Context, id string) ([]hangarVersion, error) {
	var all []hangarVersion

	for offset := 0; ; offset += hangarPageSize {
		var page struct {
			Pagination struct {
				Count int `json:"count"`
			} `json:"pagination"`
			Result []hangarVersion `json:"result"`
		}

		endpoint := fmt.Sprintf("%s/projects/%s/versions?limit=%d&offset=%d", h.baseURL, id, hangarPageSize, offset)

		err := h.client.GetJSON(ctx, endpoint, nil, &page)
		if err != nil {
			return nil, fmt.Errorf("failed to get project versions: %w", err)
		}

		all = append(all, page.Result...)

		if len(page.Result) == 0 || len(all) >= page.Pagination.Count {
			break
		}
	}

	return all, nil
}
