package adapters

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v57/github"
)

// GitHub resolves repositories through the GitHub REST API. The identifier
// is "owner/repo". GitHub carries no loader or game-version signal, so those
// fields always resolve empty.
type GitHub struct {
	client *github.Client
}

// NewGitHub creates a GitHub adapter.
func NewGitHub(client *github.Client) *GitHub {
	return &GitHub{client: client}
}

func (g *GitHub) repository(ctx context.Context, id string) (*github.Repository, error) {
	owner, name, ok := strings.Cut(id, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("invalid repository identifier %q", id)
	}

	repository, _, err := g.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository %s: %w", id, err)
	}

	return repository, nil
}

// Title returns the repository name.
func (g *GitHub) Title(ctx context.Context, id string) (string, error) {
	repository, err := g.repository(ctx, id)
	if err != nil {
		return "", err
	}

	return repository.GetName(), nil
}

// Author returns the repository owner's login.
func (g *GitHub) Author(ctx context.Context, id string) (string, error) {
	repository, err := g.repository(ctx, id)
	if err != nil {
		return "", err
	}

	return repository.GetOwner().GetLogin(), nil
}

// Description returns the repository description.
func (g *GitHub) Description(ctx context.Context, id string) (string, error) {
	repository, err := g.repository(ctx, id)
	if err != nil {
		return "", err
	}

	return repository.GetDescription(), nil
}

// Icon returns the owner's avatar, query string stripped.
func (g *GitHub) Icon(ctx context.Context, id string) (string, error) {
	repository, err := g.repository(ctx, id)
	if err != nil {
		return "", err
	}

	return stripQuery(repository.GetOwner().GetAvatarURL()), nil
}

// Loaders is always empty for GitHub repositories.
func (g *GitHub) Loaders(_ context.Context, _ string) ([]string, error) {
	return []string{}, nil
}

// Versions is always empty for GitHub repositories.
func (g *GitHub) Versions(_ context.Context, _ string) ([]string, error) {
	return []string{}, nil
}
