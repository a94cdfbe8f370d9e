package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/vulcanocraft/plugdex/pkg/htmlmeta"
)

// PlanetMinecraft has no structured API: everything is scraped from the
// project page, with a Modrinth search as the last-resort author lookup.
// The identifier is the full project URL.
type PlanetMinecraft struct {
	client   htmlGetter
	modrinth *Modrinth
}

// NewPlanetMinecraft creates a PlanetMinecraft adapter.
func NewPlanetMinecraft(c htmlGetter, modrinth *Modrinth) *PlanetMinecraft {
	return &PlanetMinecraft{client: c, modrinth: modrinth}
}

// Title comes from the og:title meta tag, or the document title.
func (p *PlanetMinecraft) Title(ctx context.Context, id string) (string, error) {
	text, err := p.client.GetHTML(ctx, id)
	if err != nil {
		return "", err
	}

	if title := htmlmeta.Meta(text, "og:title"); title != "" {
		return title, nil
	}

	if title := htmlmeta.Title(text); title != "" {
		return title, nil
	}

	return "", errors.New("no title metadata on page")
}

// Author scrapes the page metadata and DOM, then falls back to searching
// Modrinth with a name derived from the URL slug.
func (p *PlanetMinecraft) Author(ctx context.Context, id string) (string, error) {
	text, err := p.client.GetHTML(ctx, id)
	if err == nil {
		if author := htmlmeta.Author(text); author != "" {
			return author, nil
		}

		if author := p.authorFromDOM(text); author != "" {
			return author, nil
		}
	}

	guess := slugGuess(id)
	if guess == "" {
		return "", errors.New("no author on page and no usable slug")
	}

	slug, err := p.modrinth.Search(ctx, guess)
	if err != nil {
		return "", fmt.Errorf("fallback search failed: %w", err)
	}

	return p.modrinth.Author(ctx, slug)
}

// authorFromDOM walks the parsed page for the member-profile conventions the
// site uses: a /member/ link, or an avatar image's alt text.
func (p *PlanetMinecraft) authorFromDOM(text string) string {
	if author := htmlmeta.MemberLink(text); author != "" {
		return author
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return ""
	}

	if author := strings.TrimSpace(doc.Find(`a[href^="/member/"]`).First().Text()); author != "" {
		return author
	}

	if alt, ok := doc.Find("img.avatar").First().Attr("alt"); ok {
		return strings.TrimSpace(alt)
	}

	return ""
}

// Description comes from the page's description meta tags.
func (p *PlanetMinecraft) Description(ctx context.Context, id string) (string, error) {
	text, err := p.client.GetHTML(ctx, id)
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

// Icon comes from the page's og:image, query string stripped.
func (p *PlanetMinecraft) Icon(ctx context.Context, id string) (string, error) {
	text, err := p.client.GetHTML(ctx, id)
	if err != nil {
		return "", err
	}

	if iconURL := htmlmeta.Meta(text, "og:image"); iconURL != "" {
		return stripQuery(iconURL), nil
	}

	return "", errors.New("no icon metadata on page")
}

// Loaders cannot be derived from PlanetMinecraft pages.
func (p *PlanetMinecraft) Loaders(_ context.Context, _ string) ([]string, error) {
	return []string{}, nil
}

// Versions cannot be derived from PlanetMinecraft pages.
func (p *PlanetMinecraft) Versions(_ context.Context, _ string) ([]string, error) {
	return []string{}, nil
}

// slugGuess turns the last URL path segment into a human-readable name:
// dashes become spaces and a trailing "datapack" qualifier is dropped.
func slugGuess(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	slug := segments[len(segments)-1]
	if slug == "" {
		return ""
	}

	guess := strings.ReplaceAll(slug, "-", " ")
	if strings.HasSuffix(strings.ToLower(guess), " datapack") {
		guess = guess[:len(guess)-len(" datapack")]
	}

	return strings.TrimSpace(guess)
}
