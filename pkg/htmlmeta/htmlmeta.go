// Package htmlmeta extracts metadata from raw HTML without a parser dependency.
//
// The upstream pages this is used on (dev.bukkit.org, curseforge.com,
// planetminecraft.com) are fetched as a last resort when the structured APIs
// come up empty, and are frequently malformed or partially rendered. The
// extractors are plain regex matchers: best effort, tolerant of attribute
// order, and they never fail hard.
package htmlmeta

import (
	"html"
	"regexp"
	"strings"
)

var (
	expJSONLDAuthor = regexp.MustCompile(`(?i)"author"\s*:\s*\{\s*"@type"\s*:\s*"(?:Person|Organization)"\s*,\s*"name"\s*:\s*"([^"]+)"`)
	expByLink       = regexp.MustCompile(`(?i)>\s*by\s*<a[^>]*>([^<]+)</a>`)
	expMemberLink   = regexp.MustCompile(`(?i)href="/member/[^"]+"[^>]*>([^<]+)</a>`)
	expTitleTag     = regexp.MustCompile(`(?is)<title[^>]*>([^<]+)</title>`)
)

// Meta returns the content of the <meta> tag whose name or property attribute
// equals name, independent of attribute order. It returns "" when the tag is
// absent or the input is not usable HTML.
func Meta(text, name string) string {
	quoted := regexp.QuoteMeta(name)

	// RE2 has no lookaheads, so both attribute orders are tried explicitly.
	patterns := []string{
		`(?i)<meta[^>]*(?:name|property)=["']` + quoted + `["'][^>]*content=["']([^"']+)["']`,
		`(?i)<meta[^>]*content=["']([^"']+)["'][^>]*(?:name|property)=["']` + quoted + `["']`,
	}

	for _, pattern := range patterns {
		exp, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}

		if m := exp.FindStringSubmatch(text); m != nil {
			return html.UnescapeString(strings.TrimSpace(m[1]))
		}
	}

	return ""
}

// Author tries the metadata conventions pages actually use for authorship:
// author/article:author meta tags, schema.org JSON-LD, and a trailing
// "by <a>Name</a>" link.
func Author(text string) string {
	if author := Meta(text, "author"); author != "" {
		return author
	}

	if author := Meta(text, "article:author"); author != "" {
		return author
	}

	if m := expJSONLDAuthor.FindStringSubmatch(text); m != nil {
		return html.UnescapeString(strings.TrimSpace(m[1]))
	}

	if m := expByLink.FindStringSubmatch(text); m != nil {
		return html.UnescapeString(strings.TrimSpace(m[1]))
	}

	return ""
}

// MemberLink extracts the anchor text of a /member/ profile link
// (planetminecraft.com convention).
func MemberLink(text string) string {
	m := expMemberLink.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	return html.UnescapeString(strings.TrimSpace(m[1]))
}

// Title returns the document <title> text, "" when absent.
func Title(text string) string {
	m := expTitleTag.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	return html.UnescapeString(strings.TrimSpace(m[1]))
}
