package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHangar_fields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/projects/EssentialsX/Essentials", func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = rw.Write([]byte(`{
			"name": "Essentials",
			"description": "The modern Essentials suite.",
			"avatarUrl": "https://hangarcdn.papermc.io/avatars/Essentials.png?v=1"
		}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	h := NewHangar(newTestClient(t))
	h.baseURL = srv.URL

	ctx := context.Background()

	title, err := h.Title(ctx, "EssentialsX/Essentials")
	require.NoError(t, err)
	assert.Equal(t, "Essentials", title)

	description, err := h.Description(ctx, "EssentialsX/Essentials")
	require.NoError(t, err)
	assert.Equal(t, "The modern Essentials suite.", description)

	icon, err := h.Icon(ctx, "EssentialsX/Essentials")
	require.NoError(t, err)
	assert.Equal(t, "https://hangarcdn.papermc.io/avatars/Essentials.png", icon)
}

func TestHangar_Author_fromIdentifier(t *testing.T) {
	h := NewHangar(newTestClient(t))

	author, err := h.Author(context.Background(), "EssentialsX/Essentials")
	require.NoError(t, err)
	assert.Equal(t, "EssentialsX", author)

	_, err = h.Author(context.Background(), "essentials")
	assert.Error(t, err)
}

func TestHangar_LoadersAndVersions_paginated(t *testing.T) {
	pages := map[int]string{
		0:  `{"pagination": {"count": 3}, "result": [{"platformDependencies": {"PAPER": ["1.20.1"]}}, {"platformDependencies": {"WATERFALL": ["1.19.4"]}}]}`,
		25: `{"pagination": {"count": 3}, "result": [{"platformDependencies": {"PAPER": ["1.20.4"]}}]}`,
	}

	var requests int

	mux := http.NewServeMux()
	mux.HandleFunc("/projects/EssentialsX/Essentials/versions", func(rw http.ResponseWriter, req *http.Request) {
		requests++

		offset, _ := strconv.Atoi(req.URL.Query().Get("offset"))
		page, ok := pages[offset]
		if !ok {
			page = `{"pagination": {"count": 3}, "result": []}`
		}

		_, _ = fmt.Fprint(rw, page)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	h := NewHangar(newTestClient(t))
	h.baseURL = srv.URL

	loaders, err := h.Loaders(context.Background(), "EssentialsX/Essentials")
	require.NoError(t, err)
	assert.Equal(t, []string{"paper", "waterfall"}, loaders)

	versions, err := h.Versions(context.Background(), "EssentialsX/Essentials")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.19.4", "1.20.1", "1.20.4"}, versions)

	// Both calls page twice: offsets 0 and 25.
	assert.Equal(t, 4, requests)
}

func TestHangar_Loaders_velocitySpecialCase(t *testing.T) {
	// No server: the Velocity loader set is pinned, the API under-reports it.
	h := NewHangar(newTestClient(t))

	loaders, err := h.Loaders(context.Background(), "PaperMC/Velocity")
	require.NoError(t, err)

	assert.Equal(t, []string{"velocity", "waterfall", "paper"}, loaders)
}

func TestHangar_upstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = rw.Write([]byte("<html>maintenance</html>"))
	}))
	t.Cleanup(srv.Close)

	h := NewHangar(newTestClient(t))
	h.baseURL = srv.URL

	_, err := h.Title(context.Background(), "EssentialsX/Essentials")
	assert.Error(t, err)

	_, err = h.Versions(context.Background(), "EssentialsX/Essentials")
	assert.Error(t, err)
}
