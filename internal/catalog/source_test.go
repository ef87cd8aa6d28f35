package catalog_test

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/wayfarer/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func TestFileSource(t *testing.T) {
	defer filet.CleanUp(t)
	dir := filet.TmpDir(t, "")

	t.Run("reads catalog file", func(t *testing.T) {
		path := filepath.Join(dir, "data.json")
		filet.File(t, path, destinationsDoc)

		places, err := catalog.NewFileSource(path).Places(t.Context())

		require.NoError(t, err)
		assert.Equal(t, []string{"Charminar", "Hussain Sagar", "Snow World"}, names(places))
	})

	t.Run("missing file", func(t *testing.T) {
		places, err := catalog.NewFileSource(filepath.Join(dir, "missing.json")).Places(t.Context())

		require.Nil(t, places)
		require.ErrorContains(t, err, "failed to open catalog file")
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		filet.File(t, path, `[{"name": `)

		_, err := catalog.NewFileSource(path).Places(t.Context())

		require.ErrorContains(t, err, "failed to decode catalog document")
	})
}

func TestHTTPSource(t *testing.T) {
	const url = "https://example.com/data.json"

	t.Run("success", func(t *testing.T) {
		client := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, url, req.URL.String())
			assert.Equal(t, "application/json", req.Header.Get("Accept"))
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewBufferString(foodDoc))}, nil
		}}

		places, err := catalog.NewHTTPSourceWithClient(client, url).Places(t.Context())

		require.NoError(t, err)
		assert.Equal(t, []string{"Paradise"}, names(places))
	})

	t.Run("unexpected status", func(t *testing.T) {
		client := &mockHTTPClient{doFunc: func(*http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusNotFound,
				Body:       io.NopCloser(bytes.NewBufferString("not found")),
			}, nil
		}}

		_, err := catalog.NewHTTPSourceWithClient(client, url).Places(t.Context())

		require.ErrorContains(t, err, "catalog server returned status 404: not found")
	})

	t.Run("client error", func(t *testing.T) {
		client := &mockHTTPClient{doFunc: func(*http.Request) (*http.Response, error) {
			return nil, assert.AnError
		}}

		_, err := catalog.NewHTTPSourceWithClient(client, url).Places(t.Context())

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to fetch catalog")
	})

	t.Run("default client", func(t *testing.T) {
		assert.NotNil(t, catalog.NewHTTPSource(url, time.Second))
	})
}
