package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"syntech_importer/lib"
	"syntech_importer/structs"

	"github.com/MonkyMars/gecho"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(feedURL string) *structs.Config {
	return &structs.Config{
		Feed: &structs.FeedConfig{
			URL:          feedURL,
			FetchTimeout: 5 * time.Second,
			ImageTimeout: 2 * time.Second,
			MaxBodyBytes: 10 << 20,
		},
		Media: &structs.MediaConfig{},
	}
}

func testLogger() *gecho.Logger {
	return gecho.NewDefaultLogger()
}

func TestParseEmptyObjectIsMalformed(t *testing.T) {
	fs := NewFeedService(testLogger(), testConfig(""))

	_, err := fs.Parse([]byte(`{}`))

	require.Error(t, err)
	assert.ErrorIs(t, err, lib.ErrMalformedFeed)
}

func TestParseInvalidJSONIsMalformed(t *testing.T) {
	fs := NewFeedService(testLogger(), testConfig(""))

	_, err := fs.Parse([]byte(`{"syntechstock": [`))

	require.Error(t, err)
	assert.ErrorIs(t, err, lib.ErrMalformedFeed)
}

func TestParseEmptyProductListIsMalformed(t *testing.T) {
	fs := NewFeedService(testLogger(), testConfig(""))

	_, err := fs.Parse([]byte(`{"syntechstock": {"products": []}}`))

	require.Error(t, err)
	assert.ErrorIs(t, err, lib.ErrMalformedFeed)
}

func TestParsePreservesFeedOrder(t *testing.T) {
	fs := NewFeedService(testLogger(), testConfig(""))

	records, err := fs.Parse([]byte(`{"syntechstock": {"products": [
		{"sku": "SYN-B", "name": "Second"},
		{"sku": "SYN-A", "name": "First"},
		{"sku": "SYN-B", "name": "Second again"}
	]}}`))

	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "SYN-B", records[0].SKU)
	assert.Equal(t, "SYN-A", records[1].SKU)
	assert.Equal(t, "Second again", records[2].Name)
}

func TestFetchReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"syntechstock": {"products": [{"sku": "SYN-1"}]}}`))
	}))
	defer server.Close()

	fs := NewFeedService(testLogger(), testConfig(server.URL))

	body, err := fs.Fetch(context.Background())

	require.NoError(t, err)
	records, err := fs.Parse(body)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestFetchNonOKStatusFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	fs := NewFeedService(testLogger(), testConfig(server.URL))

	_, err := fs.Fetch(context.Background())

	assert.Error(t, err)
}

func TestFetchUnconfiguredURLFails(t *testing.T) {
	fs := NewFeedService(testLogger(), testConfig(""))

	_, err := fs.Fetch(context.Background())

	assert.Error(t, err)
}
