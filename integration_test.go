package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sjsage522/listingscraper/config"
	"sjsage522/listingscraper/helpers"
	"sjsage522/listingscraper/internal/scraper"
	"sjsage522/listingscraper/services/export"
	"sjsage522/listingscraper/services/publisher"
	"sjsage522/listingscraper/services/worker"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two result pages that mimic a classified search listing
const firstPage = `
<!DOCTYPE html>
<html>
<body>
    <ul class="rows">
        <li class="result-row">
            <time class="result-date" title="Wed 28 Sep 02:03:11 PM">Sep 28</time>
            <a href="https://denver.example.org/apa/1.html" class="result-title hdrlnk">Sunny 2br near park</a>
            <span class="result-meta">
                <span class="result-price">$1,050</span>
                <span class="housing">
                    2br -
                    650ft2 -
                </span>
                <span class="result-hood"> (Capitol Hill)</span>
            </span>
        </li>
        <li class="result-row">
            <a href="https://denver.example.org/apa/2.html" class="result-title hdrlnk">Basement room</a>
            <span class="result-price">$600</span>
        </li>
    </ul>
    <a class="button next" href="/denver/search/hhh?s=120">next &gt;</a>
</body>
</html>
`

const lastPage = `
<html>
<body>
    <ul class="rows">
        <li class="result-row">
            <time title="Tue 27 Sep 09:15:00 AM">Sep 27</time>
            <a href="https://denver.example.org/apa/3.html" class="result-title">Studio downtown</a>
            <span class="housing">400ft2 -</span>
        </li>
    </ul>
    <a class="button next" href="">next &gt;</a>
</body>
</html>
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/denver/") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.URL.Query().Get("s") == "120" {
			io.WriteString(w, lastPage)
			return
		}
		io.WriteString(w, firstPage)
	}))
}

func newTestWorker(t *testing.T, ctx context.Context, server *httptest.Server, outDir, errorLog string, opts worker.Options) *worker.Worker {
	t.Helper()

	cfg := &config.Config{
		Regions:         []string{"broken", "denver"},
		BaseURLTemplate: server.URL + "/%s",
		SearchPath:      "/search/hhh?",
		Headers:         config.DefaultHeaders,
		Parser:          config.ParserHTML,
	}
	require.NoError(t, cfg.Validate())

	parser, err := scraper.NewParser(cfg.Parser)
	require.NoError(t, err)

	walker := scraper.NewWalker(scraper.HTTPFetcher, parser, scraper.NoDelay{}, scraper.DefaultSelectors, nil)

	exporter := export.NewCSVExporter(outDir)
	exporter.Now = func() time.Time { return time.Date(2022, time.October, 3, 12, 0, 0, 0, time.UTC) }

	return worker.NewWorker(ctx, cfg, walker, exporter, helpers.NewLogger(errorLog), opts)
}

// TestIntegration runs a full scrape against a local server and checks the CSV output
func TestIntegration(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	dir := t.TempDir()
	outDir := filepath.Join(dir, "data")
	errorLog := filepath.Join(dir, "error.log")

	w := newTestWorker(t, context.Background(), server, outDir, errorLog, worker.Options{})

	err := w.RunOnce()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 regions failed")

	// the failed region leaves no file behind
	_, statErr := os.Stat(filepath.Join(outDir, "broken_results_10-03-2022.csv"))
	assert.True(t, os.IsNotExist(statErr))

	path := filepath.Join(outDir, "denver_results_10-03-2022.csv")
	ds, err := export.ReadDataset(path, "denver")
	require.NoError(t, err)
	require.Len(t, ds.Rows, 3)

	assert.Equal(t, scraper.ListingRow{
		Title:        "Sunny 2br near park",
		Link:         "https://denver.example.org/apa/1.html",
		Time:         "Wed 28 Sep 02:03:11 PM",
		Price:        "1,050",
		HomeSize:     "650",
		Bedrooms:     "2br",
		Neighborhood: "Capitol Hill",
	}, ds.Rows[0])

	assert.Equal(t, scraper.ListingRow{
		Title:        "Basement room",
		Link:         "https://denver.example.org/apa/2.html",
		Time:         scraper.Missing,
		Price:        "600",
		HomeSize:     scraper.Missing,
		Bedrooms:     scraper.Missing,
		Neighborhood: scraper.Missing,
	}, ds.Rows[1])

	assert.Equal(t, "Studio downtown", ds.Rows[2].Title)
	assert.Equal(t, "400", ds.Rows[2].HomeSize)
	assert.Equal(t, scraper.Missing, ds.Rows[2].Bedrooms)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), ",title,link,time,price,home_size(ft2),bedrooms,neighborhood\n0,"))

	logged, err := os.ReadFile(errorLog)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "[broken]")
	assert.Contains(t, string(logged), "500")
}

// TestIntegrationRedisStream checks that exported rows also reach the region stream
func TestIntegrationRedisStream(t *testing.T) {
	if os.Getenv("CI") != "" {
		t.Skip("Skipping integration test in CI environment")
	}

	ctx := context.Background()
	redisAddr := "localhost:6379"
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr, DB: 0})
	defer redisClient.Close()

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		t.Skip("Redis is not available, skipping integration test")
	}

	prefix := fmt.Sprintf("test_listings_%d", time.Now().UnixNano())
	redisPublisher := publisher.NewRedisPublisher(ctx, redisAddr, 0, prefix, 100)
	defer redisPublisher.Close()
	defer redisClient.Del(ctx, redisPublisher.Stream("denver"))

	server := newTestServer(t)
	defer server.Close()

	dir := t.TempDir()
	w := newTestWorker(t, ctx, server, dir, "", worker.Options{Publisher: redisPublisher})
	_ = w.RunOnce()

	entries, err := redisClient.XRange(ctx, redisPublisher.Stream("denver"), "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	encoded, ok := entries[0].Values[publisher.MessageField].(string)
	require.True(t, ok)
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	var msg map[string]string
	require.NoError(t, json.Unmarshal(decoded, &msg))
	assert.Equal(t, "denver", msg["region"])
	assert.Equal(t, "Sunny 2br near park", msg["title"])
	assert.Equal(t, "1,050", msg["price"])
}
