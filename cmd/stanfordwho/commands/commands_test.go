package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stanfordwho-parser/internal/config"
	"stanfordwho-parser/internal/observability"
)

func TestApplyScrapeFlags(t *testing.T) {
	require.NoError(t, scrapeCmd.Flags().Set("url", "file:///tmp/sample.html"))
	require.NoError(t, scrapeCmd.Flags().Set("static", "true"))
	require.NoError(t, scrapeCmd.Flags().Set("max-pages", "4"))

	cfg := config.Default()
	applyScrapeFlags(scrapeCmd, cfg)

	assert.Equal(t, "file:///tmp/sample.html", cfg.Scrape.StartURL)
	assert.False(t, cfg.Rod.Enabled)
	assert.Equal(t, 4, cfg.Scrape.MaxPages)
	// не переданные флаги не трогают конфиг
	assert.Equal(t, 20, cfg.Scrape.WaitTimeoutS)
}

func TestContactsPipeline(t *testing.T) {
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "groups.html")
	csvPath := filepath.Join(dir, "contacts.csv")
	namesPath := filepath.Join(dir, "names.txt")

	page := `<div role="group" aria-label="Chess Club"><p>Contact: <a>Alice</a> <a>Email group officers</a> <a>Bob</a></p></div>`
	require.NoError(t, os.WriteFile(htmlPath, []byte(page), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)

	rootCmd.SetArgs([]string{"contacts", "extract", "-i", htmlPath, "-o", csvPath})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "Wrote 3 contacts")

	rootCmd.SetArgs([]string{"contacts", "join", "-i", csvPath, "-o", namesPath})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	names, err := os.ReadFile(namesPath)
	require.NoError(t, err)
	assert.Equal(t, "Alice, Bob", string(names))
}

func TestRunScrapeKeepsOutputWhenStartPageFails(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(output, []byte("name,email,affiliation,department\nJane Doe,,,\n"), 0o644))

	cfg := config.Default()
	cfg.Rod.Enabled = false
	cfg.Scrape.StartURL = "file://" + filepath.Join(dir, "missing.html")
	cfg.Scrape.OutputPath = output

	res, err := runScrape(context.Background(), cfg, observability.NewNopLogger())
	require.Error(t, err)
	assert.Nil(t, res.stats)

	kept, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(kept), "Jane Doe")
}

func TestRunScrapeStaticSnapshot(t *testing.T) {
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "sample.html")
	output := filepath.Join(dir, "people.csv")
	page := `<html><body><div class="t-Card"><h3>Jane Doe</h3><p>Dept of X</p><p>Student - Foo</p></div></body></html>`
	require.NoError(t, os.WriteFile(snapshot, []byte(page), 0o644))

	cfg := config.Default()
	cfg.Rod.Enabled = false
	cfg.Scrape.StartURL = "file://" + snapshot
	cfg.Scrape.OutputPath = output
	cfg.Scrape.SettleMS = 0
	cfg.Scrape.PagePauseMS = 0

	res, err := runScrape(context.Background(), cfg, observability.NewNopLogger())
	require.NoError(t, err)
	require.NotNil(t, res.stats)
	assert.Equal(t, 1, res.stats.Records)
	assert.Nil(t, res.mirror)

	written, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "name,email,affiliation,department\nJane Doe,,Student - Foo,Dept of X\n", string(written))
}
