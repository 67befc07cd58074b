package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hugo-directus/pkg/logger"
	"hugo-directus/pkg/models"
)

const siteCollections = `{"data":[
	{"collection":"directus_files","meta":{"singleton":false,"system":true}},
	{"collection":"home","meta":{"singleton":true,"system":false}},
	{"collection":"about","meta":{"singleton":true,"system":false}},
	{"collection":"blog","meta":{"singleton":false,"system":false}},
	{"collection":"broken","meta":{"singleton":false,"system":false}}
]}`

var siteItems = map[string]string{
	"home":  `{"data":{"id":1,"title":"Home","status":"published"}}`,
	"about": `{"data":{"id":1,"title":"About","status":"published","body":"About us"}}`,
	"blog": `{"data":[
		{"id":42,"title":"Hello World","status":"published","date_created":"2021-05-01T09:30:00.000Z","cover":"` + photoID + `"},
		{"id":43,"title":"Index","status":"published","body":"All posts"},
		{"id":44,"title":"Work in progress","status":"draft"},
		{"id":45,"title":"Gone","status":"archived"},
		{"id":46,"title":"Half broken","status":"published","cover":"` + brokenID + `"},
		{"id":47,"status":"published"}
	]}`,
}

func TestSyncerRun(t *testing.T) {
	f, client := newFakeCMS(t, siteCollections, siteItems)
	root := filepath.Join(t.TempDir(), "content")
	syncer := NewSyncerWithAuth(testConfig(root), logger.Discard(), client)

	report, err := syncer.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Collections)
	assert.Equal(t, 5, report.Imported)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 2)
	require.Len(t, report.FieldFailures, 1)
	assert.Equal(t, "46", report.FieldFailures[0].ItemID)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	var collectionFailure, itemFailure bool
	for _, failure := range report.Failures {
		switch {
		case failure.Collection == "broken" && failure.ItemID == "":
			collectionFailure = true
		case failure.Collection == "blog" && failure.ItemID == "47":
			itemFailure = errors.Is(failure.Err, ErrMissingTitle)
		}
	}
	assert.True(t, collectionFailure, "listing failure of broken collection recorded")
	assert.True(t, itemFailure, "item without title recorded")

	// home singleton lands at the root, title untouched, empty body
	fm, body := readFrontMatter(t, filepath.Join(root, "_index.md"))
	assert.Equal(t, "Home", fm["title"])
	assert.Equal(t, "", body)

	_, body = readFrontMatter(t, filepath.Join(root, "about", "_index.md"))
	assert.Equal(t, "About us", body)

	_, body = readFrontMatter(t, filepath.Join(root, "blog", "_index.md"))
	assert.Equal(t, "All posts", body)

	leaf := filepath.Join(root, "blog", "42_2021-05-01_hello-world")
	fm, _ = readFrontMatter(t, filepath.Join(leaf, "index.md"))
	assert.Equal(t, "photo.jpg", fm["cover"])
	assert.FileExists(t, filepath.Join(leaf, "photo.jpg"))

	// a failed asset still lets the item be written
	fm, _ = readFrontMatter(t, filepath.Join(root, "blog", "46_half-broken", "index.md"))
	assert.Equal(t, brokenID, fm["cover"])

	assert.NoDirExists(t, filepath.Join(root, "blog", "44_work-in-progress"))
	assert.NoDirExists(t, filepath.Join(root, "blog", "45_gone"))
	assert.NoDirExists(t, filepath.Join(root, "directus_files"))
	assert.Equal(t, 0, f.hitCount("/items/directus_files"))
}

func TestSyncerRunWithDrafts(t *testing.T) {
	_, client := newFakeCMS(t, siteCollections, siteItems)
	root := filepath.Join(t.TempDir(), "content")
	cfg := testConfig(root)
	cfg.BuildDrafts = true
	cfg.Sync.Concurrency = 1

	report, err := NewSyncerWithAuth(cfg, logger.Discard(), client).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, report.Imported)
	assert.Equal(t, 1, report.Skipped)
	assert.FileExists(t, filepath.Join(root, "blog", "44_work-in-progress", "index.md"))
}

func TestSyncerLogsInOnce(t *testing.T) {
	f, client := newFakeCMS(t, `{"data":[]}`, nil)
	cfg := testConfig(filepath.Join(t.TempDir(), "content"))
	cfg.CMS.Email = "bot@example.com"
	cfg.CMS.Password = "secret"
	syncer := NewSyncerWithAuth(cfg, logger.Discard(), client)

	for i := 0; i < 3; i++ {
		_, err := syncer.Run(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, f.loginCount())
}

func TestSyncerRunFailsWithoutCollections(t *testing.T) {
	_, client := newFakeCMS(t, `not json`, nil)
	cfg := testConfig(filepath.Join(t.TempDir(), "content"))

	report, err := NewSyncerWithAuth(cfg, logger.Discard(), client).Run(context.Background())
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestSyncerRunsSiteBuild(t *testing.T) {
	_, client := newFakeCMS(t, `{"data":[]}`, nil)
	cfg := testConfig(filepath.Join(t.TempDir(), "content"))
	cfg.Hugo.Build = true
	cfg.Hugo.Source = "site"

	var built []string
	syncer := NewSyncerWithAuth(cfg, logger.Discard(), client)
	syncer.build = func(ctx context.Context, source string) (string, error) {
		built = append(built, source)
		return "", nil
	}

	_, err := syncer.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"site"}, built)
}

func TestRunFullSync(t *testing.T) {
	_, client := newFakeCMS(t, siteCollections, siteItems)
	root := filepath.Join(t.TempDir(), "content")

	NewSyncerWithAuth(testConfig(root), logger.Discard(), client).RunFullSync()

	_, err := os.Stat(filepath.Join(root, "_index.md"))
	assert.NoError(t, err)
}

func TestRunReportOutcomesCoverEveryItem(t *testing.T) {
	_, client := newFakeCMS(t, siteCollections, siteItems)
	cfg := testConfig(filepath.Join(t.TempDir(), "content"))

	report, err := NewSyncerWithAuth(cfg, logger.Discard(), client).Run(context.Background())
	require.NoError(t, err)
	// 1 home + 1 about + 6 blog items
	assert.Equal(t, 8, report.Imported+report.Skipped+report.Failed)

	var failedItems int
	for _, f := range report.Failures {
		if f.ItemID != "" {
			failedItems++
		}
	}
	assert.Equal(t, report.Failed, failedItems)
	assert.IsType(t, models.Failure{}, report.Failures[0])
}
