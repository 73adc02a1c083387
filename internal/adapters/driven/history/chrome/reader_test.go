package chrome

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/themescope/internal/core/domain"
)

type fixtureVisit struct {
	url    string
	title  any
	visits int
	typed  int
	at     time.Time
}

// writeHistory creates a minimal Chrome History database at path.
func writeHistory(t *testing.T, path string, rows []fixtureVisit) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
CREATE TABLE urls (id INTEGER PRIMARY KEY, url TEXT, title TEXT, visit_count INTEGER, typed_count INTEGER);
CREATE TABLE visits (id INTEGER PRIMARY KEY, url INTEGER, visit_time INTEGER);`)
	require.NoError(t, err)

	for i, r := range rows {
		id := i + 1
		_, err = db.Exec(`INSERT INTO urls (id, url, title, visit_count, typed_count) VALUES (?, ?, ?, ?, ?)`,
			id, r.url, r.title, r.visits, r.typed)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO visits (url, visit_time) VALUES (?, ?)`, id, TimeToWebKit(r.at))
		require.NoError(t, err)
	}
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 12, 0, 0, 0, time.UTC)
}

func TestWebKitConversion(t *testing.T) {
	assert.Equal(t, time.Date(1601, 1, 1, 0, 0, 0, 0, time.UTC), WebKitToTime(0))

	// 2021-01-01T00:00:00Z as stored by Chrome.
	got := WebKitToTime(13253932800000000)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, int64(13253932800000000), TimeToWebKit(got))
}

func TestReader_Load_SortsAscending(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "History")
	writeHistory(t, path, []fixtureVisit{
		{url: "https://b.example/", title: "B", visits: 3, typed: 1, at: day(5)},
		{url: "https://a.example/", title: nil, visits: 1, at: day(2)},
		{url: "https://c.example/", title: "C", visits: 7, typed: 2, at: day(9)},
	})

	visits, err := NewReader(path).Load(context.Background(), domain.HistoryQuery{})

	require.NoError(t, err)
	require.Len(t, visits, 3)
	assert.Equal(t, "https://a.example/", visits[0].URL)
	assert.Empty(t, visits[0].Title)
	assert.Equal(t, day(2), visits[0].Time)
	assert.Equal(t, "https://c.example/", visits[2].URL)
	assert.Equal(t, 7, visits[2].VisitCount)
	assert.Equal(t, 2, visits[2].TypedCount)
}

func TestReader_Load_DateRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "History")
	writeHistory(t, path, []fixtureVisit{
		{url: "https://a.example/", at: day(1)},
		{url: "https://b.example/", at: day(10)},
		{url: "https://c.example/", at: day(20)},
	})
	since, until := day(10), day(20)

	visits, err := NewReader(path).Load(context.Background(), domain.HistoryQuery{Since: &since, Until: &until})

	require.NoError(t, err)
	require.Len(t, visits, 2)
	assert.Equal(t, "https://b.example/", visits[0].URL)
	assert.Equal(t, "https://c.example/", visits[1].URL)
}

func TestReader_Load_IncludeArchived(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "History")
	writeHistory(t, path, []fixtureVisit{{url: "https://main.example/", at: day(5)}})
	writeHistory(t, filepath.Join(dir, ArchivedFileName), []fixtureVisit{{url: "https://old.example/", at: day(1)}})

	reader := NewReader(path)

	without, err := reader.Load(context.Background(), domain.HistoryQuery{})
	require.NoError(t, err)
	assert.Len(t, without, 1)

	with, err := reader.Load(context.Background(), domain.HistoryQuery{IncludeArchived: true})
	require.NoError(t, err)
	require.Len(t, with, 2)
	assert.Equal(t, "https://old.example/", with[0].URL)
}

func TestReader_Load_CorruptArchiveIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "History")
	writeHistory(t, path, []fixtureVisit{{url: "https://main.example/", at: day(5)}})
	require.NoError(t, os.WriteFile(filepath.Join(dir, ArchivedFileName), []byte("not a database"), 0o600))

	visits, err := NewReader(path).Load(context.Background(), domain.HistoryQuery{IncludeArchived: true})

	require.NoError(t, err)
	assert.Len(t, visits, 1)
}

func TestReader_Load_MissingFile(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "History")).Load(context.Background(), domain.HistoryQuery{})

	assert.Error(t, err)
}

func TestReader_Load_LeavesSourceUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "History")
	writeHistory(t, path, []fixtureVisit{{url: "https://a.example/", at: day(1)}})
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = NewReader(path).Load(context.Background(), domain.HistoryQuery{})
	require.NoError(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestNewReader_DefaultPath(t *testing.T) {
	r := NewReader("")

	assert.Equal(t, DefaultHistoryPath(), r.Path())
	assert.Equal(t, "History", filepath.Base(r.Path()))
}
