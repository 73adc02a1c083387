package chrome

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/themescope/internal/core/domain"
	"github.com/custodia-labs/themescope/internal/core/ports/driven"
	"github.com/custodia-labs/themescope/internal/logger"
)

// Ensure Reader implements the interface.
var _ driven.HistoryReader = (*Reader)(nil)

// ArchivedFileName is the archived history database next to History.
const ArchivedFileName = "Archived History"

// webkitOffsetMicros is the distance from 1601-01-01 to the Unix epoch.
// Chrome timestamps are microseconds since 1601 and overflow time.Duration.
const webkitOffsetMicros = 11644473600 * 1_000_000

const visitsQuery = `
SELECT urls.url, urls.title, urls.visit_count, urls.typed_count, visits.visit_time
FROM urls
JOIN visits ON urls.id = visits.url`

// Reader loads visits from a Chrome History database.
type Reader struct {
	path string
}

// NewReader creates a reader for the History file at path.
// An empty path resolves to the default profile location.
func NewReader(path string) *Reader {
	if path == "" {
		path = DefaultHistoryPath()
	}
	return &Reader{path: path}
}

// Path returns the History database path.
func (r *Reader) Path() string {
	return r.path
}

// DefaultHistoryPath returns the Default profile's History file for this OS.
func DefaultHistoryPath() string {
	switch runtime.GOOS {
	case "darwin":
		// xdg.ConfigHome is ~/Library/Application Support on macOS.
		return filepath.Join(xdg.ConfigHome, "Google", "Chrome", "Default", "History")
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "Google", "Chrome", "User Data", "Default", "History")
	default:
		return filepath.Join(xdg.ConfigHome, "google-chrome", "Default", "History")
	}
}

// WebKitToTime converts Chrome's microseconds-since-1601 value to UTC.
func WebKitToTime(micros int64) time.Time {
	return time.UnixMicro(micros - webkitOffsetMicros).UTC()
}

// TimeToWebKit converts t to Chrome's microseconds-since-1601 value.
func TimeToWebKit(t time.Time) int64 {
	return t.UnixMicro() + webkitOffsetMicros
}

// Load reads visits from the main database and, when requested, the
// archived one. Archived read failures are logged and ignored.
func (r *Reader) Load(ctx context.Context, query domain.HistoryQuery) ([]domain.Visit, error) {
	defer logger.Timed("history load")()

	visits, err := readHistoryFile(ctx, r.path)
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", r.path, err)
	}
	logger.Debug("read %d visits from %s", len(visits), r.path)

	if query.IncludeArchived {
		archived := filepath.Join(filepath.Dir(r.path), ArchivedFileName)
		if _, statErr := os.Stat(archived); statErr == nil {
			more, err := readHistoryFile(ctx, archived)
			if err != nil {
				logger.Warn("ignoring archived history: %v", err)
			} else {
				logger.Debug("read %d archived visits", len(more))
				visits = append(visits, more...)
			}
		}
	}

	filtered := visits[:0]
	for _, v := range visits {
		if query.Contains(v.Time) {
			filtered = append(filtered, v)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Time.Before(filtered[j].Time)
	})
	return filtered, nil
}

func readHistoryFile(ctx context.Context, path string) (visits []domain.Visit, err error) {
	tmp, err := copyToTemp(path)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp)

	db, err := sql.Open("sqlite", "file:"+tmp+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, visitsQuery)
	if err != nil {
		return nil, fmt.Errorf("querying visits: %w", err)
	}
	defer func() {
		err = errors.Join(err, rows.Close())
	}()

	for rows.Next() {
		var (
			v      domain.Visit
			title  sql.NullString
			micros int64
		)
		if err := rows.Scan(&v.URL, &title, &v.VisitCount, &v.TypedCount, &micros); err != nil {
			return nil, fmt.Errorf("scanning visit: %w", err)
		}
		v.Title = title.String
		v.Time = WebKitToTime(micros)
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating visits: %w", err)
	}
	return visits, nil
}

func copyToTemp(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "chrome_history_*.db")
	if err != nil {
		return "", fmt.Errorf("creating temp copy: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("copying history: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("closing temp copy: %w", err)
	}
	return dst.Name(), nil
}
