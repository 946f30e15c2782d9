// Package stats stores the reading statistics database KOReader uploads
// over WebDAV and derives a JSON summary from it.
//
// The uploaded file is KOReader's own statistics.sqlite3. It is kept as an
// opaque blob so the device can download it back unchanged; the summary is
// read out of it with a throwaway read-only connection at upload time.
package stats

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/dengxuezhao/kompanion/internal/storage"
)

// ErrNoStats reports a device that has not uploaded statistics yet.
var ErrNoStats = errors.New("no statistics for device")

const recentBooksLimit = 10

// BookStats is one row of the per-book reading summary.
type BookStats struct {
	Title    string `json:"title"`
	Authors  string `json:"authors"`
	Pages    int64  `json:"pages"`
	Duration int64  `json:"duration"`
	LastOpen int64  `json:"last_open"`
}

// Summary is the derived view of one device's statistics database. Books
// holds the most recently opened titles, newest first.
type Summary struct {
	TotalBooks  int64       `json:"total_books"`
	TotalPages  int64       `json:"total_pages"`
	TotalTime   int64       `json:"total_time"`
	LastUpdated time.Time   `json:"last_updated"`
	Books       []BookStats `json:"books"`
}

// Service persists uploaded statistics blobs and their summaries.
type Service struct {
	storage storage.Storage
	logger  *zap.Logger

	now func() time.Time
}

func NewService(st storage.Storage, logger *zap.Logger) *Service {
	return &Service{storage: st, logger: logger, now: time.Now}
}

// Write stores the uploaded statistics database for a device and refreshes
// its summary. Summary extraction is best-effort: a blob the summarizer
// cannot read is still stored and served back.
func (s *Service) Write(ctx context.Context, device string, body io.Reader) error {
	tmp, err := os.CreateTemp("", "kompanion-stats-*.sqlite3")
	if err != nil {
		return fmt.Errorf("stage statistics upload: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("stage statistics upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("stage statistics upload: %w", err)
	}

	if err := s.storage.Write(ctx, tmp.Name(), databaseKey(device)); err != nil {
		return fmt.Errorf("store statistics: %w", err)
	}

	summary, err := s.extractSummary(tmp.Name())
	if err != nil {
		s.logger.Warn("statistics summary not extracted",
			zap.String("device", device),
			zap.Error(err))
		return nil
	}
	if err := s.storeSummary(ctx, device, summary); err != nil {
		s.logger.Warn("statistics summary not stored",
			zap.String("device", device),
			zap.Error(err))
	}
	return nil
}

// Read resolves a readable local path for the device's stored statistics
// database, or ErrNoStats when it never uploaded one.
func (s *Service) Read(ctx context.Context, device string) (string, error) {
	path, err := s.storage.Read(ctx, databaseKey(device))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNoStats
		}
		return "", fmt.Errorf("read statistics: %w", err)
	}
	return path, nil
}

// Summary returns the stored summary for a device.
func (s *Service) Summary(ctx context.Context, device string) (*Summary, error) {
	path, err := s.storage.Read(ctx, summaryKey(device))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoStats
		}
		return nil, fmt.Errorf("read summary: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read summary: %w", err)
	}
	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &summary, nil
}

func (s *Service) storeSummary(ctx context.Context, device string, summary *Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "kompanion-summary-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return s.storage.Write(ctx, tmp.Name(), summaryKey(device))
}

// extractSummary reads KOReader's book table. The schema is theirs, not
// ours: one row per book with page count, accumulated reading duration in
// seconds and the unix time it was last opened.
func (s *Service) extractSummary(path string) (*Summary, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open statistics db: %w", err)
	}
	defer db.Close()

	summary := &Summary{LastUpdated: s.now().UTC()}

	var pages, duration sql.NullInt64
	row := db.QueryRow("SELECT COUNT(*), SUM(pages), SUM(duration) FROM book")
	if err := row.Scan(&summary.TotalBooks, &pages, &duration); err != nil {
		return nil, fmt.Errorf("totals query: %w", err)
	}
	summary.TotalPages = pages.Int64
	summary.TotalTime = duration.Int64

	rows, err := db.Query(
		"SELECT title, authors, pages, duration, last_open FROM book ORDER BY last_open DESC LIMIT ?",
		recentBooksLimit)
	if err != nil {
		return nil, fmt.Errorf("recent books query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b BookStats
		if err := rows.Scan(&b.Title, &b.Authors, &b.Pages, &b.Duration, &b.LastOpen); err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		summary.Books = append(summary.Books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent books query: %w", err)
	}
	return summary, nil
}

func databaseKey(device string) string {
	return "stats/" + device + "/statistics.sqlite3"
}

func summaryKey(device string) string {
	return "stats/" + device + "/summary.json"
}
