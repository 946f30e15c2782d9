// Package progress reconciles reading positions reported by sync clients.
//
// Reconciliation is last-writer-wins on the client-reported timestamp. The
// stored position is only defended when it is strictly newer than the
// incoming one; on a tie the client wins, which keeps a device that re-sends
// its own last report from being told it is out of date.
package progress

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	progressrepo "github.com/dengxuezhao/kompanion/internal/database/progress"
	"github.com/dengxuezhao/kompanion/internal/entities"
)

// ErrNoProgress reports a document that no device has synced yet.
var ErrNoProgress = errors.New("no progress for document")

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Service applies the reconciliation rule and records every accepted report.
type Service struct {
	repo   *progressrepo.Repository
	logger *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

func NewService(repo *progressrepo.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Sync reconciles one report from the named device. When the stored position
// is strictly newer, it is returned unchanged and nothing is persisted.
// Otherwise the report is appended to the history, with a zero timestamp
// replaced by the server clock, and echoed back.
func (s *Service) Sync(ctx context.Context, deviceName string, report entities.Progress) (*entities.Progress, error) {
	stored, err := s.repo.Latest(ctx, report.Document)
	if err != nil {
		return nil, err
	}
	if stored != nil && stored.Timestamp > report.Timestamp {
		s.logger.Debug("stored progress is newer, client position rejected",
			zap.String("document", report.Document),
			zap.String("device", deviceName),
			zap.Int64("stored_ts", stored.Timestamp),
			zap.Int64("report_ts", report.Timestamp))
		return stored, nil
	}

	if report.Timestamp == 0 {
		report.Timestamp = s.now().Unix()
	}
	report.AuthDeviceName = deviceName

	if err := s.repo.Store(ctx, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Fetch returns the current position for a document.
func (s *Service) Fetch(ctx context.Context, document string) (*entities.Progress, error) {
	stored, err := s.repo.Latest(ctx, document)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrNoProgress
	}
	return stored, nil
}

// History returns up to limit past reports for a document, newest first.
// Non-positive limits default to 20, anything above 100 is capped.
func (s *Service) History(ctx context.Context, document string, limit int) ([]entities.Progress, error) {
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.repo.History(ctx, document, limit)
}
