package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSweepSchedule runs the sweep every ten minutes
const DefaultSweepSchedule = "*/10 * * * *"

// DefaultSweepMaxAge is how old an abandoned file must be before it is removed
const DefaultSweepMaxAge = time.Hour

// Sweeper removes files left behind by uploads that never finished:
// upload-* files in the temp directory and .part files under the storage folders.
// A client that disconnects mid-request can leave either behind.
type Sweeper struct {
	storage *Storage
	tempDir string
	maxAge  time.Duration
	logger  *zap.Logger
	now     func() time.Time
	cron    *cron.Cron
}

// NewSweeper creates a sweeper. An empty tempDir means os.TempDir().
func NewSweeper(storage *Storage, tempDir string, maxAge time.Duration, logger *zap.Logger) *Sweeper {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if maxAge <= 0 {
		maxAge = DefaultSweepMaxAge
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		storage: storage,
		tempDir: tempDir,
		maxAge:  maxAge,
		logger:  logger,
		now:     time.Now,
		cron:    cron.New(),
	}
}

// Start schedules the sweep with a standard five-field cron expression
func (s *Sweeper) Start(schedule string) error {
	sched, err := cron.ParseStandard(schedule)
	if err != nil {
		return fmt.Errorf("invalid sweep schedule: %w", err)
	}

	s.cron.Schedule(sched, cron.FuncJob(func() {
		removed, err := s.Sweep()
		if err != nil {
			s.logger.Warn("upload sweep finished with errors", zap.Int("removed", removed), zap.Error(err))
			return
		}
		if removed > 0 {
			s.logger.Info("removed abandoned upload files", zap.Int("removed", removed))
		}
	}))
	s.cron.Start()

	s.logger.Info("upload sweeper started", zap.String("schedule", schedule), zap.Duration("max_age", s.maxAge))
	return nil
}

// Stop stops the schedule. The returned context is done once a running sweep returns.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

// Sweep removes abandoned files older than the max age and reports how many were removed
func (s *Sweeper) Sweep() (int, error) {
	cutoff := s.now().Add(-s.maxAge)

	removed, err := s.sweepDir(s.tempDir, "upload-*", cutoff)
	errs := []error{err}

	if s.storage != nil {
		entries, err := os.ReadDir(s.storage.Root())
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to read uploads root: %w", err))
		}
		for _, e := range entries {
			if !e.IsDir() || !ValidFolder(e.Name()) {
				continue
			}
			n, err := s.sweepDir(filepath.Join(s.storage.Root(), e.Name()), ".*.part", cutoff)
			removed += n
			errs = append(errs, err)
		}
	}

	return removed, errors.Join(errs...)
}

func (s *Sweeper) sweepDir(dir, pattern string, cutoff time.Time) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return 0, err
	}

	removed := 0
	var errs []error
	for _, path := range matches {
		info, err := os.Lstat(path)
		if err != nil || !info.Mode().IsRegular() || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", path, err))
			continue
		}
		removed++
		s.logger.Debug("removed abandoned upload file", zap.String("path", path))
	}
	return removed, errors.Join(errs...)
}
