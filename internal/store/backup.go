package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Backup writes a consistent snapshot of the state database into dir.
// VACUUM INTO is safe under WAL, unlike copying the database file.
func (db *DB) Backup(ctx context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}
	target := filepath.Join(dir, fmt.Sprintf("state_%s.db", time.Now().Format("20060102_150405")))
	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", target); err != nil {
		return "", fmt.Errorf("backup state database: %w", err)
	}
	db.logger.Info().Str("path", target).Msg("State database backed up")
	return target, nil
}

// StartBackups snapshots the state database on a fixed interval and
// prunes snapshots older than the retention window. A lost disk then
// costs at most one interval of sessions instead of logging every chat
// out.
func (db *DB) StartBackups(ctx context.Context, dir string, interval time.Duration, retentionDays int) {
	if dir == "" || interval <= 0 {
		db.logger.Info().Msg("State backups disabled")
		return
	}
	db.logger.Info().
		Str("dir", dir).
		Dur("interval", interval).
		Int("retention_days", retentionDays).
		Msg("State backups started")

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		if _, err := db.Backup(ctx, dir); err != nil {
			db.logger.Error().Err(err).Msg("Initial state backup failed")
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := db.Backup(ctx, dir); err != nil {
					db.logger.Error().Err(err).Msg("Scheduled state backup failed")
					continue
				}
				db.pruneBackups(dir, retentionDays)
			}
		}
	}()
}

func (db *DB) pruneBackups(dir string, retentionDays int) {
	if retentionDays <= 0 {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		db.logger.Error().Err(err).Str("dir", dir).Msg("Read backup directory failed")
		return
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "state_") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			db.logger.Info().Str("file", entry.Name()).Msg("Pruning old state backup")
			_ = os.Remove(filepath.Join(dir, entry.Name()))
		}
	}
}
