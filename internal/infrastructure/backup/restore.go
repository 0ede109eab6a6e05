package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sourcehub/internal/core/domain"
	"sourcehub/internal/core/ports"
	"sourcehub/pkg/backup"

	"go.uber.org/zap"
)

// RestoreService handles restore operations
type RestoreService struct {
	backupService *backup.BackupService
	sourceRepo    ports.SourceRepository
	videoRepo     ports.VideoRepository
	logger        *zap.SugaredLogger
}

// NewRestoreService creates a new restore service
func NewRestoreService(
	backupService *backup.BackupService,
	sourceRepo ports.SourceRepository,
	videoRepo ports.VideoRepository,
	logger *zap.SugaredLogger,
) *RestoreService {
	return &RestoreService{
		backupService: backupService,
		sourceRepo:    sourceRepo,
		videoRepo:     videoRepo,
		logger:        logger,
	}
}

// RestoreOptions contains restore options
type RestoreOptions struct {
	RestoreSources bool
	RestoreVideos  bool
	PointInTime    *time.Time // For point-in-time recovery
}

// DefaultRestoreOptions returns default restore options
func DefaultRestoreOptions() RestoreOptions {
	return RestoreOptions{
		RestoreSources: true,
		RestoreVideos:  true,
	}
}

// RestoreFromBackup restores data from a specific backup
func (rs *RestoreService) RestoreFromBackup(ctx context.Context, backupName string, options RestoreOptions) error {
	rs.logger.Infow("starting restore", "backup_name", backupName, "options", options)

	backupData, err := rs.backupService.RestoreBackup(ctx, backupName)
	if err != nil {
		return fmt.Errorf("failed to load backup: %w", err)
	}

	if backupData.Version == "" {
		return fmt.Errorf("invalid backup: missing version")
	}

	if err := rs.restoreSources(ctx, backupData.Sources, options); err != nil {
		return fmt.Errorf("failed to restore sources: %w", err)
	}

	if err := rs.restoreVideos(ctx, backupData.Videos, options); err != nil {
		return fmt.Errorf("failed to restore videos: %w", err)
	}

	rs.logger.Infow("restore completed successfully", "backup_name", backupName)
	return nil
}

// restoreSources restores content sources from backup. Sources already in the
// store are left untouched; the unique constraint decides, same as live
// registration.
func (rs *RestoreService) restoreSources(ctx context.Context, sources map[string]interface{}, options RestoreOptions) error {
	if !options.RestoreSources {
		return nil
	}

	for sourceIDStr, sourceData := range sources {
		sourceJSON, err := json.Marshal(sourceData)
		if err != nil {
			return fmt.Errorf("failed to marshal source: %w", err)
		}

		var source domain.ContentSource
		if err := json.Unmarshal(sourceJSON, &source); err != nil {
			return fmt.Errorf("failed to unmarshal source: %w", err)
		}

		err = rs.sourceRepo.Create(ctx, &source)
		if errors.Is(err, domain.ErrDuplicateSource) {
			rs.logger.Debugw("skipping existing source", "source_id", sourceIDStr)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to create source: %w", err)
		}

		rs.logger.Debugw("restored source", "source_id", sourceIDStr)
	}

	return nil
}

// restoreVideos restores videos from backup via upsert, so re-running a
// restore is harmless.
func (rs *RestoreService) restoreVideos(ctx context.Context, videos map[string]interface{}, options RestoreOptions) error {
	if !options.RestoreVideos {
		return nil
	}

	for videoIDStr, videoData := range videos {
		videoJSON, err := json.Marshal(videoData)
		if err != nil {
			return fmt.Errorf("failed to marshal video: %w", err)
		}

		var video domain.Video
		if err := json.Unmarshal(videoJSON, &video); err != nil {
			return fmt.Errorf("failed to unmarshal video: %w", err)
		}

		if _, err := rs.videoRepo.Upsert(ctx, &video); err != nil {
			if errors.Is(err, domain.ErrSourceNotFound) {
				rs.logger.Warnw("skipping video for missing source", "video_id", videoIDStr)
				continue
			}
			return fmt.Errorf("failed to upsert video: %w", err)
		}

		rs.logger.Debugw("restored video", "video_id", videoIDStr)
	}

	return nil
}

// FindBackupByTime finds the closest backup to a given time (for point-in-time recovery)
func (rs *RestoreService) FindBackupByTime(ctx context.Context, targetTime time.Time) (string, error) {
	backups, err := rs.backupService.ListBackups(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list backups: %w", err)
	}

	var closestBackup string
	var closestTime time.Time
	var found bool

	for _, backupName := range backups {
		if len(backupName) < 20 {
			continue
		}

		timestampStr := backupName[7:22]
		timestamp, err := time.Parse("20060102-150405", timestampStr)
		if err != nil {
			continue
		}

		// Find backup closest to target time (but not after)
		if timestamp.Before(targetTime) || timestamp.Equal(targetTime) {
			if !found || timestamp.After(closestTime) {
				closestBackup = backupName
				closestTime = timestamp
				found = true
			}
		}
	}

	if !found {
		return "", fmt.Errorf("no backup found before or at target time: %v", targetTime)
	}

	return closestBackup, nil
}
