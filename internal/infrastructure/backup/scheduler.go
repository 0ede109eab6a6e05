package backup

import (
	"context"
	"fmt"
	"time"

	"sourcehub/internal/core/ports"
	"sourcehub/pkg/backup"
	"sourcehub/pkg/utils"

	"go.uber.org/zap"
)

// Scheduler manages automatic backups of the source catalog
type Scheduler struct {
	backupService *backup.BackupService
	sourceRepo    ports.SourceRepository
	videoRepo     ports.VideoRepository
	interval      time.Duration
	retentionDays int
	logger        *zap.SugaredLogger
	stopChan      chan struct{}
}

// Config contains scheduler configuration
type Config struct {
	Interval      time.Duration
	RetentionDays int
}

// NewScheduler creates a new backup scheduler
func NewScheduler(
	backupService *backup.BackupService,
	sourceRepo ports.SourceRepository,
	videoRepo ports.VideoRepository,
	cfg Config,
	logger *zap.SugaredLogger,
) *Scheduler {
	return &Scheduler{
		backupService: backupService,
		sourceRepo:    sourceRepo,
		videoRepo:     videoRepo,
		interval:      cfg.Interval,
		retentionDays: cfg.RetentionDays,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}
}

// Start starts the backup scheduler
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run initial backup
	s.runBackup(ctx)

	for {
		select {
		case <-ticker.C:
			s.runBackup(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the backup scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

// runBackup performs a backup
func (s *Scheduler) runBackup(ctx context.Context) {
	s.logger.Info("starting scheduled backup")
	start := time.Now()

	backupData, err := s.collectData(ctx)
	if err != nil {
		s.logger.Errorw("failed to collect backup data", "error", err)
		return
	}

	backupName, err := s.backupService.CreateBackup(ctx, backupData)
	if err != nil {
		s.logger.Errorw("failed to create backup", "error", err)
		return
	}

	s.logger.Infow("backup created successfully",
		"backup_name", backupName,
		"duration", utils.FormatDuration(time.Since(start)),
	)

	// Cleanup old backups
	if err := s.cleanupOldBackups(ctx); err != nil {
		s.logger.Warnw("failed to cleanup old backups", "error", err)
	}
}

// collectData collects the source catalog and its videos
func (s *Scheduler) collectData(ctx context.Context) (*backup.BackupData, error) {
	data := &backup.BackupData{
		Sources:  make(map[string]interface{}),
		Videos:   make(map[string]interface{}),
		Metadata: make(map[string]interface{}),
	}

	sources, err := s.sourceRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	for _, source := range sources {
		data.Sources[string(source.ID)] = source

		videos, err := s.videoRepo.ListBySource(ctx, source.ID)
		if err != nil {
			s.logger.Warnw("failed to list videos for source", "source_id", source.ID, "error", err)
			continue
		}
		for _, video := range videos {
			data.Videos[string(video.ID)] = video
		}
	}

	data.Metadata["source_count"] = len(data.Sources)
	data.Metadata["video_count"] = len(data.Videos)
	data.Metadata["backup_type"] = "scheduled"

	return data, nil
}

// cleanupOldBackups removes backups older than retention period
func (s *Scheduler) cleanupOldBackups(ctx context.Context) error {
	backups, err := s.backupService.ListBackups(ctx)
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	cutoffTime := time.Now().AddDate(0, 0, -s.retentionDays)

	for _, backupName := range backups {
		// Parse timestamp from backup name (format: backup-20060102-150405.json)
		if len(backupName) < 20 {
			continue
		}

		timestampStr := backupName[7:22] // "backup-" + "20060102-150405"
		timestamp, err := time.Parse("20060102-150405", timestampStr)
		if err != nil {
			s.logger.Warnw("failed to parse backup timestamp", "backup_name", backupName, "error", err)
			continue
		}

		if timestamp.Before(cutoffTime) {
			if err := s.backupService.DeleteBackup(ctx, backupName); err != nil {
				s.logger.Warnw("failed to delete old backup", "backup_name", backupName, "error", err)
				continue
			}
			s.logger.Infow("deleted old backup", "backup_name", backupName, "age", time.Since(timestamp))
		}
	}

	return nil
}
