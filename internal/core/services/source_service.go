package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"sourcehub/internal/core/domain"
	"sourcehub/internal/core/ports"
	apperrors "sourcehub/pkg/errors"
	"sourcehub/pkg/utils"
	"sourcehub/pkg/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RegisterOutcome string

const (
	RegisterCreated   RegisterOutcome = "created"
	RegisterDuplicate RegisterOutcome = "already_exists"
)

// RegisterResult reports the distinct outcome of a registration attempt.
// Source is the existing record for RegisterDuplicate when the pre-check
// found it, nil when the duplicate only surfaced on insert.
type RegisterResult struct {
	Outcome RegisterOutcome
	Source  *domain.ContentSource
}

// RegistrationMetrics records registration outcomes. Implemented by
// monitoring.PrometheusCollector.
type RegistrationMetrics interface {
	RecordRegistration(outcome string)
	RecordFetchJobEnqueued()
}

type SourceService interface {
	Register(ctx context.Context, name, channelID string) (*RegisterResult, error)
	GetSource(ctx context.Context, id domain.SourceID) (*domain.ContentSource, error)
	ListSources(ctx context.Context) ([]*domain.ContentSource, error)
	ListVideos(ctx context.Context, id domain.SourceID) ([]*domain.Video, error)
}

type sourceService struct {
	sources  ports.SourceRepository
	videos   ports.VideoRepository
	queue    ports.FetchQueue
	notifier ports.Notifier
	metrics  RegistrationMetrics
	log      *zap.SugaredLogger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewSourceService(
	sources ports.SourceRepository,
	videos ports.VideoRepository,
	queue ports.FetchQueue,
	notifier ports.Notifier,
	metrics RegistrationMetrics,
	log *zap.SugaredLogger,
) SourceService {
	return &sourceService{
		sources:  sources,
		videos:   videos,
		queue:    queue,
		notifier: notifier,
		metrics:  metrics,
		log:      log,
		inFlight: make(map[string]struct{}),
	}
}

// Register creates a content source for the channel if and only if one does
// not already exist. The existence pre-check is advisory; the store's unique
// constraint is the authoritative duplicate guard, so a pre-check race
// resolves to RegisterDuplicate on insert rather than a generic failure.
func (s *sourceService) Register(ctx context.Context, name, channelID string) (*RegisterResult, error) {
	name = utils.SanitizeString(name)
	channelID = strings.TrimSpace(channelID)

	if err := validation.ValidateSourceName(name); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	if err := validation.ValidateChannelID(channelID); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}

	// Advisory guard against duplicate submission while a registration for
	// the same channel is in flight. Not a lock: the unique constraint still
	// decides.
	if !s.begin(channelID) {
		return nil, apperrors.NewConflictError("registration already in progress")
	}
	defer s.end(channelID)

	existing, err := s.sources.FindByChannelID(ctx, domain.SourceTypeYouTube, channelID)
	if err != nil && !errors.Is(err, domain.ErrSourceNotFound) {
		s.notifier.Notify(ctx, ports.SeverityError, "Registration failed", "Could not check for an existing source.")
		return nil, fmt.Errorf("failed to query existing source: %w", err)
	}
	if existing != nil {
		s.notifier.Notify(ctx, ports.SeverityInfo, "Already registered", fmt.Sprintf("Channel %s is already a content source.", channelID))
		s.metrics.RecordRegistration(string(RegisterDuplicate))
		return &RegisterResult{Outcome: RegisterDuplicate, Source: existing}, nil
	}

	source := &domain.ContentSource{
		ID:        domain.SourceID(uuid.New().String()),
		Type:      domain.SourceTypeYouTube,
		Name:      name,
		ChannelID: channelID,
		SourceURL: domain.ChannelURL(channelID),
		CreatedAt: time.Now(),
	}

	err = s.sources.Create(ctx, source)
	switch {
	case errors.Is(err, domain.ErrDuplicateSource):
		// Lost the race between pre-check and insert.
		s.notifier.Notify(ctx, ports.SeverityInfo, "Already registered", fmt.Sprintf("Channel %s is already a content source.", channelID))
		s.metrics.RecordRegistration(string(RegisterDuplicate))
		return &RegisterResult{Outcome: RegisterDuplicate}, nil
	case errors.Is(err, domain.ErrPermissionDenied):
		s.metrics.RecordRegistration("permission_denied")
		return nil, err
	case err != nil:
		s.notifier.Notify(ctx, ports.SeverityError, "Registration failed", "Could not save the content source.")
		s.metrics.RecordRegistration("error")
		return nil, fmt.Errorf("failed to insert source: %w", err)
	}

	s.notifier.Notify(ctx, ports.SeveritySuccess, "Source registered", fmt.Sprintf("Channel %s was registered.", channelID))
	s.metrics.RecordRegistration(string(RegisterCreated))

	// Fire-and-forget: a failed enqueue never fails the registration.
	job := domain.FetchJob{
		SourceID:   source.ID,
		ChannelID:  channelID,
		EnqueuedAt: time.Now(),
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.log.Warnw("failed to enqueue fetch job",
			"source_id", source.ID,
			"channel_id", channelID,
			"error", err,
		)
	} else {
		s.metrics.RecordFetchJobEnqueued()
	}

	return &RegisterResult{Outcome: RegisterCreated, Source: source}, nil
}

func (s *sourceService) GetSource(ctx context.Context, id domain.SourceID) (*domain.ContentSource, error) {
	return s.sources.GetByID(ctx, id)
}

func (s *sourceService) ListSources(ctx context.Context) ([]*domain.ContentSource, error) {
	return s.sources.List(ctx)
}

func (s *sourceService) ListVideos(ctx context.Context, id domain.SourceID) ([]*domain.Video, error) {
	if _, err := s.sources.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.videos.ListBySource(ctx, id)
}

func (s *sourceService) begin(channelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.inFlight[channelID]; exists {
		return false
	}
	s.inFlight[channelID] = struct{}{}
	return true
}

func (s *sourceService) end(channelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, channelID)
}
