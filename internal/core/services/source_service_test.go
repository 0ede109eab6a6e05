package services

import (
	"context"
	"errors"
	"testing"

	"sourcehub/internal/core/domain"
	"sourcehub/internal/core/ports"
	apperrors "sourcehub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// Mock repositories
type MockSourceRepository struct {
	mock.Mock
}

func (m *MockSourceRepository) Create(ctx context.Context, source *domain.ContentSource) error {
	args := m.Called(ctx, source)
	return args.Error(0)
}

func (m *MockSourceRepository) GetByID(ctx context.Context, id domain.SourceID) (*domain.ContentSource, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContentSource), args.Error(1)
}

func (m *MockSourceRepository) FindByChannelID(ctx context.Context, sourceType domain.SourceType, channelID string) (*domain.ContentSource, error) {
	args := m.Called(ctx, sourceType, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContentSource), args.Error(1)
}

func (m *MockSourceRepository) List(ctx context.Context) ([]*domain.ContentSource, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ContentSource), args.Error(1)
}

func (m *MockSourceRepository) MarkFetched(ctx context.Context, id domain.SourceID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockVideoRepository struct {
	mock.Mock
}

func (m *MockVideoRepository) Upsert(ctx context.Context, video *domain.Video) (bool, error) {
	args := m.Called(ctx, video)
	return args.Bool(0), args.Error(1)
}

func (m *MockVideoRepository) ListBySource(ctx context.Context, sourceID domain.SourceID) ([]*domain.Video, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Video), args.Error(1)
}

type MockFetchQueue struct {
	mock.Mock
}

func (m *MockFetchQueue) Enqueue(ctx context.Context, job domain.FetchJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockFetchQueue) Dequeue(ctx context.Context) (*domain.FetchJob, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FetchJob), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, severity ports.Severity, title, description string) {
	m.Called(ctx, severity, title, description)
}

type MockRegistrationMetrics struct {
	mock.Mock
}

func (m *MockRegistrationMetrics) RecordRegistration(outcome string) {
	m.Called(outcome)
}

func (m *MockRegistrationMetrics) RecordFetchJobEnqueued() {
	m.Called()
}

func newTestSourceService(t *testing.T) (*sourceService, *MockSourceRepository, *MockVideoRepository, *MockFetchQueue, *MockNotifier, *MockRegistrationMetrics) {
	t.Helper()

	sources := new(MockSourceRepository)
	videos := new(MockVideoRepository)
	queue := new(MockFetchQueue)
	notifier := new(MockNotifier)
	metrics := new(MockRegistrationMetrics)

	svc := NewSourceService(sources, videos, queue, notifier, metrics, zap.NewNop().Sugar()).(*sourceService)
	return svc, sources, videos, queue, notifier, metrics
}

func TestRegister_NewChannel(t *testing.T) {
	svc, sources, _, queue, notifier, metrics := newTestSourceService(t)

	sources.On("FindByChannelID", mock.Anything, domain.SourceTypeYouTube, "UCabc123").Return(nil, domain.ErrSourceNotFound)
	sources.On("Create", mock.Anything, mock.AnythingOfType("*domain.ContentSource")).Return(nil)
	queue.On("Enqueue", mock.Anything, mock.AnythingOfType("domain.FetchJob")).Return(nil)
	notifier.On("Notify", mock.Anything, ports.SeveritySuccess, mock.Anything, mock.Anything).Return()
	metrics.On("RecordRegistration", "created").Return()
	metrics.On("RecordFetchJobEnqueued").Return()

	result, err := svc.Register(context.Background(), "My Channel", "UCabc123")

	assert.NoError(t, err)
	assert.Equal(t, RegisterCreated, result.Outcome)
	assert.NotNil(t, result.Source)
	assert.Equal(t, "UCabc123", result.Source.ChannelID)
	assert.Equal(t, "https://www.youtube.com/channel/UCabc123", result.Source.SourceURL)
	assert.Equal(t, domain.SourceTypeYouTube, result.Source.Type)
	assert.NotEmpty(t, result.Source.ID)

	sources.AssertExpectations(t)
	queue.AssertExpectations(t)
	metrics.AssertExpectations(t)
}

func TestRegister_HandleSourceURL(t *testing.T) {
	svc, sources, _, queue, notifier, metrics := newTestSourceService(t)

	sources.On("FindByChannelID", mock.Anything, domain.SourceTypeYouTube, "@somecreator").Return(nil, domain.ErrSourceNotFound)
	sources.On("Create", mock.Anything, mock.AnythingOfType("*domain.ContentSource")).Return(nil)
	queue.On("Enqueue", mock.Anything, mock.AnythingOfType("domain.FetchJob")).Return(nil)
	notifier.On("Notify", mock.Anything, ports.SeveritySuccess, mock.Anything, mock.Anything).Return()
	metrics.On("RecordRegistration", "created").Return()
	metrics.On("RecordFetchJobEnqueued").Return()

	result, err := svc.Register(context.Background(), "Some Creator", "@somecreator")

	assert.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/@somecreator", result.Source.SourceURL)
}

func TestRegister_ExistingChannelFoundByPrecheck(t *testing.T) {
	svc, sources, _, queue, notifier, metrics := newTestSourceService(t)

	existing := &domain.ContentSource{
		ID:        "existing-id",
		Type:      domain.SourceTypeYouTube,
		ChannelID: "UCabc123",
	}
	sources.On("FindByChannelID", mock.Anything, domain.SourceTypeYouTube, "UCabc123").Return(existing, nil)
	notifier.On("Notify", mock.Anything, ports.SeverityInfo, mock.Anything, mock.Anything).Return()
	metrics.On("RecordRegistration", "already_exists").Return()

	result, err := svc.Register(context.Background(), "My Channel", "UCabc123")

	assert.NoError(t, err)
	assert.Equal(t, RegisterDuplicate, result.Outcome)
	assert.Equal(t, existing, result.Source)

	// No insert, no fetch job for a duplicate.
	sources.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateOnInsertAfterPrecheckRace(t *testing.T) {
	svc, sources, _, queue, notifier, metrics := newTestSourceService(t)

	// Pre-check sees nothing, insert loses the race to a concurrent writer.
	sources.On("FindByChannelID", mock.Anything, domain.SourceTypeYouTube, "UCabc123").Return(nil, domain.ErrSourceNotFound)
	sources.On("Create", mock.Anything, mock.AnythingOfType("*domain.ContentSource")).Return(domain.ErrDuplicateSource)
	notifier.On("Notify", mock.Anything, ports.SeverityInfo, mock.Anything, mock.Anything).Return()
	metrics.On("RecordRegistration", "already_exists").Return()

	result, err := svc.Register(context.Background(), "My Channel", "UCabc123")

	assert.NoError(t, err)
	assert.Equal(t, RegisterDuplicate, result.Outcome)
	assert.Nil(t, result.Source)

	queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestRegister_PermissionDeniedPropagates(t *testing.T) {
	svc, sources, _, _, _, metrics := newTestSourceService(t)

	sources.On("FindByChannelID", mock.Anything, domain.SourceTypeYouTube, "UCabc123").Return(nil, domain.ErrSourceNotFound)
	sources.On("Create", mock.Anything, mock.AnythingOfType("*domain.ContentSource")).Return(domain.ErrPermissionDenied)
	metrics.On("RecordRegistration", "permission_denied").Return()

	result, err := svc.Register(context.Background(), "My Channel", "UCabc123")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestRegister_InsertFailureNotifies(t *testing.T) {
	svc, sources, _, _, notifier, metrics := newTestSourceService(t)

	sources.On("FindByChannelID", mock.Anything, domain.SourceTypeYouTube, "UCabc123").Return(nil, domain.ErrSourceNotFound)
	sources.On("Create", mock.Anything, mock.AnythingOfType("*domain.ContentSource")).Return(errors.New("disk full"))
	notifier.On("Notify", mock.Anything, ports.SeverityError, mock.Anything, mock.Anything).Return()
	metrics.On("RecordRegistration", "error").Return()

	result, err := svc.Register(context.Background(), "My Channel", "UCabc123")

	assert.Nil(t, result)
	assert.Error(t, err)
	notifier.AssertCalled(t, "Notify", mock.Anything, ports.SeverityError, mock.Anything, mock.Anything)
}

func TestRegister_EnqueueFailureDoesNotFailRegistration(t *testing.T) {
	svc, sources, _, queue, notifier, metrics := newTestSourceService(t)

	sources.On("FindByChannelID", mock.Anything, domain.SourceTypeYouTube, "UCabc123").Return(nil, domain.ErrSourceNotFound)
	sources.On("Create", mock.Anything, mock.AnythingOfType("*domain.ContentSource")).Return(nil)
	queue.On("Enqueue", mock.Anything, mock.AnythingOfType("domain.FetchJob")).Return(errors.New("queue down"))
	notifier.On("Notify", mock.Anything, ports.SeveritySuccess, mock.Anything, mock.Anything).Return()
	metrics.On("RecordRegistration", "created").Return()

	result, err := svc.Register(context.Background(), "My Channel", "UCabc123")

	assert.NoError(t, err)
	assert.Equal(t, RegisterCreated, result.Outcome)
	metrics.AssertNotCalled(t, "RecordFetchJobEnqueued")
}

func TestRegister_InvalidChannelID(t *testing.T) {
	svc, sources, _, _, _, _ := newTestSourceService(t)

	result, err := svc.Register(context.Background(), "My Channel", "not a channel id!!")

	assert.Nil(t, result)
	var appErr *apperrors.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, appErr.Code)

	sources.AssertNotCalled(t, "FindByChannelID", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_InFlightGuard(t *testing.T) {
	svc, _, _, _, _, _ := newTestSourceService(t)

	// Simulate a registration for the same channel still in flight.
	assert.True(t, svc.begin("UCabc123"))

	result, err := svc.Register(context.Background(), "My Channel", "UCabc123")

	assert.Nil(t, result)
	var appErr *apperrors.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeConflict, appErr.Code)

	// After the first attempt finishes, registration proceeds again.
	svc.end("UCabc123")
	assert.True(t, svc.begin("UCabc123"))
}

func TestListVideos_UnknownSource(t *testing.T) {
	svc, sources, videos, _, _, _ := newTestSourceService(t)

	sources.On("GetByID", mock.Anything, domain.SourceID("missing")).Return(nil, domain.ErrSourceNotFound)

	result, err := svc.ListVideos(context.Background(), "missing")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrSourceNotFound)
	videos.AssertNotCalled(t, "ListBySource", mock.Anything, mock.Anything)
}
