package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/web-source-dev/questionare-server/internal/dto"
	"github.com/web-source-dev/questionare-server/internal/models"
	"github.com/web-source-dev/questionare-server/internal/render"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type memorySubmissionRepo struct {
	submissions map[uint]models.Submission
	nextID      uint
	createErr   error
	setURLErr   error
	setURLCalls int
}

func newMemorySubmissionRepo() *memorySubmissionRepo {
	return &memorySubmissionRepo{submissions: make(map[uint]models.Submission), nextID: 1}
}

func (m *memorySubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	if m.createErr != nil {
		return m.createErr
	}
	submission.ID = m.nextID
	submission.CreatedAt = time.Now()
	submission.UpdatedAt = time.Now()
	m.submissions[m.nextID] = *submission
	m.nextID++
	return nil
}

func (m *memorySubmissionRepo) SetDocumentURL(_ context.Context, id uint, url string) error {
	m.setURLCalls++
	if m.setURLErr != nil {
		return m.setURLErr
	}
	stored, ok := m.submissions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.DocumentURL = url
	m.submissions[id] = stored
	return nil
}

func (m *memorySubmissionRepo) GetByID(_ context.Context, id uint) (models.Submission, error) {
	stored, ok := m.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return stored, nil
}

func (m *memorySubmissionRepo) ListAll(_ context.Context) ([]models.Submission, error) {
	all := make([]models.Submission, 0, len(m.submissions))
	for id := uint(1); id < m.nextID; id++ {
		if stored, ok := m.submissions[id]; ok {
			all = append(all, stored)
		}
	}
	return all, nil
}

type stubUploader struct {
	uploads  int
	lastName string
	err      error
}

func (s *stubUploader) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.uploads++
	s.lastName = name
	return "https://res.example.com/" + name, nil
}

type stubNotifier struct {
	sends        int
	lastTo       string
	lastURL      string
	lastDocument []byte
	err          error
}

func (s *stubNotifier) Send(_ context.Context, to, _, _, documentURL string, document []byte) error {
	s.sends++
	s.lastTo = to
	s.lastURL = documentURL
	s.lastDocument = document
	return s.err
}

type failingRenderer struct {
	payload []byte
	err     error
}

func (f *failingRenderer) Render(models.Submission, models.GroupedAnswers) ([]byte, error) {
	return f.payload, f.err
}

type pipelineFixture struct {
	repo     *memorySubmissionRepo
	uploader *stubUploader
	notifier *stubNotifier
	service  SubmissionService
}

func newPipeline(t *testing.T, customize func(*SubmissionServiceDeps)) *pipelineFixture {
	t.Helper()

	cat := testCatalog()
	fixture := &pipelineFixture{
		repo:     newMemorySubmissionRepo(),
		uploader: &stubUploader{},
		notifier: &stubNotifier{},
	}

	deps := SubmissionServiceDeps{
		Repo:      fixture.repo,
		Catalog:   cat,
		Renderer:  render.New(cat),
		Uploader:  fixture.uploader,
		Notifier:  fixture.notifier,
		Validator: validator.New(validator.WithRequiredStructEnabled()),
		Logger:    testLogger(),
	}
	if customize != nil {
		customize(&deps)
	}

	fixture.service = NewSubmissionService(deps)
	return fixture
}

func validRequest() dto.SubmissionRequest {
	return dto.SubmissionRequest{
		UserName:    "Ada",
		UserSurname: "Lovelace",
		UserEmail:   "ada@x.com",
		Answers: []dto.AnswerPayload{
			{QuestionName: "Q1", SelectedAnswer: "Yes", Points: 5},
		},
		TotalPoints: 5,
	}
}

func TestSubmitHappyPath(t *testing.T) {
	fixture := newPipeline(t, nil)

	response, err := fixture.service.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	require.NotZero(t, response.ID)
	require.NotEmpty(t, response.DocumentURL)
	require.Equal(t, "Ada", response.UserName)
	require.Len(t, response.Answers, 1)

	stored, err := fixture.repo.GetByID(context.Background(), response.ID)
	require.NoError(t, err)
	require.Equal(t, response.DocumentURL, stored.DocumentURL)

	require.Equal(t, 1, fixture.uploader.uploads)
	require.Contains(t, fixture.uploader.lastName, "Ada_Lovelace_")
	require.Contains(t, fixture.uploader.lastName, ".pdf")

	require.Equal(t, 1, fixture.notifier.sends)
	require.Equal(t, "ada@x.com", fixture.notifier.lastTo)
	require.Equal(t, response.DocumentURL, fixture.notifier.lastURL)
	require.NotEmpty(t, fixture.notifier.lastDocument)

	// The document column is written exactly once per run.
	require.Equal(t, 1, fixture.repo.setURLCalls)
}

func TestSubmitUnknownQuestionAbortsBeforeSideEffects(t *testing.T) {
	fixture := newPipeline(t, nil)

	request := validRequest()
	request.Answers = append(request.Answers, dto.AnswerPayload{
		QuestionName: "not in catalog", SelectedAnswer: "x", Points: 1,
	})

	_, err := fixture.service.Submit(context.Background(), request)
	require.ErrorIs(t, err, ErrUnknownQuestion)

	require.Zero(t, fixture.uploader.uploads)
	require.Zero(t, fixture.notifier.sends)
	require.Zero(t, fixture.repo.setURLCalls)

	// The pending record stays behind, but never gains a document URL.
	all, listErr := fixture.repo.ListAll(context.Background())
	require.NoError(t, listErr)
	require.Len(t, all, 1)
	require.Empty(t, all[0].DocumentURL)
}

func TestSubmitValidationFailure(t *testing.T) {
	fixture := newPipeline(t, nil)

	request := validRequest()
	request.UserEmail = "not-an-email"

	_, err := fixture.service.Submit(context.Background(), request)

	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)

	all, listErr := fixture.repo.ListAll(context.Background())
	require.NoError(t, listErr)
	require.Empty(t, all, "nothing is persisted before validation passes")
}

func TestSubmitRenderFailure(t *testing.T) {
	fixture := newPipeline(t, func(deps *SubmissionServiceDeps) {
		deps.Renderer = &failingRenderer{err: errors.New("boom")}
	})

	_, err := fixture.service.Submit(context.Background(), validRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "render")
	require.Zero(t, fixture.uploader.uploads)
	require.Zero(t, fixture.notifier.sends)
}

func TestSubmitRejectsNonPDFDocument(t *testing.T) {
	fixture := newPipeline(t, func(deps *SubmissionServiceDeps) {
		deps.Renderer = &failingRenderer{payload: []byte("<html>not a pdf</html>")}
	})

	_, err := fixture.service.Submit(context.Background(), validRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected document type")
	require.Zero(t, fixture.uploader.uploads)
}

func TestSubmitUploadFailureLeavesPendingRecord(t *testing.T) {
	fixture := newPipeline(t, nil)
	fixture.uploader.err = errors.New("cloud rejected stream")

	_, err := fixture.service.Submit(context.Background(), validRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "upload")

	require.Zero(t, fixture.notifier.sends)
	require.Zero(t, fixture.repo.setURLCalls)

	all, listErr := fixture.repo.ListAll(context.Background())
	require.NoError(t, listErr)
	require.Len(t, all, 1)
	require.Empty(t, all[0].DocumentURL)
}

func TestSubmitPersistenceFailure(t *testing.T) {
	fixture := newPipeline(t, nil)
	fixture.repo.createErr = errors.New("connection reset")

	_, err := fixture.service.Submit(context.Background(), validRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "persist")
	require.Zero(t, fixture.uploader.uploads)
}

func TestSubmitNotificationFailureStillSucceeds(t *testing.T) {
	fixture := newPipeline(t, nil)
	fixture.notifier.err = errors.New("smtp unreachable")

	response, err := fixture.service.Submit(context.Background(), validRequest())
	require.NoError(t, err, "notification failure must not fail the request")
	require.NotEmpty(t, response.DocumentURL)

	stored, getErr := fixture.repo.GetByID(context.Background(), response.ID)
	require.NoError(t, getErr)
	require.Equal(t, response.DocumentURL, stored.DocumentURL)
}

func TestListAllReturnsStoredSubmissions(t *testing.T) {
	fixture := newPipeline(t, nil)

	_, err := fixture.service.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	all, err := fixture.service.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotEmpty(t, all[0].DocumentURL)
}

func TestListAllUsesCacheAndSubmitInvalidates(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	fixture := newPipeline(t, func(deps *SubmissionServiceDeps) {
		deps.Cache = cache
		deps.CacheTTL = time.Minute
	})

	_, err := fixture.service.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	first, err := fixture.service.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.True(t, mr.Exists("submissions:all"), "listing populates the cache")

	// A fresh submission knocks the cached list out.
	request := validRequest()
	request.UserName = "Grace"
	request.UserEmail = "grace@x.com"
	_, err = fixture.service.Submit(context.Background(), request)
	require.NoError(t, err)
	require.False(t, mr.Exists("submissions:all"), "submit invalidates the cached list")

	second, err := fixture.service.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 2)
}

func TestSubmitAcceptsClientTotalVerbatim(t *testing.T) {
	fixture := newPipeline(t, nil)

	request := validRequest()
	request.TotalPoints = 99 // disagrees with the single 5-point answer

	response, err := fixture.service.Submit(context.Background(), request)
	require.NoError(t, err)
	require.Equal(t, float64(99), response.TotalPoints)
}
