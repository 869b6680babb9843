package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/web-source-dev/questionare-server/internal/catalog"
	"github.com/web-source-dev/questionare-server/internal/dto"
	"github.com/web-source-dev/questionare-server/internal/models"
	"github.com/web-source-dev/questionare-server/internal/observability"
	"github.com/web-source-dev/questionare-server/internal/repository"
)

const submissionsCacheKey = "submissions:all"

// FileUploader abstracts the document blob store.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// DocumentRenderer produces the results document for a grouped submission.
type DocumentRenderer interface {
	Render(submission models.Submission, grouped models.GroupedAnswers) ([]byte, error)
}

// Notifier delivers the results document to the submitter. Failures are the
// caller's to tolerate; the pipeline treats them as non-fatal.
type Notifier interface {
	Send(ctx context.Context, to, displayName, documentName, documentURL string, document []byte) error
}

// SubmissionService runs the submission pipeline and serves stored records.
type SubmissionService interface {
	Submit(ctx context.Context, payload dto.SubmissionRequest) (dto.SubmissionResponse, error)
	ListAll(ctx context.Context) ([]dto.SubmissionResponse, error)
}

// SubmissionServiceDeps groups the pipeline collaborators.
type SubmissionServiceDeps struct {
	Repo          repository.SubmissionRepository
	Catalog       *catalog.Catalog
	Renderer      DocumentRenderer
	Uploader      FileUploader
	Notifier      Notifier
	Cache         *redis.Client
	CacheTTL      time.Duration
	Events        *nats.Conn
	EventSubject  string
	Validator     *validator.Validate
	Logger        zerolog.Logger
	UploadTimeout time.Duration
	NotifyTimeout time.Duration
}

type submissionService struct {
	repo          repository.SubmissionRepository
	catalog       *catalog.Catalog
	renderer      DocumentRenderer
	uploader      FileUploader
	notifier      Notifier
	cache         *redis.Client
	cacheTTL      time.Duration
	events        *nats.Conn
	eventSubject  string
	validator     *validator.Validate
	logger        zerolog.Logger
	tracer        trace.Tracer
	uploadTimeout time.Duration
	notifyTimeout time.Duration
}

// NewSubmissionService constructs the pipeline service.
func NewSubmissionService(deps SubmissionServiceDeps) SubmissionService {
	uploadTimeout := deps.UploadTimeout
	if uploadTimeout <= 0 {
		uploadTimeout = 30 * time.Second
	}
	notifyTimeout := deps.NotifyTimeout
	if notifyTimeout <= 0 {
		notifyTimeout = 15 * time.Second
	}

	return &submissionService{
		repo:          deps.Repo,
		catalog:       deps.Catalog,
		renderer:      deps.Renderer,
		uploader:      deps.Uploader,
		notifier:      deps.Notifier,
		cache:         deps.Cache,
		cacheTTL:      deps.CacheTTL,
		events:        deps.Events,
		eventSubject:  deps.EventSubject,
		validator:     deps.Validator,
		logger:        deps.Logger.With().Str("component", "submission_service").Logger(),
		tracer:        otel.Tracer("github.com/web-source-dev/questionare-server/internal/service/submission"),
		uploadTimeout: uploadTimeout,
		notifyTimeout: notifyTimeout,
	}
}

// Submit runs one pipeline instance: persist a pending record, group the
// answers, render and upload the results document, patch the record with the
// document URL, then notify the submitter. Notification failure does not fail
// the request; the record and its document are durable by then.
func (s *submissionService) Submit(ctx context.Context, payload dto.SubmissionRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.pipeline")
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return s.abort(span, "rejected", "validation failed", err)
	}

	submission := payload.ToModel()
	s.checkTotals(submission)

	if err := s.repo.Create(ctx, &submission); err != nil {
		return s.abort(span, "failed", "persist failed", fmt.Errorf("failed to persist submission: %w", err))
	}

	span.SetAttributes(
		attribute.Int("submission.id", int(submission.ID)),
		attribute.Int("submission.answers", len(submission.Answers)),
	)

	grouped, err := GroupAnswers(s.catalog, submission.Answers)
	if err != nil {
		return s.abort(span, "rejected", "grouping failed", err)
	}
	span.SetAttributes(attribute.Int("submission.chapters", len(grouped.Chapters())))

	document, err := s.renderer.Render(submission, grouped)
	if err != nil {
		return s.abort(span, "failed", "render failed", fmt.Errorf("failed to render results document: %w", err))
	}
	if detected := mimetype.Detect(document); !detected.Is("application/pdf") {
		err := fmt.Errorf("renderer produced unexpected document type %s", detected.String())
		return s.abort(span, "failed", "render failed", err)
	}

	documentName := s.documentName(submission)
	uploadCtx, cancelUpload := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancelUpload()

	documentURL, err := s.uploader.Upload(uploadCtx, documentName, bytes.NewReader(document))
	if err != nil {
		// The pending record stays behind without a document URL.
		return s.abort(span, "failed", "upload failed", fmt.Errorf("failed to upload results document: %w", err))
	}

	if err := s.repo.SetDocumentURL(ctx, submission.ID, documentURL); err != nil {
		return s.abort(span, "failed", "persist failed", fmt.Errorf("failed to store document url: %w", err))
	}

	s.invalidateListCache(ctx)

	stored, err := s.repo.GetByID(ctx, submission.ID)
	if err != nil {
		return s.abort(span, "failed", "persist failed", fmt.Errorf("failed to reload submission: %w", err))
	}

	outcome := "completed"
	notifyCtx, cancelNotify := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancelNotify()

	if err := s.notifier.Send(notifyCtx, stored.UserEmail, stored.UserName, documentName, documentURL, document); err != nil {
		outcome = "partial"
		observability.NotificationFailures().Inc()
		span.AddEvent("notification failed")
		s.logger.Error().Err(err).Uint("submission_id", stored.ID).Msg("failed to send results email")
	}

	s.publishCompleted(ctx, stored)

	observability.Submissions().WithLabelValues(outcome).Inc()
	s.logger.Info().
		Uint("submission_id", stored.ID).
		Str("document", documentName).
		Str("outcome", outcome).
		Msg("submission processed")

	return dto.NewSubmissionResponse(stored), nil
}

// ListAll returns every stored submission, via a Redis read-through cache
// when one is configured.
func (s *submissionService) ListAll(ctx context.Context) ([]dto.SubmissionResponse, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, submissionsCacheKey).Result(); err == nil {
			var responses []dto.SubmissionResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &responses); unmarshalErr == nil {
				s.logger.Debug().Msg("submission list cache hit")
				return responses, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read submission list cache")
		}
	}

	submissions, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	responses := dto.NewSubmissionResponseSlice(submissions)

	if s.cache != nil {
		if payload, err := json.Marshal(responses); err == nil {
			if err := s.cache.Set(ctx, submissionsCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store submission list cache")
			}
		}
	}

	return responses, nil
}

func (s *submissionService) abort(span trace.Span, outcome, status string, err error) (dto.SubmissionResponse, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, status)
	observability.Submissions().WithLabelValues(outcome).Inc()
	return dto.SubmissionResponse{}, err
}

// checkTotals flags a client total that disagrees with the answer points. The
// provided total is kept either way; recomputing would change observable
// behavior.
func (s *submissionService) checkTotals(submission models.Submission) {
	var sum float64
	for _, answer := range submission.Answers {
		sum += answer.Points
	}
	if sum != submission.TotalPoints {
		s.logger.Debug().
			Float64("declared", submission.TotalPoints).
			Float64("computed", sum).
			Msg("client total differs from answer points")
	}
}

func (s *submissionService) documentName(submission models.Submission) string {
	return fmt.Sprintf("%s_%s_%s.pdf", submission.UserName, submission.UserSurname, ulid.Make().String())
}

func (s *submissionService) invalidateListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, submissionsCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate submission list cache")
	}
}

type submissionCompletedEvent struct {
	SubmissionID uint      `json:"submission_id"`
	UserEmail    string    `json:"user_email"`
	DocumentURL  string    `json:"document_url"`
	CompletedAt  time.Time `json:"completed_at"`
}

func (s *submissionService) publishCompleted(_ context.Context, submission models.Submission) {
	if s.events == nil || s.eventSubject == "" {
		return
	}

	payload, err := json.Marshal(submissionCompletedEvent{
		SubmissionID: submission.ID,
		UserEmail:    submission.UserEmail,
		DocumentURL:  submission.DocumentURL,
		CompletedAt:  time.Now().UTC(),
	})
	if err != nil {
		return
	}

	if err := s.events.Publish(s.eventSubject, payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish submission event")
	}
}
