package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/web-source-dev/questionare-server/internal/models"
)

// SubmissionRepository defines data operations for quiz submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	SetDocumentURL(ctx context.Context, id uint, url string) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	ListAll(ctx context.Context) ([]models.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

// SetDocumentURL patches the single document column. Repeating the call with
// the same URL is a no-op at the record level.
func (r *submissionRepository) SetDocumentURL(ctx context.Context, id uint, url string) error {
	return r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Update("document_url", url).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListAll(ctx context.Context) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Order("created_at ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}
