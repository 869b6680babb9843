package dto

import (
	"time"

	"github.com/web-source-dev/questionare-server/internal/models"
)

// AnswerPayload mirrors one submitted answer.
type AnswerPayload struct {
	QuestionName   string  `json:"questionName" validate:"required"`
	SelectedAnswer string  `json:"selectedAnswer" validate:"required"`
	Points         float64 `json:"points"`
}

// SubmissionRequest is the body accepted by POST /api/submitUserData. The
// total is client-computed and accepted as-is.
type SubmissionRequest struct {
	UserName    string          `json:"userName" validate:"required"`
	UserSurname string          `json:"userSurname" validate:"required"`
	UserEmail   string          `json:"userEmail" validate:"required,email"`
	Answers     []AnswerPayload `json:"answers" validate:"required,min=1,dive"`
	TotalPoints float64         `json:"totalPoints"`
}

// ToModel converts the request into a persistable submission record.
func (r SubmissionRequest) ToModel() models.Submission {
	answers := make([]models.Answer, 0, len(r.Answers))
	for _, a := range r.Answers {
		answers = append(answers, models.Answer{
			QuestionName:   a.QuestionName,
			SelectedAnswer: a.SelectedAnswer,
			Points:         a.Points,
		})
	}

	return models.Submission{
		UserName:    r.UserName,
		UserSurname: r.UserSurname,
		UserEmail:   r.UserEmail,
		Answers:     answers,
		TotalPoints: r.TotalPoints,
	}
}

// SubmissionResponse is the API view of a stored submission.
type SubmissionResponse struct {
	ID          uint            `json:"id"`
	UserName    string          `json:"userName"`
	UserSurname string          `json:"userSurname"`
	UserEmail   string          `json:"userEmail"`
	Answers     []AnswerPayload `json:"answers"`
	TotalPoints float64         `json:"totalPoints"`
	DocumentURL string          `json:"documentUrl"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewSubmissionResponse maps a submission record to its API representation.
func NewSubmissionResponse(s models.Submission) SubmissionResponse {
	answers := make([]AnswerPayload, 0, len(s.Answers))
	for _, a := range s.Answers {
		answers = append(answers, AnswerPayload{
			QuestionName:   a.QuestionName,
			SelectedAnswer: a.SelectedAnswer,
			Points:         a.Points,
		})
	}

	return SubmissionResponse{
		ID:          s.ID,
		UserName:    s.UserName,
		UserSurname: s.UserSurname,
		UserEmail:   s.UserEmail,
		Answers:     answers,
		TotalPoints: s.TotalPoints,
		DocumentURL: s.DocumentURL,
		CreatedAt:   s.CreatedAt,
	}
}

// NewSubmissionResponseSlice maps a slice of submission records.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, s := range submissions {
		responses = append(responses, NewSubmissionResponse(s))
	}
	return responses
}
