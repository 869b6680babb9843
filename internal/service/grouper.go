package service

import (
	"errors"
	"fmt"

	"github.com/web-source-dev/questionare-server/internal/catalog"
	"github.com/web-source-dev/questionare-server/internal/models"
)

// ErrUnknownQuestion indicates an answer references a question missing from
// the catalog. It aborts the whole pipeline before any side effect beyond the
// pending record.
var ErrUnknownQuestion = errors.New("answer references unknown question")

// GroupAnswers partitions the answers by the chapter of their resolved
// catalog question. Answers are visited in submission order, so chapters are
// keyed in first-occurrence order and each chapter preserves the relative
// order of its answers.
func GroupAnswers(cat *catalog.Catalog, answers []models.Answer) (models.GroupedAnswers, error) {
	var grouped models.GroupedAnswers
	for _, answer := range answers {
		question, ok := cat.FindByText(answer.QuestionName)
		if !ok {
			return models.GroupedAnswers{}, fmt.Errorf("%w: %q", ErrUnknownQuestion, answer.QuestionName)
		}
		grouped.Append(question.ChapterName, answer)
	}

	return grouped, nil
}
