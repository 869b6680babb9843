// Package render turns a submission and its grouped answers into the results
// document. Rendering is pure: no I/O, no network, and with a pinned clock the
// produced PDF is byte-identical for identical input.
package render

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/web-source-dev/questionare-server/internal/catalog"
	"github.com/web-source-dev/questionare-server/internal/models"
)

// FollowUpMarker prefixes every answer whose question is flagged as a
// follow-up. The marker doubles as the observable signal in tests.
const FollowUpMarker = "Follow-up:"

const closingLine = "Thank you for participating in the quiz!"

// Renderer produces quiz result documents. The catalog is injected at
// construction and only consulted for the follow-up flag.
type Renderer struct {
	catalog *catalog.Catalog
	clock   func() time.Time
}

// New constructs a renderer backed by the given question catalog.
func New(cat *catalog.Catalog) *Renderer {
	return &Renderer{catalog: cat, clock: time.Now}
}

// WithClock pins the clock used for the document's metadata dates. Intended
// for deterministic output in tests.
func (r *Renderer) WithClock(clock func() time.Time) *Renderer {
	r.clock = clock
	return r
}

type lineKind int

const (
	lineTitle lineKind = iota
	lineField
	lineChapter
	lineAnswer
	lineClosing
)

type line struct {
	kind     lineKind
	text     string
	followUp bool
}

// Render lays the submission out as a paginated PDF and returns its bytes.
func (r *Renderer) Render(submission models.Submission, grouped models.GroupedAnswers) ([]byte, error) {
	lines := r.buildDocument(submission, grouped)

	pdf := fpdf.New("P", "mm", "A4", "")
	now := r.clock()
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetTitle("Quiz Results", false)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	for _, l := range lines {
		switch l.kind {
		case lineTitle:
			pdf.SetFont("Helvetica", "B", 20)
			pdf.SetTextColor(76, 175, 80)
			pdf.CellFormat(0, 12, l.text, "", 1, "L", false, 0, "")
			pdf.Ln(2)
		case lineField:
			pdf.SetFont("Helvetica", "", 12)
			pdf.SetTextColor(51, 51, 51)
			pdf.CellFormat(0, 7, l.text, "", 1, "L", false, 0, "")
		case lineChapter:
			pdf.Ln(4)
			pdf.SetFont("Helvetica", "B", 15)
			pdf.SetTextColor(51, 51, 51)
			pdf.CellFormat(0, 9, l.text, "", 1, "L", false, 0, "")
		case lineAnswer:
			pdf.SetFont("Helvetica", "", 11)
			if l.followUp {
				pdf.SetTextColor(204, 0, 0)
			} else {
				pdf.SetTextColor(51, 51, 51)
			}
			pdf.MultiCell(0, 6, l.text, "", "L", false)
		case lineClosing:
			pdf.Ln(8)
			pdf.SetFont("Helvetica", "I", 11)
			pdf.SetTextColor(119, 119, 119)
			pdf.CellFormat(0, 7, l.text, "", 1, "C", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write results document: %w", err)
	}

	return buf.Bytes(), nil
}

// buildDocument produces the ordered line model the PDF is painted from.
// Header fields keep their fixed order, chapters follow the grouped key
// order, answers stay in submission order within their chapter.
func (r *Renderer) buildDocument(submission models.Submission, grouped models.GroupedAnswers) []line {
	lines := []line{
		{kind: lineTitle, text: "Quiz Results"},
		{kind: lineField, text: "Name: " + submission.UserName},
		{kind: lineField, text: "Sur Name: " + submission.UserSurname},
		{kind: lineField, text: "Email: " + submission.UserEmail},
		{kind: lineField, text: "Total Points: " + formatPoints(submission.TotalPoints)},
	}

	for _, chapter := range grouped.Chapters() {
		lines = append(lines, line{kind: lineChapter, text: chapter})
		for _, answer := range grouped.Answers(chapter) {
			text := fmt.Sprintf("%s: %s (%s points)", answer.QuestionName, answer.SelectedAnswer, formatPoints(answer.Points))
			followUp := false
			if question, ok := r.catalog.FindByText(answer.QuestionName); ok && question.FollowUp {
				followUp = true
				text = FollowUpMarker + " " + text
			}
			lines = append(lines, line{kind: lineAnswer, text: text, followUp: followUp})
		}
	}

	return append(lines, line{kind: lineClosing, text: closingLine})
}

func formatPoints(points float64) string {
	return strconv.FormatFloat(points, 'f', -1, 64)
}
