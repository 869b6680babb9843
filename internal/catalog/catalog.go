// Package catalog holds the static question dataset. It is loaded once at
// process start and read-only afterwards, so lookups are safe for concurrent
// use without synchronization.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Question describes one catalog entry. QuestionText identifies the question;
// ChapterName drives grouping; FollowUp only affects rendering.
type Question struct {
	QuestionText string `json:"questionText"`
	ChapterName  string `json:"chapterName"`
	FollowUp     bool   `json:"followUp"`
}

// Catalog is an immutable lookup of questions by their exact text.
type Catalog struct {
	questions []Question
	byText    map[string]Question
}

const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["questionText", "chapterName", "followUp"],
    "properties": {
      "questionText": {"type": "string", "minLength": 1},
      "chapterName": {"type": "string", "minLength": 1},
      "followUp": {"type": "boolean"}
    }
  }
}`

// Load reads and validates the question dataset from the given JSON file.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question catalog: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("questions.json", strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to register catalog schema: %w", err)
	}
	schema, err := compiler.Compile("questions.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile catalog schema: %w", err)
	}

	var document interface{}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&document); err != nil {
		return nil, fmt.Errorf("question catalog is not valid JSON: %w", err)
	}
	if err := schema.Validate(document); err != nil {
		return nil, fmt.Errorf("question catalog failed validation: %w", err)
	}

	var questions []Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("failed to decode question catalog: %w", err)
	}

	return New(questions), nil
}

// New builds a catalog from an in-memory question list. Duplicate question
// texts keep the first occurrence.
func New(questions []Question) *Catalog {
	byText := make(map[string]Question, len(questions))
	for _, q := range questions {
		if _, exists := byText[q.QuestionText]; !exists {
			byText[q.QuestionText] = q
		}
	}

	return &Catalog{questions: questions, byText: byText}
}

// FindByText resolves a question by its exact, case-sensitive text.
func (c *Catalog) FindByText(text string) (Question, bool) {
	q, ok := c.byText[text]
	return q, ok
}

// Len returns the number of catalog entries, duplicates included.
func (c *Catalog) Len() int {
	return len(c.questions)
}
