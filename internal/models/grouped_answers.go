package models

// GroupedAnswers partitions a submission's answers by chapter while keeping
// two orders intact: chapters appear in first-occurrence order, and each
// chapter keeps its answers in submission order. It is derived per request
// and never persisted.
type GroupedAnswers struct {
	chapters []string
	byName   map[string][]Answer
}

// Append adds an answer to the given chapter, registering the chapter on
// first use.
func (g *GroupedAnswers) Append(chapter string, answer Answer) {
	if g.byName == nil {
		g.byName = make(map[string][]Answer)
	}
	if _, seen := g.byName[chapter]; !seen {
		g.chapters = append(g.chapters, chapter)
	}
	g.byName[chapter] = append(g.byName[chapter], answer)
}

// Chapters returns the chapter names in first-occurrence order.
func (g GroupedAnswers) Chapters() []string {
	return g.chapters
}

// Answers returns the answers recorded for a chapter, in submission order.
func (g GroupedAnswers) Answers(chapter string) []Answer {
	return g.byName[chapter]
}

// Len returns the total number of grouped answers across all chapters.
func (g GroupedAnswers) Len() int {
	total := 0
	for _, answers := range g.byName {
		total += len(answers)
	}
	return total
}
