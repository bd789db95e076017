package services

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/imagingpedia/learning-service/internal/models"
)

// Scoring compares a free-text answer against its model answer by keyword
// coverage. The same inputs always produce the same score, so a re-submission
// of an unchanged answer never shifts a student's result.

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"with": {}, "this": {}, "that": {}, "from": {}, "was": {}, "were": {},
	"can": {}, "will": {}, "has": {}, "have": {}, "had": {}, "its": {},
	"their": {}, "which": {}, "into": {}, "also": {}, "than": {}, "then": {},
	"when": {}, "where": {}, "such": {}, "these": {}, "those": {}, "they": {},
	"may": {}, "must": {}, "should": {}, "each": {}, "used": {}, "uses": {},
	"using": {}, "very": {}, "more": {}, "most": {}, "other": {}, "some": {},
	"any": {}, "all": {}, "one": {}, "two": {}, "been": {}, "being": {},
	"both": {}, "due": {}, "because": {}, "there": {}, "about": {},
}

// ScoreAnswer grades an answer out of maxMarks. The score is the fraction of
// the model answer's key terms the answer covers, rounded to halves; every
// missing term becomes an improvement suggestion.
func ScoreAnswer(answer, modelAnswer string, maxMarks int) models.ScoreResult {
	if maxMarks <= 0 {
		maxMarks = 10
	}

	keyTerms := keyTerms(modelAnswer)
	if len(keyTerms) == 0 {
		// Nothing to grade against; a non-blank answer gets full marks.
		if strings.TrimSpace(answer) == "" {
			return models.ScoreResult{LostMarks: float64(maxMarks), Improvement: []string{"Provide an answer that addresses the question."}}
		}
		return models.ScoreResult{AIScore: float64(maxMarks), Improvement: []string{}}
	}

	answerTerms := termSet(answer)

	covered := 0
	missing := make([]string, 0, len(keyTerms))
	for _, term := range keyTerms {
		if _, ok := answerTerms[term]; ok {
			covered++
		} else {
			missing = append(missing, term)
		}
	}

	coverage := float64(covered) / float64(len(keyTerms))
	score := roundToHalf(coverage * float64(maxMarks))

	improvement := make([]string, 0, 3)
	if len(missing) > 0 {
		// Cap the suggestions; a long model answer should not flood the
		// student with every absent term.
		const maxSuggestions = 3
		for i := 0; i < len(missing) && i < maxSuggestions; i++ {
			improvement = append(improvement, fmt.Sprintf("Expand your answer to cover %q.", missing[i]))
		}
	}
	if score >= float64(maxMarks) {
		improvement = []string{}
	}

	return models.ScoreResult{
		AIScore:     score,
		LostMarks:   float64(maxMarks) - score,
		Improvement: improvement,
	}
}

// keyTerms extracts the significant terms of the model answer in first-seen
// order, deduplicated.
func keyTerms(text string) []string {
	seen := make(map[string]struct{})
	terms := make([]string, 0, 16)
	for _, word := range tokenize(text) {
		if !isSignificant(word) {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		terms = append(terms, word)
	}
	return terms
}

func termSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range tokenize(text) {
		set[word] = struct{}{}
	}
	return set
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func isSignificant(word string) bool {
	if len(word) < 3 {
		return false
	}
	_, stop := stopwords[word]
	return !stop
}

// roundToHalf rounds to the nearest 0.5 mark.
func roundToHalf(v float64) float64 {
	return math.Round(v*2) / 2
}
