// Package quality scores an assembled translation after the fact. All of it
// is advisory: a poor score or a detected issue never blocks the pipeline.
package quality

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/zaminworks/zamintran/internal/detector"
)

// minValidationRunes is the minimum output length for language
// verification; shorter texts classify too unreliably to judge.
const minValidationRunes = 20

var numberRe = regexp.MustCompile(`\d+`)

// Report is the outcome of evaluating one assembled translation.
type Report struct {
	Coverage float64  `json:"coverage"`
	Issues   []string `json:"issues,omitempty"`
}

// Coverage estimates how much of the original survived translation: the
// fraction of distinct numeric tokens in the original that also appear in
// the translated text. Land records are dense with plot numbers, dates and
// measurements, so lost numbers are the cheapest proxy for lost content.
// Trivially 1.0 when the original contains no numbers.
func Coverage(original, translated string) float64 {
	if original == "" {
		return 1.0
	}

	originalNums := numberSet(original)
	if len(originalNums) == 0 {
		return 1.0
	}
	translatedNums := numberSet(translated)

	preserved := 0
	for n := range originalNums {
		if _, ok := translatedNums[n]; ok {
			preserved++
		}
	}
	return float64(preserved) / float64(len(originalNums))
}

func numberSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, n := range numberRe.FindAllString(s, -1) {
		set[n] = struct{}{}
	}
	return set
}

// DetectIssues flags suspicious patterns in the translated text.
func DetectIssues(translated string) []string {
	var issues []string

	if strings.Contains(translated, "[?]") {
		issues = append(issues, "Contains uncertain translations")
	}
	if len([]rune(translated)) < 10 {
		issues = append(issues, "Translation too short")
	}
	// Marker emitted by the pipeline when a chunk's generation failed.
	if strings.Contains(translated, "[Translation failed") {
		issues = append(issues, "Translation failed for some chunks")
	}

	return issues
}

// Evaluator bundles coverage scoring, issue detection and an optional
// output-language check.
type Evaluator struct {
	det *detector.Detector
}

// New creates an Evaluator. A nil detector disables language verification.
func New(det *detector.Detector) *Evaluator {
	return &Evaluator{det: det}
}

// Evaluate scores the translation against the original and, when a detector
// is available, verifies the output reads as targetLang.
func (e *Evaluator) Evaluate(original, translated, targetLang string) Report {
	report := Report{
		Coverage: Coverage(original, translated),
		Issues:   DetectIssues(translated),
	}

	if issue, ok := e.languageIssue(translated, targetLang); ok {
		report.Issues = append(report.Issues, issue)
	}

	return report
}

// languageIssue reports a mismatch between the detected output language and
// targetLang. Short and unclassifiable texts pass without an issue, as does
// an empty targetLang.
func (e *Evaluator) languageIssue(translated, targetLang string) (string, bool) {
	if e.det == nil || targetLang == "" {
		return "", false
	}

	text := strings.TrimSpace(translated)
	if len([]rune(text)) < minValidationRunes {
		return "", false
	}

	detected, ok := e.det.DetectName(text)
	if !ok || strings.EqualFold(detected, targetLang) {
		return "", false
	}
	return fmt.Sprintf("Output language looks like %s, expected %s", detected, targetLang), true
}
