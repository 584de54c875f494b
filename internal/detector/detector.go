// Package detector wraps the lingua language detector. The pipeline deals
// in display-name languages ("Urdu", "English"), so detection results are
// exposed as display names rather than ISO codes.
package detector

import (
	lingua "github.com/pemistahl/lingua-go"
)

// Detector identifies the language of a text. Building one is expensive
// (lingua loads its models eagerly); construct once and reuse.
type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a Detector over all languages lingua knows.
func New() *Detector {
	det := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Detector{detector: det}
}

// Detect returns the most likely language of text, or false when the text
// is empty or too ambiguous to classify.
func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if text == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectName returns the display name of the detected language
// (e.g. "English", "Urdu"), or false when detection fails.
func (d *Detector) DetectName(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return lang.String(), true
}
