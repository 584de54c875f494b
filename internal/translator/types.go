// Package translator provides direct machine translation of short text
// snippets. It is a spot-check companion to the main pipeline: useful for
// verifying individual terms and glossary entries without the chunking and
// prompting machinery.
package translator

import (
	"context"
	"time"
)

// Config carries credentials and limits for a translation backend.
type Config struct {
	Credentials string        `mapstructure:"credentials" json:"credentials"`
	ProjectID   string        `mapstructure:"project_id" json:"project_id"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
}

// Request is one snippet to translate. An empty or "auto" SourceLang asks
// the backend to detect the source language itself.
type Request struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// Result is the outcome of one Translate call.
type Result struct {
	ServiceName    string        `json:"service_name"`
	TranslatedText string        `json:"translated_text"`
	DetectedSource string        `json:"detected_source,omitempty"`
	Latency        time.Duration `json:"latency"`
}

// Service is a machine translation backend.
type Service interface {
	Name() string
	Translate(ctx context.Context, cfg Config, req Request) (*Result, error)
}
