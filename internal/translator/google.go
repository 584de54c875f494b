package translator

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleService translates via the Google Cloud Translation API (v2).
type GoogleService struct{}

func NewGoogleService() *GoogleService {
	return &GoogleService{}
}

func (s *GoogleService) Name() string {
	return "google"
}

// Translate sends one snippet to the Cloud Translation API. When the request
// has no source language the API detects it, and the detected tag is reported
// in the result.
func (s *GoogleService) Translate(ctx context.Context, cfg Config, req Request) (*Result, error) {
	result := &Result{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	target, err := language.Parse(req.TargetLang)
	if err != nil {
		return result, fmt.Errorf("invalid target language %q: %w", req.TargetLang, err)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	var opts []option.ClientOption
	if cfg.Credentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Credentials))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return result, fmt.Errorf("failed to create translation client: %w", err)
	}
	defer client.Close()

	var topts *translate.Options
	if req.SourceLang != "" && req.SourceLang != "auto" {
		source, err := language.Parse(req.SourceLang)
		if err != nil {
			return result, fmt.Errorf("invalid source language %q: %w", req.SourceLang, err)
		}
		topts = &translate.Options{Source: source}
	}

	translations, err := client.Translate(ctx, []string{req.Text}, target, topts)
	if err != nil {
		return result, fmt.Errorf("translation failed: %w", err)
	}
	if len(translations) == 0 {
		return result, fmt.Errorf("no translation returned")
	}

	result.TranslatedText = translations[0].Text
	if translations[0].Source != (language.Tag{}) {
		result.DetectedSource = translations[0].Source.String()
	}

	return result, nil
}
