/*
Copyright © 2026 Zaminworks

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zaminworks/zamintran/internal/detector"
	"github.com/zaminworks/zamintran/internal/generator"
	"github.com/zaminworks/zamintran/internal/pipeline"
)

var (
	inputFile  string
	outputFile string
	sourceLang string
	targetLang string

	apiKey     string
	model      string
	maxRetries int
	timeout    time.Duration

	chunkSize  int
	overlap    int
	cacheSize  int
	chunkDelay time.Duration

	streamEvents bool
	validateLang bool
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate a land record document",
	Long: `Translate a land record document chunk by chunk through the
generation API.

The document is split at sentence boundaries into overlapping chunks, each
chunk is translated with the tail of the previous translation as context,
and the chunk translations are reassembled with the overlap deduplicated.
Repeated chunks are served from an in-memory cache.

Page markers of the form "--- Page N ---" are recognised and stripped.

With --stream, progress is emitted as one JSON event per line on stdout
instead of the human-readable progress display.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		logger, err := newLogger()
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		defer logger.Sync()

		raw, err := os.ReadFile(inputFile)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}
		text := string(raw)

		ctx := context.Background()

		// Auto-detect source language when not specified
		if sourceLang == "auto" {
			det := detector.New()
			if detected, ok := det.DetectName(text); ok {
				sourceLang = detected
				fmt.Fprintf(os.Stderr, "Detected source language: %s\n", sourceLang)
			} else {
				sourceLang = "Urdu"
			}
		}

		if apiKey == "" {
			apiKey = viper.GetString("api-key")
		}
		if model == "" {
			model = viper.GetString("model")
		}

		gen := generator.New(generator.Config{
			APIKey:     apiKey,
			Model:      model,
			Timeout:    timeout,
			MaxRetries: maxRetries,
		}, logger)

		p := pipeline.New(gen, pipeline.Config{
			ChunkSize:        chunkSize,
			Overlap:          overlap,
			CacheSize:        cacheSize,
			ChunkDelay:       chunkDelay,
			ValidateLanguage: validateLang,
		}, logger)

		var finalText string
		var md *pipeline.Metadata

		if streamEvents {
			enc := json.NewEncoder(os.Stdout)
			for ev := range p.TranslateStream(ctx, text, sourceLang, targetLang) {
				if err := enc.Encode(ev); err != nil {
					return fmt.Errorf("failed to encode event: %w", err)
				}
				switch ev.Type {
				case pipeline.EventComplete:
					finalText = ev.TranslatedText
					md = ev.Metadata
				case pipeline.EventError:
					md = ev.Metadata
				}
			}
		} else {
			progress := func(current, total int, status string) {
				fmt.Fprintf(os.Stderr, "\r[%d/%d] %-40s", current, total, status)
			}
			finalText, md = p.TranslateDocument(ctx, text, sourceLang, targetLang, progress)
			fmt.Fprintln(os.Stderr)
		}

		if md == nil || md.Error != "" {
			if md != nil {
				return fmt.Errorf("translation failed: %s", md.Error)
			}
			return fmt.Errorf("translation produced no result")
		}

		if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(outputFile, []byte(finalText), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}

		if !streamEvents {
			printSummary(md)
		}
		return nil
	},
}

func printSummary(md *pipeline.Metadata) {
	fmt.Printf("Successfully translated %d chunks in %s\n",
		md.SuccessfulChunks, md.ProcessingTime.Round(time.Millisecond))
	fmt.Printf("Chunks: %d total, %d failed, %d from cache\n",
		md.TotalChunks, md.FailedChunks, md.CachedChunks)
	fmt.Printf("API requests: %d, cache hit rate: %.0f%%\n",
		md.APIRequests, md.CacheStats.HitRate*100)
	fmt.Printf("Number coverage: %.0f%%\n", md.QualityCoverage*100)
	for _, issue := range md.QualityIssues {
		fmt.Printf("Warning: %s\n", issue)
	}
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file to translate (required)")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file for translation (required)")
	translateCmd.Flags().StringVarP(&sourceLang, "source", "s", "auto", "Source language name (auto to detect)")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "English", "Target language name")

	translateCmd.Flags().StringVar(&apiKey, "api-key", "", "Generation API key (or GOOGLE_GEMINI_API_KEY)")
	translateCmd.Flags().StringVar(&model, "model", "", "Generation model name")
	translateCmd.Flags().IntVar(&maxRetries, "max-retries", 0, "Attempts per chunk including the first")
	translateCmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-request timeout")

	translateCmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Target chunk size in characters")
	translateCmd.Flags().IntVar(&overlap, "overlap", 0, "Overlap between consecutive chunks in characters")
	translateCmd.Flags().IntVar(&cacheSize, "cache-size", 0, "Translation cache capacity in chunks")
	translateCmd.Flags().DurationVar(&chunkDelay, "chunk-delay", 0, "Pause between chunk requests (negative to disable)")

	translateCmd.Flags().BoolVar(&streamEvents, "stream", false, "Emit JSON progress events on stdout")
	translateCmd.Flags().BoolVar(&validateLang, "validate", false, "Verify the output language matches the target")

	translateCmd.MarkFlagRequired("input")
	translateCmd.MarkFlagRequired("output")
}
