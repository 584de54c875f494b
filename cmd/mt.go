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
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zaminworks/zamintran/internal/translator"
)

var (
	mtSource      string
	mtTarget      string
	mtCredentials string
	mtProjectID   string
	mtTimeout     time.Duration
)

var mtCmd = &cobra.Command{
	Use:   "mt [text...]",
	Short: "Machine-translate a short snippet directly",
	Long: `Translate a short snippet through Google Cloud Translation, without
the chunking pipeline. Useful for spot-checking individual terms and
glossary entries.

Language arguments are BCP 47 codes (ur, hi, en), not language names.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")

		svc := translator.NewGoogleService()
		result, err := svc.Translate(context.Background(), translator.Config{
			Credentials: mtCredentials,
			ProjectID:   mtProjectID,
			Timeout:     mtTimeout,
		}, translator.Request{
			Text:       text,
			SourceLang: mtSource,
			TargetLang: mtTarget,
		})
		if err != nil {
			return err
		}

		if result.DetectedSource != "" && (mtSource == "" || mtSource == "auto") {
			fmt.Fprintf(os.Stderr, "Detected source language: %s\n", result.DetectedSource)
		}
		fmt.Println(result.TranslatedText)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mtCmd)

	mtCmd.Flags().StringVarP(&mtSource, "source", "s", "auto", "Source language code")
	mtCmd.Flags().StringVarP(&mtTarget, "target", "t", "en", "Target language code")
	mtCmd.Flags().StringVarP(&mtCredentials, "credentials", "c", "", "Path to Google Cloud credentials")
	mtCmd.Flags().StringVarP(&mtProjectID, "project", "p", "", "Google Cloud Project ID")
	mtCmd.Flags().DurationVar(&mtTimeout, "timeout", 30*time.Second, "Request timeout")
}
