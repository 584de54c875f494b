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
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "zamintran",
	Short: "Context-aware land record translator",
	Long: `Translates scanned Urdu and Hindi land revenue records into English.

Documents are split into overlapping chunks and translated sequentially
through a generation API, with each chunk's prompt carrying the tail of the
previous translation so names and terms stay consistent across the document.

Use "zamintran translate --help" for translation options.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./zamintran.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}

// initConfig loads .env, the optional config file and ZAMINTRAN_* environment
// variables, in increasing precedence below the command-line flags.
func initConfig() {
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("zamintran")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("ZAMINTRAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
	// The generation API key is conventionally set under its own name.
	_ = viper.BindEnv("api-key", "GOOGLE_GEMINI_API_KEY")

	_ = viper.ReadInConfig()
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
