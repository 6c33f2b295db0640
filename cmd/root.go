package cmd

import (
	"errors"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "recruit-assistant"
)

type Config struct {
	Google     *GoogleConfig     `mapstructure:"google"`
	Search     *SearchConfig     `mapstructure:"search"`
	AI         *AIConfig         `mapstructure:"ai"`
	Knowledge  *KnowledgeConfig  `mapstructure:"knowledge"`
	Jobs       *JobsConfig       `mapstructure:"jobs"`
	Applicants *ApplicantsConfig `mapstructure:"applicants"`
	Session    *SessionConfig    `mapstructure:"session"`
}

type GoogleConfig struct {
	CredentialsFile string `mapstructure:"credentials-file"`
	SpreadsheetID   string `mapstructure:"spreadsheet-id"`
	KnowledgeTab    string `mapstructure:"knowledge-tab"`
	JobsTab         string `mapstructure:"jobs-tab"`
	ApplicantsTab   string `mapstructure:"applicants-tab"`
}

type SearchConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	CX         string `mapstructure:"cx"`
	MaxResults int    `mapstructure:"max-results"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type KnowledgeConfig struct {
	MinConfidence float64 `mapstructure:"min-confidence"`
	CacheFile     string  `mapstructure:"cache-file"`
}

type JobsConfig struct {
	CacheFile string `mapstructure:"cache-file"`
}

type ApplicantsConfig struct {
	FallbackFile string `mapstructure:"fallback-file"`
}

type SessionConfig struct {
	DBFile      string `mapstructure:"db-file"`
	HistoryRuns int    `mapstructure:"history-runs"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "recruit-assistant is a conversational assistant for candidates: answers recruitment questions, lists open positions and records applications",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is recruit-assistant.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Local development keeps secrets in a .env file; a missing file is fine.
	_ = godotenv.Load()

	bindings := map[string]string{
		"google.spreadsheet-id":   "GOOGLE_SHEETS_SPREADSHEET_ID",
		"google.credentials-file": "GOOGLE_SHEETS_CREDENTIALS_FILE",
		"ai.gemini.api-key":       "GEMINI_API_KEY",
		"search.api-key":          "GOOGLE_CSE_API_KEY",
		"search.cx":               "GOOGLE_CSE_CX",
	}
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("google.knowledge-tab", "Knowledge")
	viper.SetDefault("google.jobs-tab", "Jobs")
	viper.SetDefault("google.applicants-tab", "Applicants")
	viper.SetDefault("search.max-results", 5)
	viper.SetDefault("knowledge.min-confidence", 0.6)
	viper.SetDefault("knowledge.cache-file", "tmp/knowledge.csv")
	viper.SetDefault("jobs.cache-file", "tmp/jobs.json")
	viper.SetDefault("applicants.fallback-file", "tmp/user_info.json")
	viper.SetDefault("session.db-file", "tmp/sessions.db")
	viper.SetDefault("session.history-runs", 5)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
		viper.SetConfigType("yaml")
	}

	// The assistant can run from environment variables alone; only an
	// explicitly requested or malformed config file is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
