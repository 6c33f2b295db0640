package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vti-labs/recruit-assistant/internal/ai/gemini"
	"github.com/vti-labs/recruit-assistant/internal/applicant"
	"github.com/vti-labs/recruit-assistant/internal/jobs"
	"github.com/vti-labs/recruit-assistant/internal/knowledge"
	"github.com/vti-labs/recruit-assistant/internal/logger"
	"github.com/vti-labs/recruit-assistant/internal/orchestrator"
	"github.com/vti-labs/recruit-assistant/internal/secrets"
	"github.com/vti-labs/recruit-assistant/internal/session"
	"github.com/vti-labs/recruit-assistant/internal/sheets"
	"github.com/vti-labs/recruit-assistant/internal/websearch"
)

const greeting = "👋 Xin chào! Mình là trợ lý tuyển dụng. " +
	"Bạn có thể hỏi về quy trình tuyển dụng, tìm vị trí phù hợp hoặc để lại thông tin ứng tuyển nhé!\n" +
	"(gõ /exit để thoát, /reload để tải lại dữ liệu)"

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session with the assistant",
	Run: func(cmd *cobra.Command, _ []string) {
		chat(cmd)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("user", "u", "", "user id attached to the session history")
	chatCmd.Flags().StringP("session", "s", "", "session id to resume. A new one is generated when unset.")
}

// chat is the main command for the cli.
func chat(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting the recruit-assistant", zap.String("version", version))

	sheetsClient := newSheetsClient(ctx, config, logger)

	orch, cleanup, err := buildOrchestrator(ctx, config, sheetsClient, logger)
	if err != nil {
		logger.Fatal("building the assistant", zap.Error(err))
	}
	defer cleanup()

	sessionID := cmd.Flag("session").Value.String()
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	userID := cmd.Flag("user").Value.String()

	logger.Info("chat session started", zap.String("session_id", sessionID))
	fmt.Println(greeting)

	repl(ctx, orch, sessionID, userID, logger)
}

func repl(ctx context.Context, orch *orchestrator.Orchestrator, sessionID, userID string, logger *zap.Logger) {
	prompt := promptui.Prompt{Label: "Bạn"}

	for {
		input, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				fmt.Println("Tạm biệt! 👋")
				return
			}
			logger.Fatal("reading input", zap.Error(err))
		}

		input = strings.TrimSpace(input)
		switch input {
		case "":
			continue
		case "/exit", "/quit":
			fmt.Println("Tạm biệt! 👋")
			return
		case "/reload":
			if err := orch.Reload(ctx); err != nil {
				logger.Error("reload failed", zap.Error(err))
				fmt.Println("😥 Tải lại dữ liệu không thành công.")
				continue
			}
			fmt.Println("✅ Đã tải lại dữ liệu.")
			continue
		}

		fmt.Printf("\n🤖 %s\n\n", orch.Turn(ctx, sessionID, userID, input))
	}
}

// newSheetsClient resolves spreadsheet credentials through the provider chain.
// A missing spreadsheet setup is not fatal: the assistant degrades to its
// local caches and fallback files.
func newSheetsClient(ctx context.Context, config *Config, logger *zap.Logger) *sheets.Client {
	if config.Google == nil || strings.TrimSpace(config.Google.SpreadsheetID) == "" {
		logger.Warn("no spreadsheet configured, running on local data only",
			zap.String("hint", "set GOOGLE_SHEETS_SPREADSHEET_ID or the 'google.spreadsheet-id' key in the configuration file"),
		)
		return nil
	}

	creds, provider, err := secrets.Resolve(
		&secrets.EnvProvider{},
		&secrets.FileProvider{Path: config.Google.CredentialsFile},
	)
	if err != nil {
		logger.Warn("no spreadsheet credentials, running on local data only",
			zap.Error(err),
			zap.String("hint", "set the GOOGLE_SHEETS_CREDENTIALS_* environment variables or 'google.credentials-file'"),
		)
		return nil
	}

	client, err := sheets.New(ctx, creds, config.Google.SpreadsheetID, logger)
	if err != nil {
		logger.Warn("creating the spreadsheet client failed, running on local data only", zap.Error(err))
		return nil
	}

	logger.Info("spreadsheet client ready", zap.String("credentials_provider", provider))
	return client
}

func buildOrchestrator(ctx context.Context, config *Config, sheetsClient *sheets.Client, log *zap.Logger) (*orchestrator.Orchestrator, func(), error) {
	cleanup := func() {}

	apiKey, err := resolveGeminiKey(config)
	if err != nil {
		return nil, cleanup, fmt.Errorf("loading gemini api key: %w (set GEMINI_API_KEY or 'ai.gemini.api-key-file')", err)
	}

	model := ""
	if config.AI != nil && config.AI.Gemini != nil {
		model = config.AI.Gemini.Model
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, model, log)
	if err != nil {
		return nil, cleanup, err
	}

	// The sheets client interfaces are satisfied by a typed nil, so guard it.
	var knowledgeTab knowledge.TabReader
	var jobsTab jobs.TabReader
	var applicantSink applicant.RemoteSink
	if sheetsClient != nil {
		knowledgeTab = sheetsClient
		jobsTab = sheetsClient
		applicantSink = sheetsClient
	}

	deps := orchestrator.Deps{
		Classifier:    gemini.NewClassifier(generator, log),
		Responder:     gemini.NewResponder(generator, log),
		Knowledge:     knowledge.NewIndex(knowledgeTab, config.Google.KnowledgeTab, config.Knowledge.CacheFile, log),
		Jobs:          jobs.NewDirectory(jobsTab, config.Google.JobsTab, config.Jobs.CacheFile, log),
		Recorder:      applicant.NewRecorder(applicantSink, config.Google.ApplicantsTab, config.Applicants.FallbackFile, log),
		Searcher:      newSearcher(ctx, config, log),
		Logger:        log,
		MinConfidence: config.Knowledge.MinConfidence,
		HistoryRuns:   config.Session.HistoryRuns,
		SearchResults: config.Search.MaxResults,
	}

	store, err := session.OpenSQLite(config.Session.DBFile, log)
	if err != nil {
		log.Warn("opening the session database failed, history is disabled", zap.Error(err))
	} else {
		deps.Sessions = store
		cleanup = func() { _ = store.Close() }
	}

	orch, err := orchestrator.New(deps)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return orch, cleanup, nil
}

func resolveGeminiKey(config *Config) (string, error) {
	var value, file string
	if config.AI != nil && config.AI.Gemini != nil {
		value = config.AI.Gemini.APIKey
		file = config.AI.Gemini.APIKeyFile
	}
	if value == "" {
		value = viper.GetString("ai.gemini.api-key")
	}

	return secrets.LoadKey("gemini api key", value, file)
}

// newSearcher builds the scoped web searcher. Missing configuration is not
// fatal; the assistant simply admits when it cannot look something up.
func newSearcher(ctx context.Context, config *Config, log *zap.Logger) websearch.Searcher {
	var value, file, cx string
	var maxResults int
	if config.Search != nil {
		value = config.Search.APIKey
		file = config.Search.APIKeyFile
		cx = config.Search.CX
		maxResults = config.Search.MaxResults
	}
	if value == "" {
		value = viper.GetString("search.api-key")
	}
	if cx == "" {
		cx = viper.GetString("search.cx")
	}

	apiKey, err := secrets.LoadKey("search api key", value, file)
	if err != nil {
		apiKey = ""
	}

	searcher, err := websearch.NewCSE(ctx, apiKey, cx, log)
	if err != nil {
		log.Warn("web search is disabled",
			zap.Error(err),
			zap.String("hint", "set GOOGLE_CSE_API_KEY and GOOGLE_CSE_CX to enable it"),
			zap.Int("max_results", maxResults),
		)
		return nil
	}
	return searcher
}
