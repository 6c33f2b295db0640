package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vti-labs/recruit-assistant/internal/logger"
	"github.com/vti-labs/recruit-assistant/internal/session"
)

const sessionTimeLayout = "2006-01-02 15:04:05"

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored chat sessions",
	Run: func(cmd *cobra.Command, _ []string) {
		sessions(cmd)
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)

	sessionsCmd.Flags().StringP("user", "u", "", "only show sessions of this user")
	sessionsCmd.Flags().String("show", "", "print the conversation of the given session id")
	sessionsCmd.Flags().String("delete", "", "delete the given session id and its history")
	sessionsCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation before deleting")
}

func sessions(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store, err := session.OpenSQLite(config.Session.DBFile, logger)
	if err != nil {
		logger.Fatal("opening the session database", zap.Error(err))
	}
	defer store.Close()

	switch {
	case cmd.Flag("show").Value.String() != "":
		showSession(ctx, store, cmd.Flag("show").Value.String(), logger)
	case cmd.Flag("delete").Value.String() != "":
		deleteSession(ctx, cmd, store, cmd.Flag("delete").Value.String(), logger)
	default:
		listSessions(ctx, cmd, store, logger)
	}
}

func listSessions(ctx context.Context, cmd *cobra.Command, store session.Store, logger *zap.Logger) {
	sessions, err := store.ListSessions(ctx, cmd.Flag("user").Value.String())
	if err != nil {
		logger.Fatal("listing sessions", zap.Error(err))
	}

	if len(sessions) == 0 {
		fmt.Println("no sessions found")
		return
	}

	for _, s := range sessions {
		user := s.UserID
		if user == "" {
			user = "-"
		}
		fmt.Printf("%s  user=%s  runs=%d  last activity=%s\n",
			s.SessionID, user, s.RunCount, s.UpdatedAt.Format(sessionTimeLayout))
	}
}

func showSession(ctx context.Context, store session.Store, sessionID string, logger *zap.Logger) {
	// GetRuns is windowed; a generous window covers any realistic session.
	runs, err := store.GetRuns(ctx, sessionID, "", 1000)
	if err != nil {
		logger.Fatal("loading session runs", zap.Error(err))
	}
	if len(runs) == 0 {
		fmt.Println("no runs found for session", sessionID)
		return
	}

	for _, run := range runs {
		fmt.Printf("[%s]\nBạn: %s\n🤖: %s\n\n", run.CreatedAt.Format(sessionTimeLayout), run.Input, run.Response)
	}
}

func deleteSession(ctx context.Context, cmd *cobra.Command, store session.Store, sessionID string, logger *zap.Logger) {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		logger.Fatal("reading the yes flag", zap.Error(err))
	}

	if !yes {
		confirm := promptui.Prompt{
			Label:     fmt.Sprintf("Delete session %s and all its history", sessionID),
			IsConfirm: true,
		}
		if _, err := confirm.Run(); err != nil {
			fmt.Println("aborted")
			return
		}
	}

	if err := store.DeleteSession(ctx, sessionID); err != nil {
		logger.Fatal("deleting session", zap.Error(err))
	}

	logger.Info("session deleted", zap.String("session_id", sessionID))
}
