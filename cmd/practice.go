package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/interviewer"
	"github.com/spigell/hh-interviewer/internal/logger"
)

const PromptQuit = "Quit"

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run an interview in the terminal",
	Run: func(_ *cobra.Command, _ []string) {
		practice()
	},
}

func init() {
	rootCmd.AddCommand(practiceCmd)
}

func practice() {
	ctx := context.Background()

	logger, err := logger.NewTerminal(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	deps, err := buildComponents(ctx, config, logger)
	if err != nil {
		logger.Fatal("preparing the interviewer", zap.Error(err))
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Warn("closing session storage", zap.Error(err))
		}
	}()

	role, err := selectRole()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return
		}
		logger.Fatal("selecting a role", zap.Error(err))
	}
	if role == "" {
		return
	}

	sessionID := uuid.NewString()
	if err := converse(ctx, deps.service, sessionID, string(role)); err != nil {
		logger.Error("interview failed", zap.Error(err))
	}

	if err := deps.service.Reset(ctx, sessionID); err != nil {
		logger.Warn("saving the interview", zap.Error(err))
		return
	}
	logger.Info("interview saved", zap.String("session_id", sessionID))
}

func selectRole() (interview.Role, error) {
	items := make([]string, 0, len(interview.Roles)+1)
	for _, r := range interview.Roles {
		items = append(items, r.Title())
	}

	rolePrompt := promptui.Select{
		Label: "Which role would you like to practice for?",
		Items: append(items, PromptQuit),
	}

	idx, _, err := rolePrompt.Run()
	if err != nil {
		return "", err
	}
	if idx >= len(interview.Roles) {
		return "", nil
	}
	return interview.Roles[idx], nil
}

// converse feeds prompt answers to the service until the candidate quits.
func converse(ctx context.Context, svc *interviewer.Service, sessionID, first string) error {
	reply, err := svc.Handle(ctx, sessionID, first)
	if err != nil {
		return err
	}

	for {
		fmt.Printf("\n%s\n\n", reply.Text)

		label := "Answer"
		if reply.QuestionNumber > 0 && !reply.Completed {
			label = fmt.Sprintf("Answer %d/%d", reply.QuestionNumber, reply.TotalQuestions)
		}

		answerPrompt := promptui.Prompt{Label: label}
		message, err := answerPrompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}

		reply, err = svc.Handle(ctx, sessionID, message)
		if err != nil {
			return err
		}
	}
}
