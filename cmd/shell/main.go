package main

import (
	"log"

	"sparkathon/config"
	"sparkathon/models"
	"sparkathon/services/recommendation"
	"sparkathon/services/scheduling"
	"sparkathon/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	// The terminal belongs to the program; logs would corrupt the screen.
	logger := zap.NewNop()

	session := scheduling.NewSession(
		uuid.New().String(),
		recommendation.NewStaticSource(cfg.RecommendationDelay),
		scheduling.NewSimulatedSubmitter(cfg.SubmissionDelay),
		scheduling.Options{
			FetchTimeout:  cfg.FetchTimeout,
			SubmitTimeout: cfg.SubmitTimeout,
			Policy:        scheduling.Policy{LockAfterSuccess: cfg.LockAfterSuccess},
			Logger:        logger,
		},
	)
	defer session.Close()

	var account *models.User
	if email := viper.GetString("SHELL_ACCOUNT_EMAIL"); email != "" {
		account = &models.User{Email: email}
	}

	p := tea.NewProgram(tui.New(session, account), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("shell: %v", err)
	}
}
