package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gin-gonic/gin/binding"
	"github.com/medjourney/simulados-backend/internal/config"
	"github.com/medjourney/simulados-backend/internal/database"
	"github.com/medjourney/simulados-backend/internal/logger"
	"github.com/medjourney/simulados-backend/internal/model"
	"github.com/medjourney/simulados-backend/internal/repository"
	"github.com/medjourney/simulados-backend/internal/service"
	"github.com/medjourney/simulados-backend/internal/validator"
	"github.com/spf13/cobra"
)

var importOwner string

var importBankCmd = &cobra.Command{
	Use:   "import-bank <file.json>",
	Short: "Import a question bank from a JSON file",
	Long: `Imports a question bank into PostgreSQL. The file uses the same
shape as POST /api/v1/question-banks:

	{"nome": "Cardiologia", "questoes": [{"enunciado": "...", ...}]}
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := loadBankFile(args[0])
		if err != nil {
			return err
		}

		cfg := config.Load()
		log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

		pool, err := database.NewPostgresPool(cmd.Context(), cfg.DatabaseURL, cfg.MaxDBConns, log)
		if err != nil {
			return err
		}
		defer pool.Close()

		banks := service.NewQuestionBankService(repository.NewQuestionBankRepository(pool), log)
		bank, err := banks.CreateBank(cmd.Context(), importOwner, req)
		if err != nil {
			return fmt.Errorf("import bank: %w", err)
		}

		cmd.Printf("Imported bank %s (%d questions)\n", bank.ID, len(bank.Questions))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importBankCmd)
	importBankCmd.Flags().StringVar(&importOwner, "owner", "", "Owner user id of the imported bank")
	_ = importBankCmd.MarkFlagRequired("owner")
}

// loadBankFile decodes and validates a bank file with the API binding rules.
func loadBankFile(path string) (*model.CreateQuestionBankRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var req model.CreateQuestionBankRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	validator.Setup()
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return nil, fmt.Errorf("invalid bank file: %w", err)
	}
	return &req, nil
}
