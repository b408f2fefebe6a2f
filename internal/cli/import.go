package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mcq-assessment-service/internal/app"
	"mcq-assessment-service/internal/config"
)

// NewImportCmd bulk-imports questions from a YAML or JSON file.
func NewImportCmd(configPath *string) *cobra.Command {
	var (
		technologyID string
		authorID     string
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Bulk import questions from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			items, err := readQuestionFile(args[0])
			if err != nil {
				return err
			}

			b, err := buildBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.Close()
			if !b.persistent {
				config.Logger().Warn("postgres not configured: validating only, nothing will persist")
			}

			var res app.ImportResult
			if technologyID != "" {
				res, err = b.questions.ImportForTechnology(ctx, authorID, technologyID, app.ToQuestions(items))
				if err != nil {
					return err
				}
			} else {
				res = b.questions.Import(ctx, authorID, app.ToQuestions(items))
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
			if res.Imported == 0 {
				return fmt.Errorf("no questions imported (%d failed)", res.Failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&technologyID, "technology", "", "stamp every question with this technology id")
	cmd.Flags().StringVar(&authorID, "author", "cli", "user id recorded as the creator")
	return cmd
}

// readQuestionFile decodes a list of questions or a single question. yaml.v3 also
// accepts JSON documents.
func readQuestionFile(path string) ([]app.QuestionInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []app.QuestionInput
	if err := yaml.Unmarshal(data, &items); err == nil {
		return items, nil
	}
	var item app.QuestionInput
	if err := yaml.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return []app.QuestionInput{item}, nil
}
