package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"lms-assessment-service/internal/domain"
	"lms-assessment-service/internal/infra/postgres"
)

// contentFile is the authoring format accepted by seed. YAML keys follow the
// JSON wire names.
type contentFile struct {
	Assessments []domain.AssessmentRecord `json:"assessments"`
	Lessons     []domain.Lesson           `json:"lessons"`
}

// NewSeedCmd loads authored assessments and lessons into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load assessments and lessons from a YAML or JSON file into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			content, err := readContent(file)
			if err != nil {
				return err
			}
			db, err := openBun(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			return seedContent(cmd.Context(), postgres.NewSeeder(db), content, logger)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "content.yaml", "content file to load")
	return cmd
}

// readContent decodes YAML (a superset of JSON) and re-encodes it as JSON so
// the wire decoders and their validation apply unchanged.
func readContent(path string) (contentFile, error) {
	var content contentFile
	data, err := os.ReadFile(path)
	if err != nil {
		return content, err
	}
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return content, fmt.Errorf("parse %s: %w", path, err)
	}
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return content, fmt.Errorf("convert %s: %w", path, err)
	}
	if err := json.Unmarshal(asJSON, &content); err != nil {
		return content, fmt.Errorf("decode %s: %w", path, err)
	}
	return content, nil
}

type contentWriter interface {
	UpsertAssessment(ctx context.Context, a domain.Assessment) error
	UpsertLesson(ctx context.Context, l domain.Lesson) error
}

func seedContent(ctx context.Context, w contentWriter, content contentFile, logger *zap.Logger) error {
	for _, rec := range content.Assessments {
		a, err := domain.DecodeAssessment(rec)
		if err != nil {
			return fmt.Errorf("assessment %s: %w", rec.ID, err)
		}
		if err := w.UpsertAssessment(ctx, a); err != nil {
			return err
		}
		logger.Info("seeded assessment", zap.String("id", a.ID), zap.Int("questions", a.Questions.Len()))
	}
	for _, l := range content.Lessons {
		if err := w.UpsertLesson(ctx, l); err != nil {
			return err
		}
		logger.Info("seeded lesson", zap.String("id", l.ID), zap.Int("blocks", len(l.Blocks)))
	}
	return nil
}
