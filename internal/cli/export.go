package cli

import (
	"fmt"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lms-assessment-service/internal/infra/postgres"
	redisinfra "lms-assessment-service/internal/infra/redis"
	"lms-assessment-service/internal/report"
)

// NewExportCmd writes an assessment's gradebook to an xlsx file.
func NewExportCmd(configPath *string) *cobra.Command {
	var assessmentID, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export submissions for an assessment as an Excel gradebook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()
			ctx := cmd.Context()

			var lister report.SubmissionLister
			switch {
			case cfg.Postgres.URL != "":
				pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
				if err != nil {
					return err
				}
				defer pool.Close()
				lister = postgres.NewSubmissionStore(pool)
			case cfg.Redis.Addr != "":
				client := redis.NewClient(&redis.Options{
					Addr:     cfg.Redis.Addr,
					Password: cfg.Redis.Password,
					DB:       cfg.Redis.DB,
				})
				defer client.Close()
				lister = redisinfra.NewSubmissionStore(client)
			default:
				return fmt.Errorf("export needs postgres or redis configured")
			}

			data, err := report.Gradebook(ctx, lister, assessmentID)
			if err != nil {
				return err
			}
			if out == "" {
				out = assessmentID + "-gradebook.xlsx"
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			logger.Info("gradebook written", zap.String("assessment_id", assessmentID), zap.String("path", out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&assessmentID, "assessment", "a", "", "assessment id")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default <assessment>-gradebook.xlsx)")
	_ = cmd.MarkFlagRequired("assessment")
	return cmd
}
