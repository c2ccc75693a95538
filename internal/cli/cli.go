package cli

import (
	"context"
	"io"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/noah-isme/gema-grader/internal/config"
	"github.com/noah-isme/gema-grader/internal/database"
	"github.com/noah-isme/gema-grader/internal/grading"
	"github.com/noah-isme/gema-grader/internal/service"
)

// GraderFactory builds the grader used by a command. The returned cleanup
// releases whatever the grader holds and must be called once the command ends.
type GraderFactory func(ctx context.Context) (grading.Grader, func(), error)

// NewRootCommand assembles the grader command tree.
func NewRootCommand(factory GraderFactory, stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "grader",
		Short:         "Grade student answers against teacher answers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(newSessionCommand(factory), newCheckCommand(factory))
	return root
}

// Execute runs the CLI with process streams and returns the exit code.
func Execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCommand(ConfiguredGrader(zerolog.New(stderr).With().Timestamp().Logger()), stdin, stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		return 1
	}
	return 0
}

// ConfiguredGrader builds graders from GEMA_* configuration, wiring the
// semantic collaborators and the Redis embedding cache when configured.
func ConfiguredGrader(logger zerolog.Logger) GraderFactory {
	return func(ctx context.Context) (grading.Grader, func(), error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, err
		}

		redisClient := optionalRedis(cfg, logger)
		cleanup := closeRedis(redisClient, logger)
		classifier, encoder, err := service.NewSemanticCollaborators(cfg, redisClient, logger)
		if err != nil {
			cleanup()
			return nil, nil, err
		}

		options := []grading.Option{grading.WithSimilarityThreshold(cfg.SimilarityThreshold)}
		if classifier != nil && encoder != nil {
			options = append(options, grading.WithSemantic(classifier, encoder))
		}
		return grading.NewGrader(options...), cleanup, nil
	}
}

func closeRedis(client *redis.Client, logger zerolog.Logger) func() {
	return func() {
		if client == nil {
			return
		}
		if err := client.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close redis client")
		}
	}
}

func optionalRedis(cfg config.Config, logger zerolog.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	client, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("embedding cache disabled")
		return nil
	}
	return client
}
