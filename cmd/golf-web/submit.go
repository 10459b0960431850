package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/terra-clan/code-golf/internal/config"
	"github.com/terra-clan/code-golf/internal/filepick"
	"github.com/terra-clan/code-golf/internal/leaderboard"
	"github.com/terra-clan/code-golf/internal/models"
	"github.com/terra-clan/code-golf/pkg/client"
)

type submitOptions struct {
	challenge string
	lang      string
	name      string
	file      string
}

func newSubmitCmd() *cobra.Command {
	var opts submitOptions

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a local solution file to the golf API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return submit(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.challenge, "challenge", "c", "", "challenge name")
	cmd.Flags().StringVarP(&opts.lang, "lang", "l", "", "language of the solution")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "name shown on the leaderboard")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "solution file")
	for _, flag := range []string{"challenge", "lang", "name", "file"} {
		cmd.MarkFlagRequired(flag)
	}
	return cmd
}

func submit(ctx context.Context, cfg *config.Config, opts submitOptions, out io.Writer) error {
	if strings.TrimSpace(opts.name) == "" {
		return fmt.Errorf("name must not be blank")
	}

	file, err := filepick.ReadPath(opts.file, cfg.Session.FileLimit)
	if err != nil {
		return err
	}

	api := client.NewClient(cfg.API.URL, client.WithTimeout(cfg.API.Timeout))
	res, err := api.Submit(ctx, models.SubmitRequest{
		Name:      strings.TrimSpace(opts.name),
		Code:      file.Content,
		Challenge: opts.challenge,
		Lang:      opts.lang,
	})
	if err != nil {
		return err
	}

	if !res.Passed() {
		failed := res.Failures()
		fmt.Fprintf(out, "Failed %d of %d test cases\n", len(failed), len(res.Results))
		for _, tc := range failed {
			fmt.Fprintf(out, "\n%s (%s)\n  input:    %q\n  output:   %q\n  expected: %q\n", tc.Name, tc.State, tc.Input, tc.Output, tc.ExpectedOutput)
			if tc.Err != "" {
				fmt.Fprintf(out, "  error:    %s\n", tc.Err)
			}
		}
		return fmt.Errorf("submission of %s failed", file.Name)
	}

	fmt.Fprintf(out, "Passed all test cases with a %d bytes solution!\n", file.Size())

	if cfg.Redis.Address != "" {
		invalidateShared(ctx, cfg, opts.challenge)
	}
	return nil
}

// invalidateShared drops the challenge from the server's Redis leaderboard cache
func invalidateShared(ctx context.Context, cfg *config.Config, challenge string) {
	store, err := leaderboard.NewRedisStore(ctx, leaderboard.RedisConfig{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
	})
	if err != nil {
		slog.Warn("failed to connect to redis", "error", err)
		return
	}
	defer store.Close()

	if err := store.Delete(ctx, challenge); err != nil {
		slog.Warn("failed to invalidate leaderboard", "challenge", challenge, "error", err)
	}
}
