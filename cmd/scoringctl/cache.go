package main

import (
	"context"

	"github.com/spf13/cobra"

	"content-scoring-service/internal/domain"
	rediscache "content-scoring-service/internal/infra/redis"
)

func newCacheCmd(load connectFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the earnings cache",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached balance and earnings entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if !e.cfg.Cache.Enabled {
				cmd.Println("earnings cache disabled, nothing to clear")
				return nil
			}
			if err := clearEarningsCache(cmd.Context(), e); err != nil {
				return err
			}

			cmd.Println("earnings cache cleared")
			return nil
		},
	})

	return cmd
}

// clearEarningsCache removes every key under the configured cache prefix.
func clearEarningsCache(ctx context.Context, e *env) error {
	client, err := rediscache.NewClient(ctx, e.cfg.Redis.Client())
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	var cache domain.Cache = rediscache.NewCache(client, e.log.Logger, e.cfg.Cache.KeyPrefix)
	return cache.Clear(ctx)
}
