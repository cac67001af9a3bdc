package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shouni/geometric-nft-kit/pkg/registry"
	"github.com/shouni/geometric-nft-kit/pkg/server"
)

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "HTTP サーバーを起動する",
		Long: `作品画像、メタデータ、模擬コントラクト API を公開します。

例:
  nftart serve --port 8000
  PINATA_JWT=... nftart serve
  nftart serve --pinata-mock`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ledger, err := registry.NewMemoryRegistry(cfg.Registry.Owner, cfg.Registry.MintPriceWei)
			if err != nil {
				return err
			}

			opts := []server.Option{server.WithMetrics(a.metrics, a.registry)}
			if a.mockPins != nil {
				opts = append(opts, server.WithMockPinner(a.mockPins))
			}
			srv, err := server.New(a.core, ledger, cfg.PublicBaseURL, opts...)
			if err != nil {
				return err
			}
			return srv.Run(ctx, cfg.Addr())
		},
	}
}
