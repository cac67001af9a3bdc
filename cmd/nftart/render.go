package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/geometric-nft-kit/pkg/domain"
	"github.com/shouni/geometric-nft-kit/pkg/generator"
)

func newRenderCmd(load loader) *cobra.Command {
	var (
		force  bool
		out    string
		format string
	)

	cmd := &cobra.Command{
		Use:   "render <tokenId>",
		Short: "作品画像を生成する",
		Long: `トークン ID の作品画像を画像キャッシュに生成します。--out を指定すると複製を書き出します。

例:
  nftart render 23
  nftart render 23 --force
  nftart render 23 --out 23.jpg --format jpeg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseTokenID(args[0])
			if err != nil {
				return fmt.Errorf("%q: %w", args[0], err)
			}
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.core.EnsureImage(cmd.Context(), id, force)
			if err != nil {
				return err
			}
			if format != generator.FormatPNG {
				if resp, err = a.core.ImageBytes(cmd.Context(), id, format); err != nil {
					return err
				}
			}

			path := resp.Path
			if out != "" {
				if err := os.WriteFile(out, resp.Data, 0o644); err != nil {
					return fmt.Errorf("画像の書き出しに失敗しました: %w", err)
				}
				path = out
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes, cached=%t)\n", path, len(resp.Data), resp.Cached)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "キャッシュがあっても描き直す")
	cmd.Flags().StringVarP(&out, "out", "o", "", "画像の書き出し先")
	cmd.Flags().StringVar(&format, "format", generator.FormatPNG, "書き出し形式 (png, jpeg)")
	return cmd
}
