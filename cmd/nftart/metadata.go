package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shouni/geometric-nft-kit/pkg/domain"
)

func newMetadataCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "metadata <tokenId>",
		Short: "メタデータを JSON で出力する",
		Args:  cobra.ExactArgs(1),
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

			m, err := a.core.Metadata(cmd.Context(), id)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(m)
		},
	}
}
