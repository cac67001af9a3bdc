package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPinataCheckCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "pinata-check",
		Short: "Pinata の認証情報を確認する",
		Long: `PINATA_JWT または PINATA_API_KEY / PINATA_API_SECRET で testAuthentication を呼び出します。

例:
  PINATA_JWT=... nftart pinata-check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			client, err := newPinataClient(cfg)
			if err != nil {
				return err
			}
			if err := client.Authenticate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pinata の認証に成功しました (%s)\n", cfg.Pinata.APIURL)
			return nil
		},
	}
}
