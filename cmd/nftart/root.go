package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/geometric-nft-kit/pkg/config"
	"github.com/shouni/geometric-nft-kit/pkg/logging"
)

// globalFlags はすべてのサブコマンドで共通のフラグです。
type globalFlags struct {
	configPath string
	port       int
	imageDir   string
	baseURL    string
	logLevel   string
	pinataMock bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	var logCloser io.Closer

	root := &cobra.Command{
		Use:           "nftart",
		Short:         "幾何学模様 NFT の生成サーバー",
		Long:          "トークン ID から決定論的に作品画像 (500x500 PNG) と ERC-721 メタデータを生成します。",
		SilenceUsage:  true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if logCloser != nil {
				return logCloser.Close()
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "YAML 設定ファイルのパス")
	pf.IntVar(&flags.port, "port", 0, "待ち受けポート (PORT より優先)")
	pf.StringVar(&flags.imageDir, "image-dir", "", "画像キャッシュのディレクトリ (IMAGE_DIR より優先)")
	pf.StringVar(&flags.baseURL, "base-url", "", "公開 URL のベース (PUBLIC_BASE_URL より優先)")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn, error")
	pf.BoolVar(&flags.pinataMock, "pinata-mock", false, "Pinata の代わりにプロセス内の模擬ピン留めを使う")

	// 各サブコマンドは load で設定とロガーを用意します
	load := func(cmd *cobra.Command) (*config.Config, error) {
		cfg, err := loadConfig(cmd, flags)
		if err != nil {
			return nil, err
		}
		logger, closer, err := logging.New(cfg.Log)
		if err != nil {
			return nil, err
		}
		slog.SetDefault(logger)
		logCloser = closer
		return cfg, nil
	}

	root.AddCommand(
		newServeCmd(load),
		newRenderCmd(load),
		newMetadataCmd(load),
		newPinataCheckCmd(load),
	)
	return root
}

type loader func(cmd *cobra.Command) (*config.Config, error)

// loadConfig は 既定値 < 設定ファイル < 環境変数 < フラグ の順に設定を重ねます。
func loadConfig(cmd *cobra.Command, flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	fs := cmd.Flags()
	if fs.Changed("port") {
		cfg.Port = flags.port
	}
	if fs.Changed("image-dir") {
		cfg.ImageDir = flags.imageDir
	}
	if fs.Changed("base-url") {
		cfg.PublicBaseURL = flags.baseURL
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if fs.Changed("pinata-mock") {
		cfg.Pinata.Mock = flags.pinataMock
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定が不正です: %w", err)
	}
	return cfg, nil
}
