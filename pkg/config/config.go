package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shouni/geometric-nft-kit/pkg/pinning"
	"github.com/shouni/geometric-nft-kit/pkg/registry"
)

// Config はサーバーと CLI の設定です。
type Config struct {
	Port          int            `yaml:"port"`
	PublicBaseURL string         `yaml:"public_base_url"`
	ExternalURL   string         `yaml:"external_url"`
	ImageDir      string         `yaml:"image_dir"`
	CacheTTL      time.Duration  `yaml:"cache_ttl"`
	HTTPTimeout   time.Duration  `yaml:"http_timeout"`
	Pinata        PinataConfig   `yaml:"pinata"`
	Registry      RegistryConfig `yaml:"registry"`
	Log           LogConfig      `yaml:"log"`
}

// PinataConfig はピン留め先の設定です。認証情報が無ければピン留めしません。
// Mock が true なら Pinata の代わりにプロセス内の MockPinner を使います。
type PinataConfig struct {
	JWT       string `yaml:"jwt"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Gateway   string `yaml:"gateway"`
	APIURL    string `yaml:"api_url"`
	Mock      bool   `yaml:"mock"`
}

// RegistryConfig は模擬ミント台帳の初期値です。
type RegistryConfig struct {
	Owner        string `yaml:"owner"`
	MintPriceWei string `yaml:"mint_price_wei"`
}

// LogConfig はログ出力の設定です。File が空なら標準エラーのみに出力します。
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default は開発用の既定値です。
func Default() *Config {
	return &Config{
		Port:          8000,
		PublicBaseURL: "http://localhost:8000",
		ExternalURL:   "https://nftpage.ondigitalocean.app/nft.html",
		ImageDir:      "public/nfts/images",
		CacheTTL:      24 * time.Hour,
		HTTPTimeout:   30 * time.Second,
		Pinata: PinataConfig{
			Gateway: pinning.DefaultGateway,
			APIURL:  pinning.DefaultPinataAPI,
		},
		Registry: RegistryConfig{
			Owner:        registry.DefaultOwner,
			MintPriceWei: registry.DefaultMintPriceWei,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load は既定値に YAML ファイル (path が空なら無し) と環境変数を順に重ねます。
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("設定ファイルの解析に失敗しました: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT が数値ではありません: %w", err)
		}
		c.Port = port
	}
	str("PUBLIC_BASE_URL", &c.PublicBaseURL)
	str("EXTERNAL_URL", &c.ExternalURL)
	str("IMAGE_DIR", &c.ImageDir)
	str("PINATA_JWT", &c.Pinata.JWT)
	str("PINATA_API_KEY", &c.Pinata.APIKey)
	str("PINATA_API_SECRET", &c.Pinata.APISecret)
	str("PINATA_GATEWAY", &c.Pinata.Gateway)
	str("PINATA_API_URL", &c.Pinata.APIURL)
	if v, ok := lookup("PINATA_MOCK"); ok && v != "" {
		mock, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PINATA_MOCK が真偽値ではありません: %w", err)
		}
		c.Pinata.Mock = mock
	}
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("LOG_FILE", &c.Log.File)
	return nil
}

// Validate は起動前に設定の整合性を確認します。
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port は 1..65535 の範囲で指定してください: %d", c.Port))
	}
	if err := validateHTTPURL("public_base_url", c.PublicBaseURL); err != nil {
		errs = append(errs, err)
	}
	if c.ExternalURL != "" {
		if err := validateHTTPURL("external_url", c.ExternalURL); err != nil {
			errs = append(errs, err)
		}
	}
	if err := validateHTTPURL("pinata.gateway", c.Pinata.Gateway); err != nil {
		errs = append(errs, err)
	}
	if err := validateHTTPURL("pinata.api_url", c.Pinata.APIURL); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.ImageDir) == "" {
		errs = append(errs, errors.New("image_dir is required"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format は text か json です: %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Credentials は Pinata 認証情報を返します。
func (c *Config) Credentials() pinning.Credentials {
	return pinning.Credentials{
		JWT:       c.Pinata.JWT,
		APIKey:    c.Pinata.APIKey,
		APISecret: c.Pinata.APISecret,
	}
}

// Addr は listen アドレスです。
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func validateHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s は http(s) の URL で指定してください: %q", field, raw)
	}
	return nil
}
