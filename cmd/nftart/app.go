package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shouni/go-http-kit/pkg/httpkit"

	"github.com/shouni/geometric-nft-kit/pkg/cache"
	"github.com/shouni/geometric-nft-kit/pkg/composer"
	"github.com/shouni/geometric-nft-kit/pkg/config"
	"github.com/shouni/geometric-nft-kit/pkg/generator"
	"github.com/shouni/geometric-nft-kit/pkg/metadata"
	"github.com/shouni/geometric-nft-kit/pkg/metrics"
	"github.com/shouni/geometric-nft-kit/pkg/pinning"
	"github.com/shouni/geometric-nft-kit/pkg/store"
)

var _ generator.Cacher = (*cache.BigCache)(nil)

// app は設定から組み立てた依存関係一式です。
type app struct {
	core     *generator.Core
	mockPins *pinning.MockPinner
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	cache    *cache.BigCache
}

func (a *app) Close() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Close()
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	fs, err := store.NewFileStore(cfg.ImageDir)
	if err != nil {
		return nil, err
	}

	deriver, err := metadata.NewDeriver(metadata.LocalImageURL(cfg.PublicBaseURL), cfg.ExternalURL)
	if err != nil {
		return nil, err
	}

	memo, err := cache.New(ctx, memoConfig(cfg.CacheTTL))
	if err != nil {
		return nil, err
	}

	a := &app{metrics: m, registry: reg, cache: memo}
	opts := []generator.Option{generator.WithMetrics(m)}

	pinner, mockPins, err := newPinner(cfg)
	if err != nil {
		_ = memo.Close()
		return nil, err
	}
	if pinner != nil {
		opts = append(opts, generator.WithPinner(pinner))
	}
	a.mockPins = mockPins

	a.core, err = generator.NewCore(composer.New(), deriver, fs, memo, cfg.CacheTTL, opts...)
	if err != nil {
		_ = memo.Close()
		return nil, err
	}
	return a, nil
}

// newPinner は設定に応じて Pinata か模擬ピン留めを返します。
// どちらも使わない場合は nil を返し、メタデータはローカル URL のままになります。
func newPinner(cfg *config.Config) (pinning.Pinner, *pinning.MockPinner, error) {
	if cfg.Pinata.Mock {
		mock := pinning.NewMockPinner(cfg.PublicBaseURL + "/ipfs/")
		slog.Info("模擬ピン留めを使用します", "gateway", cfg.PublicBaseURL+"/ipfs/")
		return mock, mock, nil
	}

	creds := cfg.Credentials()
	if !creds.Valid() {
		slog.Info("Pinata の認証情報が無いためピン留めは無効です")
		return nil, nil, nil
	}

	client, err := newPinataClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, nil, nil
}

func newPinataClient(cfg *config.Config) (*pinning.PinataClient, error) {
	client, err := pinning.NewPinataClient(
		httpkit.New(cfg.HTTPTimeout),
		cfg.Credentials(),
		pinning.WithAPIURL(cfg.Pinata.APIURL),
		pinning.WithGateway(cfg.Pinata.Gateway),
	)
	if err != nil {
		return nil, fmt.Errorf("Pinata クライアントの初期化に失敗しました: %w", err)
	}
	return client, nil
}

// memoConfig はエントリの寿命が cache_ttl を下回らないよう LifeWindow を広げます。
func memoConfig(ttl time.Duration) cache.Config {
	c := cache.DefaultConfig()
	if ttl > c.LifeWindow {
		c.LifeWindow = ttl
	}
	return c
}
