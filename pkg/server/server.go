package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shouni/geometric-nft-kit/pkg/generator"
	"github.com/shouni/geometric-nft-kit/pkg/metrics"
	"github.com/shouni/geometric-nft-kit/pkg/pinning"
	"github.com/shouni/geometric-nft-kit/pkg/registry"
)

const shutdownTimeout = 10 * time.Second

// Server は作品画像、メタデータ、模擬コントラクト API を公開する HTTP サーバーです。
type Server struct {
	gen      generator.ArtGenerator
	registry registry.Registry
	baseURL  string

	mockPins *pinning.MockPinner
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer

	engine *gin.Engine
}

// Option は Server の任意の依存関係です。
type Option func(*Server)

// WithMockPinner は /ipfs/:hash と /api/pinata/pins を有効にします。
func WithMockPinner(p *pinning.MockPinner) Option {
	return func(s *Server) { s.mockPins = p }
}

// WithMetrics は HTTP 指標の記録と /metrics の公開を有効にします。
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// New はルーティング済みの Server を返します。baseURL は応答中の絶対 URL に使います。
func New(gen generator.ArtGenerator, reg registry.Registry, baseURL string, opts ...Option) (*Server, error) {
	if gen == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if reg == nil {
		return nil, fmt.Errorf("registry is required")
	}

	s := &Server{
		gen:      gen,
		registry: reg,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.routes()
	return s, nil
}

// Handler は http.Handler としての Server です。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run は ctx がキャンセルされるまで addr で待ち受け、その後グレースフルに停止します。
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("サーバーを起動しました", "addr", addr, "base_url", s.baseURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("サーバーが停止しました: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("サーバーを停止します", "addr", addr)
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), cors(), accessLog(), s.instrument())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if s.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	r.GET("/api/nft/:tokenId", s.handleMetadata)
	r.GET("/api/exists/:tokenId", s.handleExists)
	r.GET("/api/nfts", s.handleList)
	r.GET("/debug/image/:tokenId", s.handleDebugImage)
	r.GET("/generate-image/:tokenId", s.handleGenerate)
	r.GET("/public/nfts/images/:file", s.handleImage)

	mock := r.Group("/api/mock")
	mock.GET("/owner", s.handleOwner)
	mock.GET("/mintPrice", s.handleMintPrice)
	mock.POST("/mint", s.handleMint)
	mock.GET("/balanceOf/:address", s.handleBalanceOf)
	mock.GET("/tokenOfOwnerByIndex/:address/:index", s.handleTokenOfOwnerByIndex)
	mock.GET("/tokenURI/:tokenId", s.handleTokenURI)

	if s.mockPins != nil {
		r.GET("/ipfs/:hash", s.handleIPFS)
		r.GET("/api/pinata/pins", s.handlePins)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
	})
	return r
}
