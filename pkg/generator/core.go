package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/shouni/geometric-nft-kit/pkg/domain"
	"github.com/shouni/geometric-nft-kit/pkg/imgutil"
	"github.com/shouni/geometric-nft-kit/pkg/metrics"
	"github.com/shouni/geometric-nft-kit/pkg/pinning"
)

// Core は描画、画像キャッシュ、メタデータ導出、ピン留めを束ねる基盤クラスです。
type Core struct {
	renderer   ArtRenderer
	deriver    MetadataDeriver
	store      ImageStore
	cache      Cacher
	expiration time.Duration
	pinner     pinning.Pinner
	metrics    *metrics.Metrics

	// 同じトークンの並行描画を 1 回にまとめます
	renders singleflight.Group
}

// Option は Core の任意の依存関係です。
type Option func(*Core)

// WithPinner はピン留め先を設定します。未設定ならローカル URL のみを返します。
func WithPinner(p pinning.Pinner) Option {
	return func(c *Core) { c.pinner = p }
}

// WithMetrics は指標の記録先を設定します。
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Core) { c.metrics = m }
}

// NewCore は依存関係を注入して Core を初期化します。
func NewCore(renderer ArtRenderer, deriver MetadataDeriver, store ImageStore, cache Cacher, cacheTTL time.Duration, opts ...Option) (*Core, error) {
	if renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}
	if deriver == nil {
		return nil, fmt.Errorf("deriver is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	// cache は nil を許容（キャッシュなし動作）

	c := &Core{
		renderer:   renderer,
		deriver:    deriver,
		store:      store,
		cache:      cache,
		expiration: cacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// EnsureImage は id の PNG を用意します。
// force が false で既にファイルがあれば再描画しません。force が true なら必ず描き直します。
func (c *Core) EnsureImage(ctx context.Context, id domain.TokenID, force bool) (*domain.ImageResponse, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	if !force {
		if resp, ok := c.readCached(id); ok {
			c.metrics.ObserveCache(cacheOutcomeHit)
			return resp, nil
		}
		c.metrics.ObserveCache(cacheOutcomeMiss)
	} else {
		c.metrics.ObserveCache(cacheOutcomeForced)
	}

	key := id.String()
	if force {
		key += ":force"
	}
	v, err, _ := c.renders.Do(key, func() (any, error) {
		// 待っている間に別のリクエストが描き終えていればそれを使います
		if !force {
			if resp, ok := c.readCached(id); ok {
				return resp, nil
			}
		}
		return c.renderAndStore(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	if force {
		c.forgetPins(id)
	}

	// singleflight の結果は共有されるので呼び出し元ごとに複製して返します
	resp := *v.(*domain.ImageResponse)
	return &resp, nil
}

// ImageBytes は format で画像を返します。JPEG はキャッシュ済み PNG から都度変換します。
// 未対応の format は描画前に ErrUnsupportedFormat になります。
func (c *Core) ImageBytes(ctx context.Context, id domain.TokenID, format string) (*domain.ImageResponse, error) {
	format, err := normalizeFormat(format)
	if err != nil {
		return nil, err
	}

	resp, err := c.EnsureImage(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if format == FormatPNG {
		return resp, nil
	}

	data, err := imgutil.CompressToJPEG(resp.Data, JPEGQuality)
	if err != nil {
		return nil, err
	}
	resp.Data = data
	resp.MimeType = imgutil.MimeTypeJPEG
	return resp, nil
}

// PinImage は id の画像をピン留めしてハッシュを返します。結果はキャッシュされます。
func (c *Core) PinImage(ctx context.Context, id domain.TokenID) (string, error) {
	if c.pinner == nil {
		return "", ErrPinningDisabled
	}

	cacheKey := cacheKeyPinImage + id.String()
	if hash, ok := c.cachedString(cacheKey); ok {
		return hash, nil
	}

	img, err := c.EnsureImage(ctx, id, false)
	if err != nil {
		return "", err
	}

	pin, err := c.pinner.PinFile(ctx, pinning.ImageName(int64(id)), img.Data)
	c.metrics.ObservePin(pinKindImage, err)
	if err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "画像をIPFSにピン留めしました", "token_id", int64(id), "hash", pin.Hash)
	c.setCachedString(cacheKey, pin.Hash)
	return pin.Hash, nil
}

// Metadata は id のメタデータを返します。
// 画像が無ければ先に描画し、Pinner があれば画像とメタデータをピン留めします。
// ピン留めの失敗はログに残してローカル URL のまま続行します。
func (c *Core) Metadata(ctx context.Context, id domain.TokenID) (*domain.Metadata, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if _, err := c.EnsureImage(ctx, id, false); err != nil {
		return nil, err
	}

	m, err := c.deriver.Derive(id)
	if err != nil {
		return nil, err
	}
	defer c.metrics.ObserveMetadata()

	if c.pinner == nil {
		return m, nil
	}

	imageHash, err := c.PinImage(ctx, id)
	if err != nil {
		slog.WarnContext(ctx, "画像のピン留めに失敗しました。ローカルURLで続行します", "token_id", int64(id), "error", err)
		return m, nil
	}
	m.Image = c.pinner.GatewayURL(imageHash)

	metaHash, err := c.pinMetadata(ctx, id, imageHash, m)
	if err != nil {
		slog.WarnContext(ctx, "メタデータのピン留めに失敗しました", "token_id", int64(id), "error", err)
		return m, nil
	}

	m.IPFS = &domain.IPFSInfo{
		Image:       imageHash,
		Metadata:    metaHash,
		ImageURL:    c.pinner.GatewayURL(imageHash),
		MetadataURL: c.pinner.GatewayURL(metaHash),
		TokenURI:    pinning.IPFSURI(metaHash),
	}
	return m, nil
}

// Exists は画像キャッシュの有無を返します。
func (c *Core) Exists(id domain.TokenID) bool {
	return id.Validate() == nil && c.store.Exists(id)
}

// ImagePath は画像キャッシュのパスです。
func (c *Core) ImagePath(id domain.TokenID) string {
	return c.store.Path(id)
}

// List は描画済みのトークン ID を返します。
func (c *Core) List() ([]domain.TokenID, error) {
	return c.store.List()
}
