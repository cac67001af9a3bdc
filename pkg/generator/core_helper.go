package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/geometric-nft-kit/pkg/domain"
	"github.com/shouni/geometric-nft-kit/pkg/imgutil"
	"github.com/shouni/geometric-nft-kit/pkg/pinning"
	"github.com/shouni/geometric-nft-kit/pkg/store"
)

// normalizeFormat は ImageBytes の format を FormatPNG か FormatJPEG に揃えます。
func normalizeFormat(format string) (string, error) {
	switch format {
	case "", FormatPNG:
		return FormatPNG, nil
	case FormatJPEG, "jpg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func (c *Core) readCached(id domain.TokenID) (*domain.ImageResponse, bool) {
	if !c.store.Exists(id) {
		return nil, false
	}
	data, err := c.store.Read(id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("キャッシュ画像の読み込みに失敗しました。再生成します", "token_id", int64(id), "error", err)
		}
		return nil, false
	}
	return &domain.ImageResponse{
		TokenID:  id,
		Data:     data,
		MimeType: imgutil.MimeTypePNG,
		Path:     c.store.Path(id),
		Cached:   true,
	}, true
}

func (c *Core) renderAndStore(ctx context.Context, id domain.TokenID) (*domain.ImageResponse, error) {
	start := time.Now()
	resp, err := c.render(id)
	c.metrics.ObserveRender(time.Since(start).Seconds(), err)
	if err != nil {
		slog.ErrorContext(ctx, "作品の生成に失敗しました", "token_id", int64(id), "error", err)
		return nil, err
	}

	slog.InfoContext(ctx, "作品を生成しました", "token_id", int64(id), "bytes", len(resp.Data), "path", resp.Path)
	return resp, nil
}

func (c *Core) render(id domain.TokenID) (*domain.ImageResponse, error) {
	img, err := c.renderer.Render(id)
	if err != nil {
		var re *domain.RenderError
		if errors.Is(err, domain.ErrInvalidTokenID) || errors.As(err, &re) {
			return nil, err
		}
		return nil, &domain.RenderError{TokenID: id, Err: err}
	}

	data, err := imgutil.EncodePNG(img)
	if err != nil {
		return nil, err
	}
	if err := c.store.Write(id, data); err != nil {
		return nil, err
	}

	return &domain.ImageResponse{
		TokenID:  id,
		Data:     data,
		MimeType: imgutil.MimeTypePNG,
		Path:     c.store.Path(id),
	}, nil
}

// pinMetadata は画像ハッシュごとにメタデータのピン留め結果をキャッシュします。
func (c *Core) pinMetadata(ctx context.Context, id domain.TokenID, imageHash string, m *domain.Metadata) (string, error) {
	cacheKey := cacheKeyPinMetadata + id.String() + ":" + imageHash
	if hash, ok := c.cachedString(cacheKey); ok {
		return hash, nil
	}

	// ipfs ブロックはピン留め後に付与するので含めません
	pinned := *m
	pinned.IPFS = nil
	pin, err := c.pinner.PinJSON(ctx, pinning.MetadataName(int64(id)), &pinned)
	c.metrics.ObservePin(pinKindMetadata, err)
	if err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "メタデータをIPFSにピン留めしました", "token_id", int64(id), "hash", pin.Hash)
	c.setCachedString(cacheKey, pin.Hash)
	return pin.Hash, nil
}

// forgetPins は強制再生成後に画像のピン留め結果を破棄します。
func (c *Core) forgetPins(id domain.TokenID) {
	if c.cache == nil {
		return
	}
	c.cache.Delete(cacheKeyPinImage + id.String())
}

func (c *Core) cachedString(key string) (string, bool) {
	if c.cache == nil {
		return "", false
	}
	v, ok := c.cache.Get(key)
	if !ok || len(v) == 0 {
		return "", false
	}
	return string(v), true
}

func (c *Core) setCachedString(key, value string) {
	if c.cache == nil {
		return
	}
	c.cache.Set(key, []byte(value), c.expiration)
}
