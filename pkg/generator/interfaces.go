package generator

import (
	"context"
	"image"
	"time"

	"github.com/shouni/geometric-nft-kit/pkg/domain"
)

// ArtRenderer はトークン ID を 500x500 のラスタに描画します。
type ArtRenderer interface {
	Render(id domain.TokenID) (image.Image, error)
}

// MetadataDeriver はトークン ID からメタデータを導出します。
type MetadataDeriver interface {
	Derive(id domain.TokenID) (*domain.Metadata, error)
}

// ImageStore は描画済み PNG をトークン ID 単位で保持します。
type ImageStore interface {
	Exists(id domain.TokenID) bool
	Path(id domain.TokenID) string
	Read(id domain.TokenID) ([]byte, error)
	Write(id domain.TokenID, data []byte) error
	List() ([]domain.TokenID, error)
}

// Cacher は、ピン留め結果などをキャッシュするためのインターフェースです。
type Cacher interface {
	// Get は、指定されたキーに紐づくアイテムを取得します。
	Get(key string) ([]byte, bool)
	// Set は、指定されたキーと値、有効期限でアイテムを保存します。
	Set(key string, value []byte, d time.Duration)
	// Delete は、指定されたキーのアイテムを削除します。
	Delete(key string)
}

// ArtGenerator は HTTP 層や CLI が利用する統合窓口です。
type ArtGenerator interface {
	// EnsureImage は画像を用意します。force が false なら既存キャッシュを優先します。
	EnsureImage(ctx context.Context, id domain.TokenID, force bool) (*domain.ImageResponse, error)
	// ImageBytes は format ("png" または "jpeg") で画像を返します。
	ImageBytes(ctx context.Context, id domain.TokenID, format string) (*domain.ImageResponse, error)
	// Metadata は画像を用意し、設定があればピン留めしてメタデータを返します。
	Metadata(ctx context.Context, id domain.TokenID) (*domain.Metadata, error)
	Exists(id domain.TokenID) bool
	ImagePath(id domain.TokenID) string
	List() ([]domain.TokenID, error)
}
