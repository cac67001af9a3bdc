// Package cache は generator.Cacher の BigCache 実装を提供します。
package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/allegro/bigcache/v3"
)

// 値の先頭 8 バイトに有効期限 (UnixNano、0 は無期限) を埋め込みます。
const expiryHeaderSize = 8

// Config は BigCache の設定です。
type Config struct {
	// LifeWindow はエントリの最大寿命です。個別 TTL はこれを超えられません。
	LifeWindow time.Duration
	// CleanWindow は期限切れエントリの掃除間隔です。
	CleanWindow time.Duration
	// HardMaxCacheSizeMB は 0 で無制限です。
	HardMaxCacheSizeMB int
}

// DefaultConfig は既定値です。
func DefaultConfig() Config {
	return Config{
		LifeWindow:         24 * time.Hour,
		CleanWindow:        10 * time.Minute,
		HardMaxCacheSizeMB: 64,
	}
}

// BigCache はピン留め結果などをメモリに保持するキャッシュです。
type BigCache struct {
	cache *bigcache.BigCache
	now   func() time.Time
}

// New は BigCache を初期化します。
func New(ctx context.Context, cfg Config) (*BigCache, error) {
	if cfg.LifeWindow <= 0 {
		return nil, fmt.Errorf("LifeWindow must be positive")
	}

	bc := bigcache.DefaultConfig(cfg.LifeWindow)
	bc.CleanWindow = cfg.CleanWindow
	bc.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	bc.Shards = 64
	bc.MaxEntriesInWindow = 10_000
	bc.MaxEntrySize = 2048

	c, err := bigcache.New(ctx, bc)
	if err != nil {
		return nil, fmt.Errorf("BigCacheの作成に失敗しました: %w", err)
	}
	return &BigCache{cache: c, now: time.Now}, nil
}

// Get はキーに紐づく値を返します。期限切れなら削除して未ヒット扱いにします。
func (c *BigCache) Get(key string) ([]byte, bool) {
	raw, err := c.cache.Get(key)
	if err != nil {
		if !errors.Is(err, bigcache.ErrEntryNotFound) {
			slog.Warn("キャッシュの取得に失敗しました", "key", key, "error", err)
		}
		return nil, false
	}
	if len(raw) < expiryHeaderSize {
		_ = c.cache.Delete(key)
		return nil, false
	}

	expiry := int64(binary.BigEndian.Uint64(raw[:expiryHeaderSize]))
	if expiry != 0 && c.now().UnixNano() >= expiry {
		_ = c.cache.Delete(key)
		return nil, false
	}

	// bigcache の内部バッファを外に出さないようコピーします
	out := make([]byte, len(raw)-expiryHeaderSize)
	copy(out, raw[expiryHeaderSize:])
	return out, true
}

// Set は値を保存します。ttl が 0 以下なら LifeWindow まで保持します。
func (c *BigCache) Set(key string, value []byte, ttl time.Duration) {
	buf := make([]byte, expiryHeaderSize+len(value))
	if ttl > 0 {
		binary.BigEndian.PutUint64(buf, uint64(c.now().Add(ttl).UnixNano()))
	}
	copy(buf[expiryHeaderSize:], value)

	if err := c.cache.Set(key, buf); err != nil {
		slog.Warn("キャッシュの保存に失敗しました", "key", key, "error", err)
	}
}

// Delete はキーを削除します。存在しなくてもエラーにしません。
func (c *BigCache) Delete(key string) {
	if err := c.cache.Delete(key); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		slog.Warn("キャッシュの削除に失敗しました", "key", key, "error", err)
	}
}

// Len は保持しているエントリ数です。

// Close はバックグラウンドの掃除処理を止めます。
func (c *BigCache) Close() error {
	return c.cache.Close()
}
