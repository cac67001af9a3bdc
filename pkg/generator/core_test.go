package generator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/geometric-nft-kit/pkg/composer"
	"github.com/shouni/geometric-nft-kit/pkg/domain"
	"github.com/shouni/geometric-nft-kit/pkg/imgutil"
	"github.com/shouni/geometric-nft-kit/pkg/metadata"
	"github.com/shouni/geometric-nft-kit/pkg/store"
)

// 注意: mockRenderer, mockCache, mockPinner, stubDeriver は
// mocks_test.go で定義されています。

func newTestCore(t *testing.T, r ArtRenderer, cache Cacher, opts ...Option) (*Core, *store.FileStore) {
	t.Helper()
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	core, err := NewCore(r, stubDeriver{}, fs, cache, time.Hour, opts...)
	require.NoError(t, err)
	return core, fs
}

func TestNewCore_RequiresDependencies(t *testing.T) {
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = NewCore(nil, stubDeriver{}, fs, nil, 0)
	assert.ErrorContains(t, err, "renderer is required")
	_, err = NewCore(&mockRenderer{}, nil, fs, nil, 0)
	assert.ErrorContains(t, err, "deriver is required")
	_, err = NewCore(&mockRenderer{}, stubDeriver{}, nil, nil, 0)
	assert.ErrorContains(t, err, "store is required")

	// cache は nil でも構わないのだ
	_, err = NewCore(&mockRenderer{}, stubDeriver{}, fs, nil, 0)
	assert.NoError(t, err)
}

func TestCore_EnsureImage(t *testing.T) {
	ctx := context.Background()

	t.Run("初回は描画し、2回目はキャッシュを返す", func(t *testing.T) {
		r := &mockRenderer{}
		core, fs := newTestCore(t, r, nil)

		first, err := core.EnsureImage(ctx, 5, false)
		require.NoError(t, err)
		assert.False(t, first.Cached)
		assert.Equal(t, imgutil.MimeTypePNG, first.MimeType)
		assert.Equal(t, fs.Path(5), first.Path)
		assert.True(t, fs.Exists(5))

		second, err := core.EnsureImage(ctx, 5, false)
		require.NoError(t, err)
		assert.True(t, second.Cached)
		assert.Equal(t, first.Data, second.Data)
		assert.EqualValues(t, 1, r.calls.Load())
	})

	t.Run("force なら既存ファイルがあっても描き直す", func(t *testing.T) {
		r := &mockRenderer{}
		cache := newMockCache()
		core, _ := newTestCore(t, r, cache)

		_, err := core.EnsureImage(ctx, 8, false)
		require.NoError(t, err)
		cache.Set(cacheKeyPinImage+"8", []byte("QmOld"), time.Hour)

		resp, err := core.EnsureImage(ctx, 8, true)
		require.NoError(t, err)
		assert.False(t, resp.Cached)
		assert.EqualValues(t, 2, r.calls.Load())

		// 描き直した画像に古いピン留め結果を使わないのだ
		_, ok := cache.Get(cacheKeyPinImage + "8")
		assert.False(t, ok)
	})

	t.Run("不正な ID は描画前に拒否される", func(t *testing.T) {
		r := &mockRenderer{}
		core, _ := newTestCore(t, r, nil)

		for _, id := range []domain.TokenID{0, -5} {
			_, err := core.EnsureImage(ctx, id, false)
			assert.ErrorIs(t, err, domain.ErrInvalidTokenID)
		}
		assert.EqualValues(t, 0, r.calls.Load())
	})

	t.Run("描画失敗は RenderError になりファイルは残らない", func(t *testing.T) {
		cause := errors.New("canvas exploded")
		core, fs := newTestCore(t, &mockRenderer{err: cause}, nil)

		_, err := core.EnsureImage(ctx, 3, false)
		var re *domain.RenderError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, domain.TokenID(3), re.TokenID)
		assert.ErrorIs(t, err, cause)
		assert.False(t, fs.Exists(3))
	})

	t.Run("同じ ID の並行リクエストは 1 回だけ描画する", func(t *testing.T) {
		r := &mockRenderer{gate: make(chan struct{})}
		core, _ := newTestCore(t, r, nil)

		const n = 8
		var wg sync.WaitGroup
		results := make([][]byte, n)
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				resp, err := core.EnsureImage(ctx, 11, false)
				errs[i] = err
				if err == nil {
					results[i] = resp.Data
				}
			}(i)
		}
		time.Sleep(50 * time.Millisecond)
		close(r.gate)
		wg.Wait()

		for i := 0; i < n; i++ {
			require.NoError(t, errs[i])
			assert.Equal(t, results[0], results[i])
		}
		assert.EqualValues(t, 1, r.calls.Load())
	})
}

func TestCore_ImageBytes(t *testing.T) {
	ctx := context.Background()
	core, _ := newTestCore(t, composer.New(), nil)

	png, err := core.ImageBytes(ctx, 2, FormatPNG)
	require.NoError(t, err)
	assert.Equal(t, imgutil.MimeTypePNG, png.MimeType)

	jpg, err := core.ImageBytes(ctx, 2, FormatJPEG)
	require.NoError(t, err)
	assert.Equal(t, imgutil.MimeTypeJPEG, jpg.MimeType)
	assert.Equal(t, []byte{0xFF, 0xD8}, jpg.Data[:2])

	_, err = core.ImageBytes(ctx, 2, "gif")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestCore_ImageBytes_RejectsFormatBeforeRender(t *testing.T) {
	r := &mockRenderer{}
	core, fs := newTestCore(t, r, nil)

	_, err := core.ImageBytes(context.Background(), 31, "gif")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	// 未対応の形式では描画もキャッシュもしないのだ
	assert.EqualValues(t, 0, r.calls.Load())
	assert.False(t, fs.Exists(31))
}

func TestCore_Metadata(t *testing.T) {
	ctx := context.Background()

	t.Run("Pinner がなければローカル URL のまま", func(t *testing.T) {
		core, fs := newTestCore(t, &mockRenderer{}, nil)

		m, err := core.Metadata(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8000/public/nfts/images/4.png", m.Image)
		assert.Nil(t, m.IPFS)
		// メタデータの前に画像が用意されているのだ
		assert.True(t, fs.Exists(4))
	})

	t.Run("Pinner があればゲートウェイ URL と ipfs 情報を返す", func(t *testing.T) {
		p := &mockPinner{}
		core, _ := newTestCore(t, &mockRenderer{}, newMockCache(), WithPinner(p))

		m, err := core.Metadata(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, "https://gateway.test/ipfs/QmImage1", m.Image)
		require.NotNil(t, m.IPFS)
		assert.Equal(t, "QmImage1", m.IPFS.Image)
		assert.Equal(t, "QmMeta1", m.IPFS.Metadata)
		assert.Equal(t, "https://gateway.test/ipfs/QmMeta1", m.IPFS.MetadataURL)
		assert.Equal(t, "ipfs://QmMeta1", m.IPFS.TokenURI)

		// ピン留めした JSON には ipfs ブロックを含めない
		pinned, ok := p.lastJSON.(*domain.Metadata)
		require.True(t, ok)
		assert.Nil(t, pinned.IPFS)

		_, err = core.Metadata(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, 1, p.fileCalls, "2回目はキャッシュされたハッシュを使う")
		assert.Equal(t, 1, p.jsonCalls)
	})

	t.Run("画像のピン留めに失敗してもエラーにしない", func(t *testing.T) {
		p := &mockPinner{fileErr: errors.New("pinata unavailable")}
		core, _ := newTestCore(t, &mockRenderer{}, nil, WithPinner(p))

		m, err := core.Metadata(ctx, 6)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8000/public/nfts/images/6.png", m.Image)
		assert.Nil(t, m.IPFS)
		assert.Equal(t, 0, p.jsonCalls)
	})

	t.Run("メタデータのピン留めだけ失敗した場合は画像 URL のみ差し替える", func(t *testing.T) {
		p := &mockPinner{jsonErr: errors.New("quota exceeded")}
		core, _ := newTestCore(t, &mockRenderer{}, nil, WithPinner(p))

		m, err := core.Metadata(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "https://gateway.test/ipfs/QmImage1", m.Image)
		assert.Nil(t, m.IPFS)
	})

	t.Run("描画に失敗したらメタデータも返さない", func(t *testing.T) {
		core, _ := newTestCore(t, &mockRenderer{err: errors.New("boom")}, nil)

		_, err := core.Metadata(ctx, 9)
		var re *domain.RenderError
		assert.ErrorAs(t, err, &re)
	})
}

func TestCore_PinImage_Disabled(t *testing.T) {
	core, _ := newTestCore(t, &mockRenderer{}, nil)

	_, err := core.PinImage(context.Background(), 1)
	assert.ErrorIs(t, err, ErrPinningDisabled)
}

func TestCore_ExistsAndList(t *testing.T) {
	ctx := context.Background()
	core, _ := newTestCore(t, &mockRenderer{}, nil)

	assert.False(t, core.Exists(12))
	assert.False(t, core.Exists(0))

	for _, id := range []domain.TokenID{12, 3} {
		_, err := core.EnsureImage(ctx, id, false)
		require.NoError(t, err)
	}

	assert.True(t, core.Exists(12))
	ids, err := core.List()
	require.NoError(t, err)
	assert.Equal(t, []domain.TokenID{3, 12}, ids)
}

func TestCore_WithRealDeriver(t *testing.T) {
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	d, err := metadata.NewDeriver(metadata.LocalImageURL("http://localhost:8000"), "")
	require.NoError(t, err)
	core, err := NewCore(composer.New(), d, fs, nil, 0)
	require.NoError(t, err)

	m, err := core.Metadata(context.Background(), 1)
	require.NoError(t, err)

	pattern, ok := m.Attribute(metadata.TraitPatternType)
	require.True(t, ok)
	assert.Equal(t, composer.PatternFor(1).String(), pattern.Value)
}
