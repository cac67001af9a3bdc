package generator

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shouni/geometric-nft-kit/pkg/domain"
	"github.com/shouni/geometric-nft-kit/pkg/pinning"
)

// --- Mocks ---

type mockRenderer struct {
	calls atomic.Int32
	err   error
	// gate が設定されていれば、閉じられるまで描画を止めます
	gate chan struct{}
}

func (m *mockRenderer) Render(id domain.TokenID) (image.Image, error) {
	m.calls.Add(1)
	if m.gate != nil {
		<-m.gate
	}
	if m.err != nil {
		return nil, m.err
	}
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.NRGBA{R: uint8(id), A: 255})
	return img, nil
}

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	return val, ok
}

func (m *mockCache) Set(key string, value []byte, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func (m *mockCache) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

type mockPinner struct {
	mu        sync.Mutex
	fileCalls int
	jsonCalls int
	fileErr   error
	jsonErr   error
	lastJSON  any
}

func (m *mockPinner) PinFile(ctx context.Context, name string, data []byte) (*pinning.Pin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fileCalls++
	if m.fileErr != nil {
		return nil, m.fileErr
	}
	return &pinning.Pin{Hash: fmt.Sprintf("QmImage%d", m.fileCalls), Size: int64(len(data))}, nil
}

func (m *mockPinner) PinJSON(ctx context.Context, name string, v any) (*pinning.Pin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jsonCalls++
	m.lastJSON = v
	if m.jsonErr != nil {
		return nil, m.jsonErr
	}
	return &pinning.Pin{Hash: fmt.Sprintf("QmMeta%d", m.jsonCalls)}, nil
}

func (m *mockPinner) GatewayURL(hash string) string {
	return "https://gateway.test/ipfs/" + hash
}

type stubDeriver struct{}

func (stubDeriver) Derive(id domain.TokenID) (*domain.Metadata, error) {
	return &domain.Metadata{
		Name:  "Geometric NFT #" + id.String(),
		Image: "http://localhost:8000/public/nfts/images/" + id.String() + ".png",
	}, nil
}
