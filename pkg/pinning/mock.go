package pinning

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Entry は MockPinner が保持するピン 1 件です。
type Entry struct {
	Hash      string
	Name      string
	Kind      string // "file" または "json"
	Content   []byte
	Timestamp time.Time
}

// MockPinner は資格情報なしで動くインメモリのピン留め実装です。
// ハッシュは内容の sha2-256 から作る CIDv1 (raw) なので、同じ内容は同じハッシュになります。
type MockPinner struct {
	mu      sync.RWMutex
	pins    map[string]*Entry
	gateway string
	now     func() time.Time
}

// NewMockPinner は MockPinner を返します。gateway は /ipfs/ で終わるベース URL です。
func NewMockPinner(gateway string) *MockPinner {
	if gateway == "" {
		gateway = DefaultGateway
	}
	return &MockPinner{
		pins:    make(map[string]*Entry),
		gateway: gateway,
		now:     time.Now,
	}
}

// ContentID は data の CIDv1 を返します。
func ContentID(data []byte) (string, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", fmt.Errorf("multihashの計算に失敗しました: %w", err)
	}
	return cid.NewCidV1(cid.Raw, mh).String(), nil
}

func (m *MockPinner) PinFile(ctx context.Context, name string, data []byte) (*Pin, error) {
	return m.pin(name, "file", data)
}

func (m *MockPinner) PinJSON(ctx context.Context, name string, v any) (*Pin, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("JSONのエンコードに失敗しました: %w", err)
	}
	return m.pin(name, "json", data)
}

func (m *MockPinner) GatewayURL(hash string) string {
	return gatewayURL(m.gateway, hash)
}

// Get はハッシュに対応するピンを返します。不正な CID は見つからない扱いです。
func (m *MockPinner) Get(hash string) (*Entry, bool) {
	if _, err := cid.Decode(hash); err != nil {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.pins[hash]
	return e, ok
}

// List はピンをピン留め時刻順に返します。
func (m *MockPinner) List() []*Entry {
	m.mu.RLock()
	out := make([]*Entry, 0, len(m.pins))
	for _, e := range m.pins {
		out = append(out, e)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Hash < out[j].Hash
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

func (m *MockPinner) pin(name, kind string, data []byte) (*Pin, error) {
	hash, err := ContentID(data)
	if err != nil {
		return nil, err
	}
	ts := m.now().UTC()

	content := make([]byte, len(data))
	copy(content, data)

	m.mu.Lock()
	m.pins[hash] = &Entry{Hash: hash, Name: name, Kind: kind, Content: content, Timestamp: ts}
	m.mu.Unlock()

	return &Pin{Hash: hash, Size: int64(len(data)), Timestamp: ts.Format(time.RFC3339)}, nil
}
