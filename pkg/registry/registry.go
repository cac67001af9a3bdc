package registry

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/shouni/geometric-nft-kit/pkg/domain"
)

const (
	// DefaultOwner はローカル開発チェーンの先頭アカウントです。
	DefaultOwner = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	// DefaultMintPriceWei は 0.01 ETH です。
	DefaultMintPriceWei = "10000000000000000"

	sampleTokens = 3
)

var (
	ErrInvalidAddress   = errors.New("invalid address")
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	errInvalidMintPrice = errors.New("invalid mint price")
)

// Registry はコントラクトの所有台帳を模したものです。
type Registry interface {
	Owner() common.Address
	MintPrice() *big.Int
	Mint(to string) (domain.TokenID, error)
	BalanceOf(addr string) (int, error)
	TokenOfOwnerByIndex(addr string, index int) (domain.TokenID, error)
}

// MemoryRegistry はプロセス内に台帳を持つ Registry です。
type MemoryRegistry struct {
	mu        sync.RWMutex
	owner     common.Address
	mintPrice *big.Int
	tokens    map[domain.TokenID]common.Address
	nextID    domain.TokenID
}

// NewMemoryRegistry は owner が所有するサンプルトークンを 3 つ持つ台帳を作ります。
func NewMemoryRegistry(owner string, mintPriceWei string) (*MemoryRegistry, error) {
	if !common.IsHexAddress(owner) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, owner)
	}
	price, ok := new(big.Int).SetString(mintPriceWei, 10)
	if !ok || price.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s", errInvalidMintPrice, mintPriceWei)
	}

	r := &MemoryRegistry{
		owner:     common.HexToAddress(owner),
		mintPrice: price,
		tokens:    make(map[domain.TokenID]common.Address),
		nextID:    1,
	}
	for i := 0; i < sampleTokens; i++ {
		r.tokens[r.nextID] = r.owner
		r.nextID++
	}
	return r, nil
}

func (r *MemoryRegistry) Owner() common.Address { return r.owner }

// MintPrice は wei 単位の価格の複製を返します。
func (r *MemoryRegistry) MintPrice() *big.Int { return new(big.Int).Set(r.mintPrice) }

// Mint は to に次の ID を割り当てます。
func (r *MemoryRegistry) Mint(to string) (domain.TokenID, error) {
	addr, err := parseAddress(to)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.tokens[id] = addr
	r.nextID++
	return id, nil
}

func (r *MemoryRegistry) BalanceOf(addr string) (int, error) {
	a, err := parseAddress(addr)
	if err != nil {
		return 0, err
	}
	return len(r.owned(a)), nil
}

// TokenOfOwnerByIndex は addr の所有トークンを ID 昇順に並べた index 番目を返します。
func (r *MemoryRegistry) TokenOfOwnerByIndex(addr string, index int) (domain.TokenID, error) {
	a, err := parseAddress(addr)
	if err != nil {
		return 0, err
	}
	owned := r.owned(a)
	if index < 0 || index >= len(owned) {
		return 0, fmt.Errorf("%w: %d", ErrIndexOutOfBounds, index)
	}
	return owned[index], nil
}

func (r *MemoryRegistry) owned(a common.Address) []domain.TokenID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []domain.TokenID
	for id, owner := range r.tokens {
		if owner == a {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// parseAddress は大文字小文字を区別せずにアドレスを解釈します。
func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}
