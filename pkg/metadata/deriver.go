// Package metadata はトークン ID から OpenSea 形式のメタデータを導出します。
package metadata

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shouni/geometric-nft-kit/pkg/composer"
	"github.com/shouni/geometric-nft-kit/pkg/domain"
	"github.com/shouni/geometric-nft-kit/pkg/prng"
)

const (
	Series     = "Geometric"
	Generation = "Algorithmic"

	// DefaultExternalURL は外部ページのベース URL です。末尾に ?id={tokenId} が付きます。
	DefaultExternalURL = "https://nftpage.ondigitalocean.app/nft.html"

	rarityOffset = 0
	// 芸術値はレア度と相関しないよう別の offset から引きます
	artisticValueOffset = 1
)

const (
	TraitTokenID       = "Token ID"
	TraitSeries        = "Series"
	TraitGeneration    = "Generation"
	TraitComplexity    = "Complexity"
	TraitRarity        = "Rarity"
	TraitPatternType   = "Pattern Type"
	TraitShapeCount    = "Shape Count"
	TraitArtisticValue = "Artistic Value"
)

// ImageURLFunc はトークン ID の画像 URL を返します。ホスト先やピン留め先に依存する部分です。
type ImageURLFunc func(id domain.TokenID) string

// Deriver はメタデータを導出します。Image 以外の出力は TokenID の純関数です。
type Deriver struct {
	imageURL    ImageURLFunc
	externalURL string
}

// NewDeriver は Deriver を初期化します。externalURL が空なら DefaultExternalURL を使います。
func NewDeriver(imageURL ImageURLFunc, externalURL string) (*Deriver, error) {
	if imageURL == nil {
		return nil, fmt.Errorf("imageURL is required")
	}
	if externalURL == "" {
		externalURL = DefaultExternalURL
	}
	if _, err := url.Parse(externalURL); err != nil {
		return nil, fmt.Errorf("external_url のパースに失敗しました: %w", err)
	}
	return &Deriver{imageURL: imageURL, externalURL: externalURL}, nil
}

// LocalImageURL は {baseURL}/public/nfts/images/{id}.png を返す ImageURLFunc です。
func LocalImageURL(baseURL string) ImageURLFunc {
	base := strings.TrimRight(baseURL, "/")
	return func(id domain.TokenID) string {
		return fmt.Sprintf("%s/public/nfts/images/%d.png", base, id)
	}
}

// RarityFor は floor(rand(id, 100)) をレア度の帯に割り当てます。
func RarityFor(id domain.TokenID) domain.Rarity {
	return RarityForLevel(prng.Intn(int64(id), 100, rarityOffset))
}

// RarityForLevel は 0..99 のレベルを帯に割り当てます。
func RarityForLevel(level int) domain.Rarity {
	switch {
	case level < 50:
		return domain.RarityCommon
	case level < 80:
		return domain.RarityUncommon
	case level < 95:
		return domain.RarityRare
	default:
		return domain.RarityLegendary
	}
}

// Complexity は (id % 10) + 1 です。
func Complexity(id domain.TokenID) int64 {
	return int64(id)%10 + 1
}

// Derive は id のメタデータを返します。
func (d *Deriver) Derive(id domain.TokenID) (*domain.Metadata, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	return &domain.Metadata{
		Name:        fmt.Sprintf("Geometric NFT #%d", id),
		Description: fmt.Sprintf("A unique algorithmically generated NFT with ID %d", id),
		Image:       d.imageURL(id),
		ExternalURL: fmt.Sprintf("%s?id=%d", d.externalURL, id),
		Attributes:  Attributes(id),
	}, nil
}

// Attributes は id のトレイト一覧を固定順で返します。
// Pattern Type と Shape Count は composer と同じ引き出しを使うため、描画内容と必ず一致します。
func Attributes(id domain.TokenID) []domain.Attribute {
	return []domain.Attribute{
		{TraitType: TraitTokenID, Value: int64(id)},
		{TraitType: TraitSeries, Value: Series},
		{TraitType: TraitGeneration, Value: Generation},
		{TraitType: TraitComplexity, Value: Complexity(id)},
		{TraitType: TraitRarity, Value: string(RarityFor(id))},
		{TraitType: TraitPatternType, Value: composer.PatternFor(id).String()},
		{TraitType: TraitShapeCount, Value: composer.ShapeCountFor(id)},
		{
			DisplayType: domain.DisplayTypeBoostPercentage,
			TraitType:   TraitArtisticValue,
			Value:       prng.Intn(int64(id), 100, artisticValueOffset),
		},
	}
}
