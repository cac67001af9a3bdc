package domain

// Rarity はシード由来のパーセンタイルから決まるレア度です。
type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityUncommon  Rarity = "Uncommon"
	RarityRare      Rarity = "Rare"
	RarityLegendary Rarity = "Legendary"
)

// DisplayTypeBoostPercentage は OpenSea のブースト表示用 display_type です。
const DisplayTypeBoostPercentage = "boost_percentage"

// Attribute は OpenSea 形式のトレイト 1 件です。Value は数値または文字列です。
type Attribute struct {
	DisplayType string `json:"display_type,omitempty"`
	TraitType   string `json:"trait_type"`
	Value       any    `json:"value"`
}

// IPFSInfo はピン留めに成功した場合にメタデータへ付与される情報です。
// TokenURI はコントラクトの tokenURI に設定する ipfs://{metadata} です。
type IPFSInfo struct {
	Image       string `json:"image,omitempty"`
	Metadata    string `json:"metadata,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	MetadataURL string `json:"metadata_url,omitempty"`
	TokenURI    string `json:"token_uri,omitempty"`
}

// Metadata は tokenURI が返す JSON ドキュメントです。
// Image 以外は TokenID から一意に決まります。
type Metadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	ExternalURL string      `json:"external_url"`
	Attributes  []Attribute `json:"attributes"`
	IPFS        *IPFSInfo   `json:"ipfs,omitempty"`
}

// Attribute は trait_type に一致する属性を探します。
func (m *Metadata) Attribute(traitType string) (Attribute, bool) {
	for _, a := range m.Attributes {
		if a.TraitType == traitType {
			return a, true
		}
	}
	return Attribute{}, false
}
