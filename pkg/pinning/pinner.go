// Package pinning は描画済み画像とメタデータを IPFS にピン留めします。
//
// PinataClient は Pinata の HTTP API を、MockPinner は資格情報なしの開発用に
// コンテンツ ID をローカルで計算するインメモリ実装を提供します。
package pinning

import (
	"context"
	"strconv"
	"strings"
)

const (
	// DefaultGateway は Pinata の公開ゲートウェイです。
	DefaultGateway = "https://gateway.pinata.cloud/ipfs/"
)

// Pin はピン留め結果です。JSON タグは Pinata の応答形式に合わせています。
type Pin struct {
	Hash      string `json:"IpfsHash"`
	Size      int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// Pinner はピン留め先の抽象です。
type Pinner interface {
	// PinFile はバイナリを name という表示名でピン留めします。
	PinFile(ctx context.Context, name string, data []byte) (*Pin, error)
	// PinJSON は v を JSON としてピン留めします。
	PinJSON(ctx context.Context, name string, v any) (*Pin, error)
	// GatewayURL はハッシュの HTTP ゲートウェイ URL を返します。
	GatewayURL(hash string) string
}

// ImageName と MetadataName は Pinata 上の表示名です。
func ImageName(tokenID int64) string    { return "NFT-" + strconv.FormatInt(tokenID, 10) + "-image" }
func MetadataName(tokenID int64) string { return "NFT-" + strconv.FormatInt(tokenID, 10) + "-metadata" }

// IPFSURI は ipfs://{hash} を返します。
func IPFSURI(hash string) string { return "ipfs://" + hash }

func gatewayURL(gateway, hash string) string {
	if !strings.HasSuffix(gateway, "/") {
		gateway += "/"
	}
	return gateway + hash
}
