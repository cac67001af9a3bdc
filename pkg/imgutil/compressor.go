package imgutil

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"github.com/shouni/geometric-nft-kit/pkg/domain"
)

const (
	MimeTypePNG  = "image/png"
	MimeTypeJPEG = "image/jpeg"
)

// EncodePNG はラスタを PNG にエンコードします。失敗は domain.EncodeError で返します。
func EncodePNG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(buf, img); err != nil {
		return nil, &domain.EncodeError{Format: "png", Err: err}
	}
	return buf.Bytes(), nil
}

// CompressToJPEG は画像データ（PNG, GIF, JPEG等）をJPEG形式に圧縮します。
// image.Decodeがサポートするフォーマットに対応しています。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &domain.EncodeError{Format: "jpeg", Err: err}
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, &domain.EncodeError{Format: "jpeg", Err: err}
	}
	return buf.Bytes(), nil
}
