package generator

import "errors"

const (
	JPEGQuality = 75

	FormatPNG  = "png"
	FormatJPEG = "jpeg"

	cacheKeyPinImage    = "pin_image:"
	cacheKeyPinMetadata = "pin_metadata:"

	cacheOutcomeHit    = "hit"
	cacheOutcomeMiss   = "miss"
	cacheOutcomeForced = "forced"

	pinKindImage    = "image"
	pinKindMetadata = "metadata"
)

// ErrPinningDisabled は Pinner が設定されていないことを示します。
var ErrPinningDisabled = errors.New("pinning is not configured")

// ErrUnsupportedFormat は ImageBytes に未対応の形式が指定されたことを示します。
var ErrUnsupportedFormat = errors.New("unsupported image format")
