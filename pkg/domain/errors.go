package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidTokenID は正の整数ではない TokenID が渡されたことを示します。
// 描画処理に入る前に返されます。
var ErrInvalidTokenID = errors.New("invalid token id")

// RenderError は描画バックエンドの失敗を TokenID と原因付きで表します。
type RenderError struct {
	TokenID TokenID
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("token %d の描画に失敗しました: %v", e.TokenID, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// EncodeError はラスタ画像のエンコード失敗を表します。
type EncodeError struct {
	Format string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("%s エンコードに失敗しました: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
