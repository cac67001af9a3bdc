package domain

import (
	"math"
	"strconv"
	"strings"
)

// TokenID は NFT 1 枚を識別する正の整数です。生成処理の唯一の決定論的入力になります。
type TokenID int64

// Validate は TokenID が正の整数であることを確認します。
func (id TokenID) Validate() error {
	if id <= 0 {
		return ErrInvalidTokenID
	}
	return nil
}

// String は 10 進表記を返します。
func (id TokenID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseTokenID は URL パス等の文字列を TokenID に変換します。
// "1.5" や "0"、"-5"、空文字はすべて ErrInvalidTokenID になります。
func ParseTokenID(raw string) (TokenID, error) {
	s := strings.TrimSpace(raw)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// 小数表記 ("1.0" など) が整数値を表すなら受け付けます
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, ErrInvalidTokenID
		}
		return TokenIDFromFloat(f)
	}
	id := TokenID(n)
	if err := id.Validate(); err != nil {
		return 0, err
	}
	return id, nil
}

// TokenIDFromFloat は JSON 数値など float64 で届いた ID を検証して変換します。
func TokenIDFromFloat(f float64) (TokenID, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f > math.MaxInt64 {
		return 0, ErrInvalidTokenID
	}
	id := TokenID(int64(f))
	if err := id.Validate(); err != nil {
		return 0, err
	}
	return id, nil
}
