// Package prng はトークン ID から再現可能な疑似乱数を導出します。
//
// 暗号学的な意味は持たない正弦ハッシュです。同じ (tokenID, max, offset) に対して
// どの実行でも同じ値を返すことだけを保証します。
package prng

import "math"

// Rand は [0, max) の値を返します。
//
//	seed = tokenID + offset
//	x    = sin(seed*9999 + max) * 10000
//	r    = (x - floor(x)) * max
//
// max を正弦の引数に含めるため、同じ offset でも max が異なれば別の値になります。
func Rand(tokenID int64, max, offset float64) float64 {
	seed := float64(tokenID) + offset
	x := math.Sin(seed*9999+max) * 10000
	r := (x - math.Floor(x)) * max
	// 浮動小数の丸めで max ちょうどになるのを防ぎます
	if r >= max {
		return math.Nextafter(max, 0)
	}
	return r
}

// Intn は floor(Rand(tokenID, n, offset)) を返します。結果は [0, n) です。
func Intn(tokenID int64, n int, offset float64) int {
	v := int(math.Floor(Rand(tokenID, float64(n), offset)))
	if v >= n {
		return n - 1
	}
	return v
}

// Source は 1 つのトークン ID に束縛した Rand です。
type Source struct {
	tokenID int64
}

// New は tokenID 用の Source を返します。
func New(tokenID int64) Source {
	return Source{tokenID: tokenID}
}

// Float は Rand(tokenID, max, offset) です。
func (s Source) Float(max, offset float64) float64 {
	return Rand(s.tokenID, max, offset)
}

// Int は Intn(tokenID, n, offset) です。
func (s Source) Int(n int, offset float64) int {
	return Intn(s.tokenID, n, offset)
}
