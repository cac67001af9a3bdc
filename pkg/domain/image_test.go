package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTokenID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    TokenID
		wantErr bool
	}{
		{"正の整数", "23", 23, false},
		{"前後の空白は無視する", " 7 ", 7, false},
		{"整数値の小数表記", "3.0", 3, false},
		{"ゼロ", "0", 0, true},
		{"負数", "-5", 0, true},
		{"小数", "1.5", 0, true},
		{"数値でない", "abc", 0, true},
		{"空文字", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTokenID(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTokenID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenIDFromFloat(t *testing.T) {
	_, err := TokenIDFromFloat(1.5)
	assert.ErrorIs(t, err, ErrInvalidTokenID)

	_, err = TokenIDFromFloat(-5)
	assert.ErrorIs(t, err, ErrInvalidTokenID)

	id, err := TokenIDFromFloat(42)
	require.NoError(t, err)
	assert.Equal(t, TokenID(42), id)
}

func TestRenderError_Unwrap(t *testing.T) {
	cause := errors.New("backend down")
	err := error(&RenderError{TokenID: 9, Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "token 9")

	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, TokenID(9), re.TokenID)
}

func TestEnumNames(t *testing.T) {
	assert.Equal(t, "Circles", PatternCircles.String())
	assert.Equal(t, "Hexagon", ShapeHexagon.String())
	assert.Equal(t, "Unknown", PatternType(9).String())
}
