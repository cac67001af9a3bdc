package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shouni/geometric-nft-kit/pkg/domain"
	"github.com/shouni/geometric-nft-kit/pkg/generator"
	"github.com/shouni/geometric-nft-kit/pkg/registry"
)

// writeError は err を HTTP ステータスと JSON 本文に変換します。
// summary は 500 系で "error" に入れる利用者向けの要約です。
func writeError(c *gin.Context, summary string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidTokenID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid token ID"})
	case errors.Is(err, registry.ErrInvalidAddress):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address"})
	case errors.Is(err, registry.ErrIndexOutOfBounds):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Index out of bounds"})
	case errors.Is(err, generator.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported format", "message": err.Error()})
	default:
		slog.ErrorContext(c.Request.Context(), summary, "path", c.Request.URL.Path, "request_id", RequestIDFrom(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": summary, "message": err.Error()})
	}
}
