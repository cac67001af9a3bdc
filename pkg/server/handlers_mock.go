package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type mintRequest struct {
	Address string `json:"address" form:"address"`
}

type pinRow struct {
	Hash       string `json:"ipfs_pin_hash"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Size       int    `json:"size"`
	DatePinned string `json:"date_pinned"`
}

func (s *Server) handleOwner(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"owner": s.registry.Owner().Hex()})
}

func (s *Server) handleMintPrice(c *gin.Context) {
	// wei は JavaScript の数値に収まらないので文字列で返します
	c.JSON(http.StatusOK, gin.H{"mintPrice": s.registry.MintPrice().String()})
}

func (s *Server) handleMint(c *gin.Context) {
	var req mintRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}
	if req.Address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Address is required"})
		return
	}

	id, err := s.registry.Mint(req.Address)
	if err != nil {
		writeError(c, "Failed to mint", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tokenId": id})
}

func (s *Server) handleBalanceOf(c *gin.Context) {
	n, err := s.registry.BalanceOf(c.Param("address"))
	if err != nil {
		writeError(c, "Failed to read balance", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": n})
}

func (s *Server) handleTokenOfOwnerByIndex(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Index out of bounds"})
		return
	}
	id, err := s.registry.TokenOfOwnerByIndex(c.Param("address"), index)
	if err != nil {
		writeError(c, "Failed to read token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokenId": id})
}

// handleTokenURI はミント状況に関わらず、このサーバーのメタデータ URL を返します。
func (s *Server) handleTokenURI(c *gin.Context) {
	id, ok := tokenParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokenURI": s.baseURL + metadataPath(id)})
}

func (s *Server) handleIPFS(c *gin.Context) {
	e, ok := s.mockPins.Get(c.Param("hash"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pin not found"})
		return
	}
	contentType := http.DetectContentType(e.Content)
	if e.Kind == "json" {
		contentType = "application/json"
	}
	c.Data(http.StatusOK, contentType, e.Content)
}

func (s *Server) handlePins(c *gin.Context) {
	entries := s.mockPins.List()
	rows := make([]pinRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, pinRow{
			Hash:       e.Hash,
			Name:       e.Name,
			Kind:       e.Kind,
			Size:       len(e.Content),
			DatePinned: e.Timestamp.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "rows": rows})
}
