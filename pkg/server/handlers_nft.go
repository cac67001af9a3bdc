package server

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shouni/geometric-nft-kit/pkg/domain"
)

const imageRoute = "/public/nfts/images/"

type nftEntry struct {
	TokenID     domain.TokenID `json:"tokenId"`
	ImageURL    string         `json:"imageUrl"`
	MetadataURL string         `json:"metadataUrl"`
}

func imagePath(id domain.TokenID) string    { return imageRoute + id.String() + ".png" }
func metadataPath(id domain.TokenID) string { return "/api/nft/" + id.String() }

// tokenParam はパスの :tokenId を検証します。不正なら 400 を書いて false を返します。
func tokenParam(c *gin.Context) (domain.TokenID, bool) {
	id, err := domain.ParseTokenID(c.Param("tokenId"))
	if err != nil {
		writeError(c, "Invalid token ID", err)
		return 0, false
	}
	return id, true
}

func (s *Server) handleMetadata(c *gin.Context) {
	id, ok := tokenParam(c)
	if !ok {
		return
	}
	m, err := s.gen.Metadata(c.Request.Context(), id)
	if err != nil {
		writeError(c, "Failed to generate NFT metadata", err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) handleExists(c *gin.Context) {
	id, ok := tokenParam(c)
	if !ok {
		return
	}

	var path, url *string
	exists := s.gen.Exists(id)
	if exists {
		p := s.gen.ImagePath(id)
		u := s.baseURL + imagePath(id)
		path, url = &p, &u
	}
	c.JSON(http.StatusOK, gin.H{
		"tokenId":   id,
		"exists":    exists,
		"imagePath": path,
		"imageUrl":  url,
	})
}

func (s *Server) handleDebugImage(c *gin.Context) {
	id, ok := tokenParam(c)
	if !ok {
		return
	}
	path := s.gen.ImagePath(id)
	c.JSON(http.StatusOK, gin.H{
		"tokenId":     id,
		"imageDir":    filepath.Dir(path),
		"imagePath":   path,
		"imageExists": s.gen.Exists(id),
		"imageUrl":    imagePath(id),
	})
}

func (s *Server) handleGenerate(c *gin.Context) {
	id, ok := tokenParam(c)
	if !ok {
		return
	}
	resp, err := s.gen.EnsureImage(c.Request.Context(), id, true)
	if err != nil {
		writeError(c, "Failed to generate image", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"tokenId":     id,
		"imagePath":   resp.Path,
		"imageUrl":    s.baseURL + imagePath(id),
		"imageExists": s.gen.Exists(id),
	})
}

func (s *Server) handleList(c *gin.Context) {
	ids, err := s.gen.List()
	if err != nil {
		writeError(c, "Failed to list NFTs", err)
		return
	}
	nfts := make([]nftEntry, 0, len(ids))
	for _, id := range ids {
		nfts = append(nfts, nftEntry{TokenID: id, ImageURL: imagePath(id), MetadataURL: metadataPath(id)})
	}
	c.JSON(http.StatusOK, gin.H{"nfts": nfts})
}

// handleImage は {id}.png を返します。未生成なら描画してから返します。
// ?format=jpeg で JPEG に変換します。
func (s *Server) handleImage(c *gin.Context) {
	name := c.Param("file")
	raw, ok := strings.CutSuffix(name, ".png")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}
	id, err := domain.ParseTokenID(raw)
	if err != nil || id.String() != raw {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}

	resp, err := s.gen.ImageBytes(c.Request.Context(), id, c.Query("format"))
	if err != nil {
		writeError(c, "Failed to generate image", err)
		return
	}
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, resp.MimeType, resp.Data)
}
