package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/geometric-nft-kit/pkg/domain"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOG_LEVEL", "error")

	out, err := runCLI(t, "render", "23", "--image-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "cached=false")
	assert.FileExists(t, filepath.Join(dir, "23.png"))

	out, err = runCLI(t, "render", "23", "--image-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "cached=true")

	// --force は描き直すのだ
	out, err = runCLI(t, "render", "23", "--image-dir", dir, "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "cached=false")

	jpg := filepath.Join(t.TempDir(), "23.jpg")
	_, err = runCLI(t, "render", "23", "--image-dir", dir, "--out", jpg, "--format", "jpeg")
	require.NoError(t, err)
	data, err := os.ReadFile(jpg)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8}, data[:2])
}

func TestRenderCommand_InvalidID(t *testing.T) {
	_, err := runCLI(t, "render", "1.5", "--image-dir", t.TempDir())
	assert.ErrorIs(t, err, domain.ErrInvalidTokenID)
}

func TestMetadataCommand(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")

	t.Run("ピン留めなし", func(t *testing.T) {
		out, err := runCLI(t, "metadata", "23", "--image-dir", t.TempDir(), "--base-url", "https://art.example.com")
		require.NoError(t, err)

		var m domain.Metadata
		require.NoError(t, json.Unmarshal([]byte(out), &m))
		assert.Equal(t, "Geometric NFT #23", m.Name)
		assert.Equal(t, "https://art.example.com/public/nfts/images/23.png", m.Image)
		assert.Nil(t, m.IPFS)
	})

	t.Run("模擬ピン留め", func(t *testing.T) {
		out, err := runCLI(t, "metadata", "5", "--image-dir", t.TempDir(), "--pinata-mock")
		require.NoError(t, err)

		var m domain.Metadata
		require.NoError(t, json.Unmarshal([]byte(out), &m))
		require.NotNil(t, m.IPFS)
		assert.Equal(t, "http://localhost:8000/ipfs/"+m.IPFS.Image, m.Image)
	})
}

func TestLoadConfig_InvalidFlag(t *testing.T) {
	_, err := runCLI(t, "render", "1", "--image-dir", t.TempDir(), "--port", "0")
	assert.ErrorContains(t, err, "port")
}

func TestPinataCheckCommand(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")

	t.Run("認証に成功する", func(t *testing.T) {
		var gotAuth, gotPath string
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotPath = r.URL.Path
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"message":"Congratulations! You are communicating with the Pinata API!"}`))
		}))
		defer api.Close()

		t.Setenv("PINATA_JWT", "test-jwt")
		t.Setenv("PINATA_API_URL", api.URL)

		out, err := runCLI(t, "pinata-check")
		require.NoError(t, err)
		assert.Contains(t, out, "認証に成功しました")
		assert.Equal(t, "Bearer test-jwt", gotAuth)
		assert.Equal(t, "/data/testAuthentication", gotPath)
	})

	t.Run("認証情報が無ければエラー", func(t *testing.T) {
		t.Setenv("PINATA_JWT", "")
		t.Setenv("PINATA_API_KEY", "")
		_, err := runCLI(t, "pinata-check")
		assert.ErrorContains(t, err, "credentials are required")
	})
}

func TestMemoConfig(t *testing.T) {
	// cache_ttl が既定の寿命より長ければ寿命を広げるのだ
	assert.Equal(t, 48*time.Hour, memoConfig(48*time.Hour).LifeWindow)
	assert.Equal(t, 24*time.Hour, memoConfig(time.Hour).LifeWindow)
}
