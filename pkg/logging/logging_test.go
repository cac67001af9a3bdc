package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/geometric-nft-kit/pkg/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := NewWithWriter(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("表示されない")
	logger.Warn("ピン留めに失敗しました", "token_id", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "ピン留めに失敗しました", rec["msg"])
	assert.EqualValues(t, 3, rec["token_id"])
}

func TestNewWithWriter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nftart.log")
	var buf bytes.Buffer
	logger, closer, err := NewWithWriter(config.LogConfig{Format: "text", File: path, MaxSizeMB: 1}, &buf)
	require.NoError(t, err)

	logger.Info("作品を生成しました", "token_id", 1)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// 標準エラーとファイルの両方に書かれるのだ
	assert.Contains(t, string(data), "token_id=1")
	assert.Contains(t, buf.String(), "token_id=1")
}

func TestNewWithWriter_UnknownFormat(t *testing.T) {
	_, _, err := NewWithWriter(config.LogConfig{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}
