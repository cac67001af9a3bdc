// Package store は描画済み画像をトークン ID 単位でディスクに保持します。
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shouni/geometric-nft-kit/pkg/domain"
)

const fileExt = ".png"

// ErrNotFound は指定トークンの画像がキャッシュに無いことを示します。
var ErrNotFound = errors.New("image not found in store")

// FileStore は {dir}/{tokenId}.png に画像を置くキャッシュです。
// 書き込みは一時ファイルからの rename で行うため、同じ ID への並行書き込みは後勝ちになります。
type FileStore struct {
	dir string
}

// NewFileStore はディレクトリを作成して FileStore を返します。
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("画像ディレクトリの作成に失敗しました: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir はキャッシュディレクトリです。
func (s *FileStore) Dir() string { return s.dir }

// Path は id の画像パスを返します。ファイルの有無は問いません。
func (s *FileStore) Path(id domain.TokenID) string {
	return filepath.Join(s.dir, id.String()+fileExt)
}

// Exists は id の画像が既にあるかを返します。
func (s *FileStore) Exists(id domain.TokenID) bool {
	info, err := os.Stat(s.Path(id))
	return err == nil && info.Mode().IsRegular()
}

// Read は id の画像を読み出します。無ければ ErrNotFound です。
func (s *FileStore) Read(id domain.TokenID) ([]byte, error) {
	data, err := os.ReadFile(s.Path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("画像の読み込みに失敗しました: %w", err)
	}
	return data, nil
}

// Write は id の画像を置き換えます。
func (s *FileStore) Write(id domain.TokenID, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, "."+id.String()+"-*.tmp")
	if err != nil {
		return fmt.Errorf("一時ファイルの作成に失敗しました: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("画像の書き込みに失敗しました: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("画像の書き込みに失敗しました: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("画像の権限設定に失敗しました: %w", err)
	}
	if err := os.Rename(tmpName, s.Path(id)); err != nil {
		return fmt.Errorf("画像の配置に失敗しました: %w", err)
	}
	return nil
}

// List はキャッシュ済みのトークン ID を昇順で返します。{id}.png 以外のファイルは無視します。
func (s *FileStore) List() ([]domain.TokenID, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("画像ディレクトリの読み込みに失敗しました: %w", err)
	}

	ids := make([]domain.TokenID, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		id, err := domain.ParseTokenID(strings.TrimSuffix(name, fileExt))
		if err != nil || id.String()+fileExt != name {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
