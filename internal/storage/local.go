package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage はローカルディスクを使用したDocumentStorage実装。
// ファイルはすべてルートディレクトリ直下に保存し、サブディレクトリは作らない。
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage はLocalStorageを生成する。保存先ディレクトリがなければ作成する。
// baseURLは返却するダウンロードURLのプレフィックス（例: http://localhost:8080）。
func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Save はnameでファイルを保存し、ダウンロード用URLを返す。
// ファイル名はサニタイズされ、ディレクトリトラバーサルは無効化される。
func (s *LocalStorage) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name = SanitizeFilename(name)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return s.baseURL + "/api/files/" + name, nil
}

// Open は保存済みファイルを開き、本体と拡張子から推定したContent-Typeを返す。
func (s *LocalStorage) Open(name string) (io.ReadCloser, string, error) {
	name = SanitizeFilename(name)

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, "", err
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return f, contentType, nil
}

// SanitizeFilename はファイル名をストレージで安全な形式に変換する。
// パス区切りを含む先頭要素を除去し、英数字と「. - _」以外を「_」に置換する。
// 空になった場合はランダムな名前を生成する。
func SanitizeFilename(name string) string {
	// パス要素を除去（"../../etc/passwd" -> "passwd"）
	name = filepath.Base(filepath.Clean(name))
	if name == "." || name == string(filepath.Separator) {
		name = ""
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	cleaned := strings.Trim(b.String(), ".")
	if cleaned == "" {
		return uuid.New().String()
	}
	return cleaned
}

// compile-time interface check
var _ DocumentStorage = (*LocalStorage)(nil)
