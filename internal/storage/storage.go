// Package storage はプロジェクト書類の保存と取り出しを提供する。
package storage

import (
	"context"
	"io"
)

// DocumentStorage は書類ファイルの保存先インターフェース。
// 保存先（ローカルディスク、オブジェクトストレージ等）を差し替え可能にする。
type DocumentStorage interface {
	// Save はnameでファイルを保存し、ダウンロード用URLを返す。
	Save(ctx context.Context, name string, r io.Reader) (string, error)

	// Open は保存済みファイルを開き、本体とContent-Typeを返す。
	// 見つからない場合はos.ErrNotExistを返す。
	Open(name string) (io.ReadCloser, string, error)
}
