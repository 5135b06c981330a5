package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/johernandezvaz/vitrine/internal/model"
)

// DocumentOpener はファイル配信ハンドラーが必要とするストレージインターフェース。
// storage.DocumentStorageの部分集合として定義する。
type DocumentOpener interface {
	Open(name string) (io.ReadCloser, string, error)
}

// FileHandler はアップロード済み書類の配信ハンドラー。
type FileHandler struct {
	storage DocumentOpener
}

// NewFileHandler はFileHandlerを生成する。
func NewFileHandler(storage DocumentOpener) *FileHandler {
	return &FileHandler{storage: storage}
}

// Download は保存済み書類ファイルを配信する。
// GET /api/files/:name
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	f, contentType, err := h.storage.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeAPIErrorResponse(w, http.StatusNotFound, model.NewDocumentNotFoundError(name))
			return
		}
		slog.Error("failed to open document", slog.String("error", err.Error()))
		writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
			Code:     "INTERNAL_ERROR",
			Message:  "内部エラーが発生しました。",
			Category: "system",
			Action:   "しばらく待ってから再度お試しください。",
		})
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, f); err != nil {
		// レスポンス書き込み開始後はステータスを変更できないため、ログのみ
		slog.Error("failed to stream document", slog.String("error", err.Error()))
	}
}
