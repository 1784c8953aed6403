package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-catalog-api/internal/core/storage"
	"go-catalog-api/internal/domain/errs"
	"go-catalog-api/internal/transport/http/response"
)

type UploadHandler struct {
	Store *storage.Local
	Log   *zap.Logger
}

// Upload multipart 单文件字段 "file"，多文件字段 "files"
func (h *UploadHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Err(c, h.Log, errs.Validation("invalid multipart form: %v", err))
		return
	}

	files := form.File["files"]
	if fh := form.File["file"]; len(fh) > 0 {
		files = append(files, fh...)
	}
	if len(files) == 0 {
		response.Err(c, h.Log, errs.Validation("no file in request"))
		return
	}

	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := h.Store.Save(c, fh)
		if err != nil {
			response.Err(c, h.Log, err)
			return
		}
		urls = append(urls, url)
	}
	response.Created(c, "uploaded", gin.H{"urls": urls})
}
