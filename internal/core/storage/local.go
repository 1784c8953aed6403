package storage

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-catalog-api/internal/domain/errs"
)

// Local 本地磁盘存储。只负责落盘和生成可访问 URL。
type Local struct {
	Dir       string
	BaseURL   string
	MaxSizeMB int
}

func NewLocal(dir, baseURL string, maxSizeMB int) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Local{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/"), MaxSizeMB: maxSizeMB}, nil
}

var allowedExt = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".webp": {}, ".gif": {},
}

func (l *Local) Save(c *gin.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > int64(l.MaxSizeMB)<<20 {
		return "", errs.Validation("file exceeds %dMB limit", l.MaxSizeMB)
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if _, ok := allowedExt[ext]; !ok {
		return "", errs.Validation("unsupported file type %q", ext)
	}
	name := fmt.Sprintf("%d-%s%s", time.Now().Unix(), uuid.NewString()[:8], ext)
	if err := c.SaveUploadedFile(fh, filepath.Join(l.Dir, name)); err != nil {
		return "", errs.Internal("save upload failed", err)
	}
	return l.BaseURL + "/" + name, nil
}
