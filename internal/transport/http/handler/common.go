package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"go-catalog-api/internal/domain/errs"
	"go-catalog-api/internal/service"
)

// pageQuery 解析 ?page=&limit=&search=（原接口的分页口径）
func pageQuery(c *gin.Context) (page, limit, offset int, search string) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	offset = (page - 1) * limit
	search = strings.TrimSpace(c.Query("search"))
	return
}

func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.Validation("invalid id %q", c.Param("id"))
	}
	return id, nil
}

// reindexIn 重排接口的请求体
type reindexIn struct {
	Items []service.OrderItem `json:"items" binding:"required"`
}
