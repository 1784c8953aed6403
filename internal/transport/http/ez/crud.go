package ez

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-catalog-api/internal/core/database"
	"go-catalog-api/internal/domain/errs"
	"go-catalog-api/internal/service"
	"go-catalog-api/internal/transport/http/response"
)

// Config 简单实体的通用 CRUD 配置。
// 带依赖边的实体把 Guard+Entity 配上，删除会走守护删除。
type Config[T any] struct {
	DB  *gorm.DB
	Log *zap.Logger

	SearchCol string // 模糊搜索列，空则忽略 ?search=
	OrderBy   string // 列表排序，空则 id DESC

	Entity string // 守护删除注册名
	Guard  *service.GuardDeleteService

	BeforeSave func(c *gin.Context, m *T) error // 业务校验钩子
	OnWrite    func(c *gin.Context)             // 写操作后回调（缓存失效等）
}

// Register 挂载 list/get/create/update/delete 五件套
func Register[T any](g *gin.RouterGroup, path string, cfg Config[T]) {
	RegisterReadOnly(g, path, cfg)
	g.POST(path, cfg.create)
	g.PUT(path+"/:id", cfg.update)
	g.DELETE(path+"/:id", cfg.remove)
}

// RegisterReadOnly 公开端只挂查询
func RegisterReadOnly[T any](g *gin.RouterGroup, path string, cfg Config[T]) {
	g.GET(path, cfg.list)
	g.GET(path+"/:id", cfg.get)
}

func (cfg Config[T]) list(c *gin.Context) {
	page := atoiDefault(c.DefaultQuery("page", "1"), 1)
	limit := atoiDefault(c.DefaultQuery("limit", "10"), 10)
	if limit > 100 {
		limit = 10
	}

	var m T
	q := cfg.DB.WithContext(c.Request.Context()).Model(&m)
	if s := c.Query("search"); s != "" && cfg.SearchCol != "" {
		q = q.Where(fmt.Sprintf("LOWER(%s) LIKE LOWER(?)", cfg.SearchCol), "%"+s+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		response.Err(c, cfg.Log, errs.Internal("count failed", err))
		return
	}
	order := cfg.OrderBy
	if order == "" {
		order = "id DESC"
	}
	var items []T
	if err := q.Order(order).Offset((page - 1) * limit).Limit(limit).Find(&items).Error; err != nil {
		response.Err(c, cfg.Log, errs.Internal("list failed", err))
		return
	}
	response.OK(c, "OK", response.NewPage(items, total, page, limit))
}

func (cfg Config[T]) get(c *gin.Context) {
	var m T
	if err := cfg.DB.WithContext(c.Request.Context()).First(&m, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Err(c, cfg.Log, errs.NotFound("not found"))
			return
		}
		response.Err(c, cfg.Log, errs.Internal("get failed", err))
		return
	}
	response.OK(c, "OK", m)
}

func (cfg Config[T]) create(c *gin.Context) {
	m := new(T)
	if err := c.ShouldBindJSON(m); err != nil {
		response.Err(c, cfg.Log, errs.Validation("invalid payload: %v", err))
		return
	}
	if cfg.BeforeSave != nil {
		if err := cfg.BeforeSave(c, m); err != nil {
			response.Err(c, cfg.Log, err)
			return
		}
	}
	if err := cfg.DB.WithContext(c.Request.Context()).Create(m).Error; err != nil {
		if database.IsDuplicateKey(err) {
			response.Err(c, cfg.Log, errs.Conflict("already exists"))
			return
		}
		response.Err(c, cfg.Log, errs.Internal("create failed", err))
		return
	}
	if cfg.OnWrite != nil {
		cfg.OnWrite(c)
	}
	response.Created(c, "created", m)
}

func (cfg Config[T]) update(c *gin.Context) {
	var cur T
	if err := cfg.DB.WithContext(c.Request.Context()).First(&cur, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Err(c, cfg.Log, errs.NotFound("not found"))
			return
		}
		response.Err(c, cfg.Log, errs.Internal("get failed", err))
		return
	}
	in := new(T)
	if err := c.ShouldBindBodyWith(in, binding.JSON); err != nil {
		response.Err(c, cfg.Log, errs.Validation("invalid payload: %v", err))
		return
	}
	if cfg.BeforeSave != nil {
		if err := cfg.BeforeSave(c, in); err != nil {
			response.Err(c, cfg.Log, err)
			return
		}
	}
	// 提交了什么字段就写什么字段，空字符串也照写；
	// 结构体 Updates 会吞掉零值，这里用 map，id 保持 URL 里的
	patch := map[string]any{}
	if err := c.ShouldBindBodyWith(&patch, binding.JSON); err != nil {
		response.Err(c, cfg.Log, errs.Validation("invalid payload: %v", err))
		return
	}
	delete(patch, "id")
	delete(patch, "createdAt")
	delete(patch, "updatedAt")
	if len(patch) == 0 {
		response.Err(c, cfg.Log, errs.Validation("empty payload"))
		return
	}
	if err := cfg.DB.WithContext(c.Request.Context()).Model(&cur).Updates(patch).Error; err != nil {
		if database.IsDuplicateKey(err) {
			response.Err(c, cfg.Log, errs.Conflict("already exists"))
			return
		}
		response.Err(c, cfg.Log, errs.Internal("update failed", err))
		return
	}
	if cfg.OnWrite != nil {
		cfg.OnWrite(c)
	}
	var out T
	if err := cfg.DB.WithContext(c.Request.Context()).First(&out, "id = ?", c.Param("id")).Error; err != nil {
		response.Err(c, cfg.Log, errs.Internal("get failed", err))
		return
	}
	response.OK(c, "updated", out)
}

func (cfg Config[T]) remove(c *gin.Context) {
	id := atoi64(c.Param("id"))
	if id <= 0 {
		response.Err(c, cfg.Log, errs.Validation("invalid id %q", c.Param("id")))
		return
	}

	// 注册过依赖边的实体走守护删除
	if cfg.Guard != nil && cfg.Entity != "" {
		report, err := cfg.Guard.Delete(c.Request.Context(), cfg.Entity, id)
		if err != nil {
			response.Err(c, cfg.Log, err)
			return
		}
		if cfg.OnWrite != nil {
			cfg.OnWrite(c)
		}
		response.OK(c, "deleted", report.Row)
		return
	}

	var m T
	if err := cfg.DB.WithContext(c.Request.Context()).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Err(c, cfg.Log, errs.NotFound("not found"))
			return
		}
		response.Err(c, cfg.Log, errs.Internal("get failed", err))
		return
	}
	if err := cfg.DB.WithContext(c.Request.Context()).Delete(&m).Error; err != nil {
		response.Err(c, cfg.Log, errs.Internal("delete failed", err))
		return
	}
	if cfg.OnWrite != nil {
		cfg.OnWrite(c)
	}
	response.OK(c, "deleted", m)
}

func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

func atoi64(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
