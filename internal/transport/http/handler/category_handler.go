package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-catalog-api/internal/core/cache"
	"go-catalog-api/internal/core/database"
	"go-catalog-api/internal/domain"
	"go-catalog-api/internal/domain/errs"
	"go-catalog-api/internal/service"
	"go-catalog-api/internal/transport/http/response"
)

const cacheKeyCategories = "catalog:categories:"

type CategoryHandler struct {
	DB       *gorm.DB
	Log      *zap.Logger
	Cache    *cache.Cache
	CacheTTL time.Duration
	Reorder  *service.ReorderService
	Guard    *service.GuardDeleteService
}

type categoryIn struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// List 公开列表。短 TTL 缓存 + singleflight 回源。
func (h *CategoryHandler) List(c *gin.Context) {
	page, limit, offset, search := pageQuery(c)

	load := func(ctx context.Context) (*response.Page, error) {
		q := h.DB.WithContext(ctx).Model(&domain.Category{})
		if search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
		}
		var total int64
		if err := q.Count(&total).Error; err != nil {
			return nil, err
		}
		var cats []domain.Category
		if err := q.Order("order_key IS NULL, order_key, id DESC").
			Offset(offset).Limit(limit).Find(&cats).Error; err != nil {
			return nil, err
		}
		p := response.NewPage(cats, total, page, limit)
		return &p, nil
	}

	var (
		p   *response.Page
		err error
	)
	if h.Cache != nil && search == "" {
		key := cacheKeyCategories + c.Request.URL.RawQuery
		p, err = cache.GetOrLoadJSON[response.Page](h.Cache, c.Request.Context(), key, h.CacheTTL, load)
	} else {
		p, err = load(c.Request.Context())
	}
	if err != nil {
		response.Err(c, h.Log, errs.Internal("list categories failed", err))
		return
	}
	response.OK(c, "OK", p)
}

func (h *CategoryHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	var cat domain.Category
	if err := h.DB.WithContext(c.Request.Context()).First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Err(c, h.Log, errs.NotFound("category %d not found", id))
			return
		}
		response.Err(c, h.Log, errs.Internal("get category failed", err))
		return
	}
	response.OK(c, "OK", cat)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var in categoryIn
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.Log, errs.Validation("invalid payload: %v", err))
		return
	}
	cat := domain.Category{Name: in.Name, Description: in.Description, Image: in.Image}
	if err := h.DB.WithContext(c.Request.Context()).Create(&cat).Error; err != nil {
		if database.IsDuplicateKey(err) {
			response.Err(c, h.Log, errs.Conflict("category name already exists"))
			return
		}
		response.Err(c, h.Log, errs.Internal("create category failed", err))
		return
	}
	h.invalidate(c)
	response.Created(c, "category created", cat)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	var in categoryIn
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.Log, errs.Validation("invalid payload: %v", err))
		return
	}
	var cat domain.Category
	if err := h.DB.WithContext(c.Request.Context()).First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Err(c, h.Log, errs.NotFound("category %d not found", id))
			return
		}
		response.Err(c, h.Log, errs.Internal("get category failed", err))
		return
	}
	cat.Name = in.Name
	cat.Description = in.Description
	if in.Image != "" {
		cat.Image = in.Image
	}
	if err := h.DB.WithContext(c.Request.Context()).Save(&cat).Error; err != nil {
		if database.IsDuplicateKey(err) {
			response.Err(c, h.Log, errs.Conflict("category name already exists"))
			return
		}
		response.Err(c, h.Log, errs.Internal("update category failed", err))
		return
	}
	h.invalidate(c)
	response.OK(c, "category updated", cat)
}

// Delete 守护删除：还有商品挂在该分类下时拒绝
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	report, err := h.Guard.Delete(c.Request.Context(), "categories", id)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	h.invalidate(c)
	response.OK(c, "category deleted", report.Row)
}

// Reindex 批量调整展示顺序
func (h *CategoryHandler) Reindex(c *gin.Context) {
	var in reindexIn
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.Log, errs.Validation("invalid payload: %v", err))
		return
	}
	rows, err := h.Reorder.Reindex(c.Request.Context(), "categories", in.Items)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	h.invalidate(c)
	response.OK(c, "order updated", rows)
}

func (h *CategoryHandler) invalidate(c *gin.Context) {
	if h.Cache != nil {
		h.Cache.Forget(c.Request.Context(), cacheKeyCategories)
	}
}
