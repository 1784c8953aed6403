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

const cacheKeyBanners = "catalog:banners:"

type BannerHandler struct {
	DB       *gorm.DB
	Log      *zap.Logger
	Cache    *cache.Cache
	CacheTTL time.Duration
	Reorder  *service.ReorderService
}

type bannerIn struct {
	Title    string `json:"title" binding:"required,max=255"`
	Type     string `json:"type" binding:"required,max=32"`
	ImageURL string `json:"image_url"`
	LinkURL  string `json:"link_url"`
}

func (h *BannerHandler) List(c *gin.Context) {
	bannerType := c.Query("type")

	load := func(ctx context.Context) (*[]domain.Banner, error) {
		q := h.DB.WithContext(ctx).Model(&domain.Banner{})
		if bannerType != "" {
			q = q.Where("type = ?", bannerType)
		}
		var items []domain.Banner
		if err := q.Order("order_key IS NULL, order_key, id").Find(&items).Error; err != nil {
			return nil, err
		}
		return &items, nil
	}

	var (
		items *[]domain.Banner
		err   error
	)
	if h.Cache != nil {
		key := cacheKeyBanners + bannerType
		items, err = cache.GetOrLoadJSON[[]domain.Banner](h.Cache, c.Request.Context(), key, h.CacheTTL, load)
	} else {
		items, err = load(c.Request.Context())
	}
	if err != nil {
		response.Err(c, h.Log, errs.Internal("list banners failed", err))
		return
	}
	response.OK(c, "OK", items)
}

func (h *BannerHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	var b domain.Banner
	if err := h.DB.WithContext(c.Request.Context()).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Err(c, h.Log, errs.NotFound("banner %d not found", id))
			return
		}
		response.Err(c, h.Log, errs.Internal("get banner failed", err))
		return
	}
	response.OK(c, "OK", b)
}

// Create 同一位置（type）只允许一张横幅，撞了按冲突报
func (h *BannerHandler) Create(c *gin.Context) {
	var in bannerIn
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.Log, errs.Validation("invalid payload: %v", err))
		return
	}
	b := domain.Banner{Title: in.Title, Type: in.Type, ImageURL: in.ImageURL, LinkURL: in.LinkURL}
	if err := h.DB.WithContext(c.Request.Context()).Create(&b).Error; err != nil {
		if database.IsDuplicateKey(err) {
			response.Err(c, h.Log, errs.Conflict("a banner of type %q already exists", in.Type))
			return
		}
		response.Err(c, h.Log, errs.Internal("create banner failed", err))
		return
	}
	h.invalidate(c)
	response.Created(c, "banner created", b)
}

func (h *BannerHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	var in bannerIn
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.Log, errs.Validation("invalid payload: %v", err))
		return
	}
	var b domain.Banner
	if err := h.DB.WithContext(c.Request.Context()).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Err(c, h.Log, errs.NotFound("banner %d not found", id))
			return
		}
		response.Err(c, h.Log, errs.Internal("get banner failed", err))
		return
	}
	b.Title = in.Title
	b.Type = in.Type
	b.ImageURL = in.ImageURL
	b.LinkURL = in.LinkURL
	if err := h.DB.WithContext(c.Request.Context()).Save(&b).Error; err != nil {
		if database.IsDuplicateKey(err) {
			response.Err(c, h.Log, errs.Conflict("a banner of type %q already exists", in.Type))
			return
		}
		response.Err(c, h.Log, errs.Internal("update banner failed", err))
		return
	}
	h.invalidate(c)
	response.OK(c, "banner updated", b)
}

func (h *BannerHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	var b domain.Banner
	if err := h.DB.WithContext(c.Request.Context()).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Err(c, h.Log, errs.NotFound("banner %d not found", id))
			return
		}
		response.Err(c, h.Log, errs.Internal("get banner failed", err))
		return
	}
	if err := h.DB.WithContext(c.Request.Context()).Delete(&b).Error; err != nil {
		response.Err(c, h.Log, errs.Internal("delete banner failed", err))
		return
	}
	h.invalidate(c)
	response.OK(c, "banner deleted", b)
}

func (h *BannerHandler) Reindex(c *gin.Context) {
	var in reindexIn
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.Log, errs.Validation("invalid payload: %v", err))
		return
	}
	rows, err := h.Reorder.Reindex(c.Request.Context(), "banners", in.Items)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	h.invalidate(c)
	response.OK(c, "order updated", rows)
}

func (h *BannerHandler) invalidate(c *gin.Context) {
	if h.Cache != nil {
		h.Cache.Forget(c.Request.Context(), cacheKeyBanners)
	}
}
