package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-catalog-api/internal/domain"
	"go-catalog-api/internal/domain/errs"
	"go-catalog-api/internal/transport/http/response"
)

type BlogHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

type blogIn struct {
	Title          string `json:"title" binding:"required,max=255"`
	Content        string `json:"content"`
	Image          string `json:"image"`
	Active         *bool  `json:"active"`
	BlogCategoryID *int64 `json:"blog_category_id"`
}

func (h *BlogHandler) List(c *gin.Context) {
	page, limit, offset, search := pageQuery(c)
	q := h.DB.WithContext(c.Request.Context()).Model(&domain.Blog{}).Preload("BlogCategory")
	if search != "" {
		q = q.Where("LOWER(title) LIKE LOWER(?)", "%"+search+"%")
	}
	if v := c.Query("blog_category_id"); v != "" {
		q = q.Where("blog_category_id = ?", v)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		response.Err(c, h.Log, errs.Internal("count blogs failed", err))
		return
	}
	var items []domain.Blog
	if err := q.Order("id DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		response.Err(c, h.Log, errs.Internal("list blogs failed", err))
		return
	}
	response.OK(c, "OK", response.NewPage(items, total, page, limit))
}

func (h *BlogHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	var b domain.Blog
	if err := h.DB.WithContext(c.Request.Context()).Preload("BlogCategory").First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Err(c, h.Log, errs.NotFound("blog %d not found", id))
			return
		}
		response.Err(c, h.Log, errs.Internal("get blog failed", err))
		return
	}
	response.OK(c, "OK", b)
}

func (h *BlogHandler) Create(c *gin.Context) {
	var in blogIn
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.Log, errs.Validation("invalid payload: %v", err))
		return
	}
	b := domain.Blog{
		Title:          in.Title,
		Content:        in.Content,
		Image:          in.Image,
		Active:         in.Active == nil || *in.Active,
		BlogCategoryID: in.BlogCategoryID,
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&b).Error; err != nil {
		response.Err(c, h.Log, errs.Internal("create blog failed", err))
		return
	}
	response.Created(c, "blog created", b)
}

func (h *BlogHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	var in blogIn
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.Log, errs.Validation("invalid payload: %v", err))
		return
	}
	var b domain.Blog
	if err := h.DB.WithContext(c.Request.Context()).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Err(c, h.Log, errs.NotFound("blog %d not found", id))
			return
		}
		response.Err(c, h.Log, errs.Internal("get blog failed", err))
		return
	}
	b.Title = in.Title
	b.Content = in.Content
	if in.Image != "" {
		b.Image = in.Image
	}
	if in.Active != nil {
		b.Active = *in.Active
	}
	b.BlogCategoryID = in.BlogCategoryID
	if err := h.DB.WithContext(c.Request.Context()).Save(&b).Error; err != nil {
		response.Err(c, h.Log, errs.Internal("update blog failed", err))
		return
	}
	response.OK(c, "blog updated", b)
}

func (h *BlogHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	var b domain.Blog
	if err := h.DB.WithContext(c.Request.Context()).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Err(c, h.Log, errs.NotFound("blog %d not found", id))
			return
		}
		response.Err(c, h.Log, errs.Internal("get blog failed", err))
		return
	}
	if err := h.DB.WithContext(c.Request.Context()).Delete(&b).Error; err != nil {
		response.Err(c, h.Log, errs.Internal("delete blog failed", err))
		return
	}
	response.OK(c, "blog deleted", b)
}
