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

type ContactHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

type contactIn struct {
	Name    string `json:"name" binding:"required,max=255"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" binding:"omitempty,max=32"`
	Message string `json:"message" binding:"required"`
}

// Create 前台联系表单，匿名可提交
func (h *ContactHandler) Create(c *gin.Context) {
	var in contactIn
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.Log, errs.Validation("invalid payload: %v", err))
		return
	}
	ct := domain.Contact{Name: in.Name, Email: in.Email, Phone: in.Phone, Message: in.Message}
	if err := h.DB.WithContext(c.Request.Context()).Create(&ct).Error; err != nil {
		response.Err(c, h.Log, errs.Internal("save contact failed", err))
		return
	}
	response.Created(c, "contact received", ct)
}

func (h *ContactHandler) List(c *gin.Context) {
	page, limit, offset, search := pageQuery(c)
	q := h.DB.WithContext(c.Request.Context()).Model(&domain.Contact{})
	if search != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		response.Err(c, h.Log, errs.Internal("count contacts failed", err))
		return
	}
	var items []domain.Contact
	if err := q.Order("id DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		response.Err(c, h.Log, errs.Internal("list contacts failed", err))
		return
	}
	response.OK(c, "OK", response.NewPage(items, total, page, limit))
}

func (h *ContactHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	var ct domain.Contact
	if err := h.DB.WithContext(c.Request.Context()).First(&ct, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Err(c, h.Log, errs.NotFound("contact %d not found", id))
			return
		}
		response.Err(c, h.Log, errs.Internal("get contact failed", err))
		return
	}
	if err := h.DB.WithContext(c.Request.Context()).Delete(&ct).Error; err != nil {
		response.Err(c, h.Log, errs.Internal("delete contact failed", err))
		return
	}
	response.OK(c, "contact deleted", ct)
}
