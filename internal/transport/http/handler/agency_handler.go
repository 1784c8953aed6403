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

type AgencyHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

type agencyIn struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Address     string  `json:"address"`
	Phone       string  `json:"phone"`
	MapURL      string  `json:"map_url"`
	Active      *bool   `json:"active"`
	CategoryIDs []int64 `json:"category_ids"` // 所属网点分类
}

func (h *AgencyHandler) List(c *gin.Context) {
	page, limit, offset, search := pageQuery(c)
	q := h.DB.WithContext(c.Request.Context()).Model(&domain.Agency{}).Preload("Categories")
	if search != "" {
		q = q.Where("LOWER(agencies.name) LIKE LOWER(?)", "%"+search+"%")
	}
	// 按网点分类过滤要跨连接表
	if v := c.Query("category_id"); v != "" {
		q = q.Where("id IN (SELECT agency_id FROM agency_category_links WHERE category_id = ?)", v)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		response.Err(c, h.Log, errs.Internal("count agencies failed", err))
		return
	}
	var items []domain.Agency
	if err := q.Order("id DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		response.Err(c, h.Log, errs.Internal("list agencies failed", err))
		return
	}
	response.OK(c, "OK", response.NewPage(items, total, page, limit))
}

func (h *AgencyHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	var a domain.Agency
	if err := h.DB.WithContext(c.Request.Context()).Preload("Categories").First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Err(c, h.Log, errs.NotFound("agency %d not found", id))
			return
		}
		response.Err(c, h.Log, errs.Internal("get agency failed", err))
		return
	}
	response.OK(c, "OK", a)
}

func (h *AgencyHandler) Create(c *gin.Context) {
	var in agencyIn
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.Log, errs.Validation("invalid payload: %v", err))
		return
	}
	a := domain.Agency{
		Name:    in.Name,
		Address: in.Address,
		Phone:   in.Phone,
		MapURL:  in.MapURL,
		Active:  in.Active == nil || *in.Active,
	}
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&a).Error; err != nil {
			return err
		}
		return h.relink(tx, &a, in.CategoryIDs)
	})
	if err != nil {
		response.Err(c, h.Log, errs.Internal("create agency failed", err))
		return
	}
	response.Created(c, "agency created", a)
}

func (h *AgencyHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	var in agencyIn
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.Log, errs.Validation("invalid payload: %v", err))
		return
	}
	var a domain.Agency
	txErr := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&a, id).Error; err != nil {
			return err
		}
		a.Name = in.Name
		a.Address = in.Address
		a.Phone = in.Phone
		a.MapURL = in.MapURL
		if in.Active != nil {
			a.Active = *in.Active
		}
		if err := tx.Save(&a).Error; err != nil {
			return err
		}
		return h.relink(tx, &a, in.CategoryIDs)
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrRecordNotFound) {
			response.Err(c, h.Log, errs.NotFound("agency %d not found", id))
			return
		}
		response.Err(c, h.Log, errs.Internal("update agency failed", txErr))
		return
	}
	response.OK(c, "agency updated", a)
}

func (h *AgencyHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	var a domain.Agency
	txErr := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&a, id).Error; err != nil {
			return err
		}
		if err := tx.Where("agency_id = ?", id).Delete(&domain.AgencyCategoryLink{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Agency{}, id).Error
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrRecordNotFound) {
			response.Err(c, h.Log, errs.NotFound("agency %d not found", id))
			return
		}
		response.Err(c, h.Log, errs.Internal("delete agency failed", txErr))
		return
	}
	response.OK(c, "agency deleted", a)
}

// relink 全量替换网点-分类连接
func (h *AgencyHandler) relink(tx *gorm.DB, a *domain.Agency, ids []int64) error {
	if ids == nil {
		return nil
	}
	if err := tx.Where("agency_id = ?", a.ID).Delete(&domain.AgencyCategoryLink{}).Error; err != nil {
		return err
	}
	for _, cid := range ids {
		link := domain.AgencyCategoryLink{AgencyID: a.ID, CategoryID: cid}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
	}
	return nil
}
