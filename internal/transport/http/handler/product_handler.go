package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-catalog-api/internal/core/database"
	"go-catalog-api/internal/domain"
	"go-catalog-api/internal/domain/errs"
	"go-catalog-api/internal/service"
	"go-catalog-api/internal/transport/http/response"
)

type ProductHandler struct {
	DB      *gorm.DB
	Log     *zap.Logger
	Reorder *service.ReorderService
}

type productIn struct {
	Name              string   `json:"name" binding:"required,max=255"`
	Description       string   `json:"description"`
	Price             float64  `json:"price" binding:"gte=0"`
	Active            *bool    `json:"active"`
	CategoryID        *int64   `json:"category_id"`
	BrandID           *int64   `json:"brand_id"`
	Images            []string `json:"images"`
	CharacteristicIDs []int64  `json:"characteristic_ids"`
}

func (h *ProductHandler) listQuery(c *gin.Context, publicOnly bool) *gorm.DB {
	_, _, _, search := pageQuery(c)
	q := h.DB.WithContext(c.Request.Context()).Model(&domain.Product{}).
		Preload("Category").Preload("Brand").Preload("Images")
	if publicOnly {
		q = q.Where("active = ?", true)
	} else if v := c.Query("active"); v != "" {
		active, _ := strconv.ParseBool(v)
		q = q.Where("active = ?", active)
	}
	if search != "" {
		q = q.Where("LOWER(products.name) LIKE LOWER(?)", "%"+search+"%")
	}
	if v := c.Query("category_id"); v != "" {
		q = q.Where("category_id = ?", v)
	}
	if v := c.Query("brand_id"); v != "" {
		q = q.Where("brand_id = ?", v)
	}
	if v := c.Query("min_price"); v != "" {
		q = q.Where("price >= ?", v)
	}
	if v := c.Query("max_price"); v != "" {
		q = q.Where("price <= ?", v)
	}
	return q
}

func (h *ProductHandler) list(c *gin.Context, publicOnly bool) {
	page, limit, offset, _ := pageQuery(c)
	q := h.listQuery(c, publicOnly)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		response.Err(c, h.Log, errs.Internal("count products failed", err))
		return
	}
	var items []domain.Product
	if err := q.Order("order_key IS NULL, order_key, id DESC").
		Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		response.Err(c, h.Log, errs.Internal("list products failed", err))
		return
	}
	response.OK(c, "OK", response.NewPage(items, total, page, limit))
}

// List 公开列表：只看上架商品
func (h *ProductHandler) List(c *gin.Context) { h.list(c, true) }

// ListPrivate 管理端列表：含下架商品
func (h *ProductHandler) ListPrivate(c *gin.Context) { h.list(c, false) }

func (h *ProductHandler) get(c *gin.Context, publicOnly bool) {
	id, err := idParam(c)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	q := h.DB.WithContext(c.Request.Context()).
		Preload("Category").Preload("Brand").Preload("Images").Preload("Characteristics")
	if publicOnly {
		q = q.Where("active = ?", true)
	}
	var p domain.Product
	if err := q.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Err(c, h.Log, errs.NotFound("product %d not found", id))
			return
		}
		response.Err(c, h.Log, errs.Internal("get product failed", err))
		return
	}
	response.OK(c, "OK", p)
}

func (h *ProductHandler) Get(c *gin.Context)        { h.get(c, true) }
func (h *ProductHandler) GetPrivate(c *gin.Context) { h.get(c, false) }

func (h *ProductHandler) Create(c *gin.Context) {
	var in productIn
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.Log, errs.Validation("invalid payload: %v", err))
		return
	}
	p := domain.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Active:      in.Active == nil || *in.Active,
		CategoryID:  in.CategoryID,
		BrandID:     in.BrandID,
	}
	for _, url := range in.Images {
		p.Images = append(p.Images, domain.ProductImage{ImageURL: url})
	}

	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		return h.linkCharacteristics(tx, &p, in.CharacteristicIDs)
	})
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			response.Err(c, h.Log, errs.Validation("unknown category or brand"))
			return
		}
		response.Err(c, h.Log, errs.Internal("create product failed", err))
		return
	}
	response.Created(c, "product created", p)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	var in productIn
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.Log, errs.Validation("invalid payload: %v", err))
		return
	}

	var p domain.Product
	txErr := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return err
		}
		p.Name = in.Name
		p.Description = in.Description
		p.Price = in.Price
		if in.Active != nil {
			p.Active = *in.Active
		}
		p.CategoryID = in.CategoryID
		p.BrandID = in.BrandID
		if err := tx.Save(&p).Error; err != nil {
			return err
		}
		if in.Images != nil {
			if err := tx.Where("product_id = ?", p.ID).Delete(&domain.ProductImage{}).Error; err != nil {
				return err
			}
			for _, url := range in.Images {
				img := domain.ProductImage{ProductID: p.ID, ImageURL: url}
				if err := tx.Create(&img).Error; err != nil {
					return err
				}
			}
		}
		return h.linkCharacteristics(tx, &p, in.CharacteristicIDs)
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrRecordNotFound) {
			response.Err(c, h.Log, errs.NotFound("product %d not found", id))
			return
		}
		if database.IsForeignKeyViolation(txErr) {
			response.Err(c, h.Log, errs.Validation("unknown category or brand"))
			return
		}
		response.Err(c, h.Log, errs.Internal("update product failed", txErr))
		return
	}
	response.OK(c, "product updated", p)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	var p domain.Product
	txErr := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM product_characteristics WHERE product_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Product{}, id).Error
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrRecordNotFound) {
			response.Err(c, h.Log, errs.NotFound("product %d not found", id))
			return
		}
		response.Err(c, h.Log, errs.Internal("delete product failed", txErr))
		return
	}
	response.OK(c, "product deleted", p)
}

// Reindex 批量调整展示顺序
func (h *ProductHandler) Reindex(c *gin.Context) {
	var in reindexIn
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.Log, errs.Validation("invalid payload: %v", err))
		return
	}
	rows, err := h.Reorder.Reindex(c.Request.Context(), "products", in.Items)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	response.OK(c, "order updated", rows)
}

func (h *ProductHandler) linkCharacteristics(tx *gorm.DB, p *domain.Product, ids []int64) error {
	if ids == nil {
		return nil
	}
	var chars []domain.Characteristic
	if len(ids) > 0 {
		if err := tx.Find(&chars, "id IN ?", ids).Error; err != nil {
			return err
		}
	}
	return tx.Model(p).Association("Characteristics").Replace(&chars)
}
