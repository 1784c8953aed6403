package domain

import "time"

// Category 商品分类。OrderKey 控制前台展示顺序，非空值全表唯一。
type Category struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Image       string    `gorm:"size:512" json:"image"`
	OrderKey    *int64    `gorm:"column:order_key;uniqueIndex" json:"index"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Category) TableName() string { return "categories" }

type Brand struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Brand) TableName() string { return "brands" }

type Product struct {
	ID          int64   `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:255;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `json:"price"`
	Active      bool    `gorm:"not null;default:true" json:"active"`
	OrderKey    *int64  `gorm:"column:order_key;uniqueIndex" json:"index"`

	CategoryID *int64    `json:"category_id"`
	Category   *Category `gorm:"constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	BrandID    *int64    `json:"brand_id"`
	Brand      *Brand    `gorm:"constraint:OnDelete:RESTRICT" json:"brand,omitempty"`

	Images          []ProductImage   `gorm:"constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Characteristics []Characteristic `gorm:"many2many:product_characteristics" json:"characteristics,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

type ProductImage struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	ProductID int64  `gorm:"index;not null" json:"product_id"`
	ImageURL  string `gorm:"size:512;not null" json:"image_url"`
}

func (ProductImage) TableName() string { return "product_images" }

// Characteristic 商品特性（规格/参数），与商品多对多。
type Characteristic struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Characteristic) TableName() string { return "characteristics" }
