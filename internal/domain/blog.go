package domain

import "time"

type BlogCategory struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (BlogCategory) TableName() string { return "blog_categories" }

type Blog struct {
	ID             int64         `gorm:"primaryKey" json:"id"`
	Title          string        `gorm:"size:255;not null" json:"title"`
	Content        string        `gorm:"type:text" json:"content"`
	Image          string        `gorm:"size:512" json:"image"`
	Active         bool          `gorm:"not null;default:true" json:"active"`
	BlogCategoryID *int64        `json:"blog_category_id"`
	BlogCategory   *BlogCategory `gorm:"constraint:OnDelete:RESTRICT" json:"blog_category,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

func (Blog) TableName() string { return "blogs" }
