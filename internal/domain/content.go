package domain

import "time"

// Banner 首页横幅。Type 标识挂载位置，一个位置一张；OrderKey 控制整体展示顺序。
type Banner struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Type      string    `gorm:"size:32;not null;uniqueIndex" json:"type"` // home / sidebar / popup ...
	ImageURL  string    `gorm:"size:512" json:"image_url"`
	LinkURL   string    `gorm:"size:512" json:"link_url"`
	OrderKey  *int64    `gorm:"column:order_key;uniqueIndex" json:"index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Banner) TableName() string { return "banners" }

type Video struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	LinkURL     string    `gorm:"size:512;not null" json:"link_url"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Video) TableName() string { return "videos" }

// Contact 前台联系表单提交记录
type Contact struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255" json:"email"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Message   string    `gorm:"type:text" json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Contact) TableName() string { return "contacts" }
