package domain

import "time"

// Agency 经销/代理网点
type Agency struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:255;not null" json:"name"`
	Address   string `gorm:"size:512" json:"address"`
	Phone     string `gorm:"size:32" json:"phone"`
	Active    bool   `gorm:"not null;default:true" json:"active"`
	MapURL    string `gorm:"size:512" json:"map_url"`

	Categories []AgencyCategory `gorm:"many2many:agency_category_links;joinForeignKey:AgencyID;joinReferences:CategoryID" json:"categories,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Agency) TableName() string { return "agencies" }

type AgencyCategory struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (AgencyCategory) TableName() string { return "agency_categories" }

// AgencyCategoryLink 网点与网点分类的连接表，删除分类前要检查它。
// 复合主键和 many2many 生成的表结构保持一致。
type AgencyCategoryLink struct {
	AgencyID   int64 `gorm:"primaryKey" json:"agency_id"`
	CategoryID int64 `gorm:"primaryKey" json:"category_id"`
}

func (AgencyCategoryLink) TableName() string { return "agency_category_links" }
