package domain

import "time"

type Role struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:16;not null;uniqueIndex" json:"name"` // admin / seller / user
}

func (Role) TableName() string { return "roles" }

type User struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:64;not null" json:"name"`
	Email        string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"size:100;not null" json:"-"`
	PhoneNumber  string `gorm:"size:32" json:"phone_number"`
	Active       bool   `gorm:"not null;default:true" json:"active"`

	RoleID int64 `gorm:"not null" json:"role_id"`
	Role   *Role `gorm:"constraint:OnDelete:RESTRICT" json:"role,omitempty"`

	// 密码重置：只存 token 摘要，明文只出现在邮件里
	ResetToken        string     `gorm:"size:64;index" json:"-"`
	ResetTokenExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// RoleName 角色展示名；未预加载时返回空串
func (u *User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}

// AllModels AutoMigrate 用
func AllModels() []any {
	return []any{
		&Role{}, &User{},
		&Category{}, &Brand{}, &Product{}, &ProductImage{}, &Characteristic{},
		&Agency{}, &AgencyCategory{}, &AgencyCategoryLink{},
		&BlogCategory{}, &Blog{},
		&Banner{}, &Video{}, &Contact{},
	}
}
