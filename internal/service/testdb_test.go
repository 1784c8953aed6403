package service_test

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"go-catalog-api/internal/domain"
)

// newTestDB 进程内 sqlite，外键检查打开，单连接避免内存库分裂
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         glogger.Default.LogMode(glogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(domain.AllModels()...))
	return db
}

func key(v int64) *int64 { return &v }

// seedCategories 建 n 个分类，order_key 取 1..n
func seedCategories(t *testing.T, db *gorm.DB, n int) []domain.Category {
	t.Helper()
	out := make([]domain.Category, 0, n)
	for i := 1; i <= n; i++ {
		c := domain.Category{Name: fmt.Sprintf("cat-%d", i), OrderKey: key(int64(i))}
		require.NoError(t, db.Create(&c).Error)
		out = append(out, c)
	}
	return out
}

func categoryKey(t *testing.T, db *gorm.DB, id int64) *int64 {
	t.Helper()
	var c domain.Category
	require.NoError(t, db.First(&c, "id = ?", id).Error)
	return c.OrderKey
}
