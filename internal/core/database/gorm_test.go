package database_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"go-catalog-api/internal/core/database"
)

func TestIsDuplicateKey(t *testing.T) {
	// TranslateError 给的哨兵，裸的和包过一层的都要认
	assert.True(t, database.IsDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, database.IsDuplicateKey(fmt.Errorf("insert category: %w", gorm.ErrDuplicatedKey)))

	// 驱动原始报文兜底：sqlite / mysql / postgres 三家的措辞
	assert.True(t, database.IsDuplicateKey(errors.New("UNIQUE constraint failed: categories.order_key")))
	assert.True(t, database.IsDuplicateKey(errors.New("Error 1062 (23000): Duplicate entry '5' for key 'categories.order_key'")))
	assert.True(t, database.IsDuplicateKey(errors.New(`ERROR: duplicate key value violates unique constraint "categories_order_key_key" (SQLSTATE 23505)`)))

	assert.False(t, database.IsDuplicateKey(nil))
	assert.False(t, database.IsDuplicateKey(gorm.ErrForeignKeyViolated))
	assert.False(t, database.IsDuplicateKey(errors.New("dial tcp 127.0.0.1:3306: connection refused")))
	assert.False(t, database.IsDuplicateKey(gorm.ErrRecordNotFound))
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, database.IsForeignKeyViolation(gorm.ErrForeignKeyViolated))
	assert.True(t, database.IsForeignKeyViolation(fmt.Errorf("delete category: %w", gorm.ErrForeignKeyViolated)))

	assert.True(t, database.IsForeignKeyViolation(errors.New("FOREIGN KEY constraint failed")))
	assert.True(t, database.IsForeignKeyViolation(errors.New("Error 1451 (23000): Cannot delete or update a parent row: a foreign key constraint fails")))
	assert.True(t, database.IsForeignKeyViolation(errors.New(`ERROR: update or delete on table "categories" violates foreign key constraint "fk_products_category" (SQLSTATE 23503)`)))

	assert.False(t, database.IsForeignKeyViolation(nil))
	assert.False(t, database.IsForeignKeyViolation(gorm.ErrDuplicatedKey))
	assert.False(t, database.IsForeignKeyViolation(errors.New("context deadline exceeded")))
}
