package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-catalog-api/internal/domain"
	"go-catalog-api/internal/domain/errs"
	"go-catalog-api/internal/repo"
	"go-catalog-api/internal/service"
)

func TestReindexAppliesNewOrder(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewReorderService(repo.NewReorderRepo(db), zap.NewNop())
	cats := seedCategories(t, db, 4)

	rows, err := svc.Reindex(context.Background(), "categories", []service.OrderItem{
		{ID: cats[0].ID, Index: key(30)},
		{ID: cats[1].ID, Index: key(10)},
		{ID: cats[2].ID, Index: key(20)},
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// 回包按新顺序排列，name 来自展示列
	assert.Equal(t, cats[1].ID, rows[0].ID)
	assert.Equal(t, int64(10), rows[0].Index)
	assert.Equal(t, "cat-2", rows[0].Name)
	assert.Equal(t, cats[2].ID, rows[1].ID)
	assert.Equal(t, cats[0].ID, rows[2].ID)

	assert.Equal(t, int64(30), *categoryKey(t, db, cats[0].ID))
	// 批次之外的行不许动
	assert.Equal(t, int64(4), *categoryKey(t, db, cats[3].ID))
}

func TestReindexIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewReorderService(repo.NewReorderRepo(db), zap.NewNop())
	cats := seedCategories(t, db, 2)

	items := []service.OrderItem{
		{ID: cats[0].ID, Index: key(7)},
		{ID: cats[1].ID, Index: key(8)},
	}
	_, err := svc.Reindex(context.Background(), "categories", items)
	require.NoError(t, err)
	_, err = svc.Reindex(context.Background(), "categories", items)
	require.NoError(t, err)

	assert.Equal(t, int64(7), *categoryKey(t, db, cats[0].ID))
	assert.Equal(t, int64(8), *categoryKey(t, db, cats[1].ID))
}

// 键位互换不能被唯一约束拦下
func TestReindexSwapsKeys(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewReorderService(repo.NewReorderRepo(db), zap.NewNop())
	cats := seedCategories(t, db, 2) // keys 1, 2

	_, err := svc.Reindex(context.Background(), "categories", []service.OrderItem{
		{ID: cats[0].ID, Index: key(2)},
		{ID: cats[1].ID, Index: key(1)},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), *categoryKey(t, db, cats[0].ID))
	assert.Equal(t, int64(1), *categoryKey(t, db, cats[1].ID))
}

// 键位在批次成员之间转手：id5 让出 2 给 id9，自己搬到空闲的 7
func TestReindexMovesKeyBetweenBatchMembers(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewReorderService(repo.NewReorderRepo(db), zap.NewNop())

	a := domain.Category{Name: "cat-a", OrderKey: key(2)}
	b := domain.Category{Name: "cat-b", OrderKey: key(9)}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	_, err := svc.Reindex(context.Background(), "categories", []service.OrderItem{
		{ID: a.ID, Index: key(7)},
		{ID: b.ID, Index: key(2)},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), *categoryKey(t, db, a.ID))
	assert.Equal(t, int64(2), *categoryKey(t, db, b.ID))
}

func TestReindexValidation(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewReorderService(repo.NewReorderRepo(db), zap.NewNop())
	cats := seedCategories(t, db, 1)
	ctx := context.Background()

	cases := map[string][]service.OrderItem{
		"empty":          {},
		"zero id":        {{ID: 0, Index: key(1)}},
		"negative id":    {{ID: -3, Index: key(1)}},
		"missing index":  {{ID: cats[0].ID}},
		"negative index": {{ID: cats[0].ID, Index: key(-1)}},
	}
	for name, items := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Reindex(ctx, "categories", items)
			assert.True(t, errs.Is(err, errs.KindValidation), "want validation error, got %v", err)
		})
	}

	big := make([]service.OrderItem, service.MaxReorderBatch+1)
	for i := range big {
		big[i] = service.OrderItem{ID: int64(i + 1), Index: key(int64(i))}
	}
	_, err := svc.Reindex(ctx, "categories", big)
	assert.True(t, errs.Is(err, errs.KindValidation))
}

func TestReindexDuplicatesInRequest(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewReorderService(repo.NewReorderRepo(db), zap.NewNop())
	cats := seedCategories(t, db, 2)
	ctx := context.Background()

	_, err := svc.Reindex(ctx, "categories", []service.OrderItem{
		{ID: cats[0].ID, Index: key(5)},
		{ID: cats[0].ID, Index: key(6)},
	})
	assert.True(t, errs.Is(err, errs.KindConflict))

	_, err = svc.Reindex(ctx, "categories", []service.OrderItem{
		{ID: cats[0].ID, Index: key(5)},
		{ID: cats[1].ID, Index: key(5)},
	})
	assert.True(t, errs.Is(err, errs.KindConflict))

	// 拒绝的请求不能碰库
	assert.Equal(t, int64(1), *categoryKey(t, db, cats[0].ID))
	assert.Equal(t, int64(2), *categoryKey(t, db, cats[1].ID))
}

func TestReindexMissingIDs(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewReorderService(repo.NewReorderRepo(db), zap.NewNop())
	cats := seedCategories(t, db, 1)

	_, err := svc.Reindex(context.Background(), "categories", []service.OrderItem{
		{ID: cats[0].ID, Index: key(10)},
		{ID: 9999, Index: key(11)},
	})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindNotFound))
	assert.Contains(t, err.Error(), "9999")

	e, ok := errs.AsError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"9999"}, e.Details)

	// 整批回滚，已存在的行保持原 key
	assert.Equal(t, int64(1), *categoryKey(t, db, cats[0].ID))
}

func TestReindexCollisionOutsideBatch(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewReorderService(repo.NewReorderRepo(db), zap.NewNop())
	cats := seedCategories(t, db, 3) // keys 1, 2, 3

	// key 3 被第三行占着，它不在本批次里
	_, err := svc.Reindex(context.Background(), "categories", []service.OrderItem{
		{ID: cats[0].ID, Index: key(3)},
		{ID: cats[1].ID, Index: key(4)},
	})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindConflict))
	assert.Contains(t, err.Error(), "3")

	assert.Equal(t, int64(1), *categoryKey(t, db, cats[0].ID))
	assert.Equal(t, int64(2), *categoryKey(t, db, cats[1].ID))
}

func TestReindexDuplicateIDReportedBeforeDuplicateIndex(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewReorderService(repo.NewReorderRepo(db), zap.NewNop())
	cats := seedCategories(t, db, 2)

	// 同一批里既有重复 id 又有重复 index：id 的检查先跑完
	_, err := svc.Reindex(context.Background(), "categories", []service.OrderItem{
		{ID: cats[0].ID, Index: key(5)},
		{ID: cats[1].ID, Index: key(5)},
		{ID: cats[1].ID, Index: key(6)},
	})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindConflict))
	assert.Contains(t, err.Error(), "duplicate id in request")
}

// 预检通过后、写入前被并发请求抢走键位：落库的唯一冲突要折算成
// Conflict，不能当 Internal 冒出去。
func TestReindexWriteTimeCollisionIsConflict(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewReorderService(repo.NewReorderRepo(db), zap.NewNop())
	cats := seedCategories(t, db, 2)

	raced := false
	err := db.Callback().Raw().Before("gorm:raw").Register("test:rival_insert", func(tx *gorm.DB) {
		if raced || !strings.HasPrefix(tx.Statement.SQL.String(), "UPDATE categories SET order_key = CASE id") {
			return
		}
		raced = true
		// 同一事务连接里塞进一行占走 key 9
		s := tx.Session(&gorm.Session{NewDB: true})
		if e := s.Exec("INSERT INTO categories (name, order_key) VALUES (?, ?)", "rival", 9).Error; e != nil {
			tx.AddError(e)
		}
	})
	require.NoError(t, err)

	_, err = svc.Reindex(context.Background(), "categories", []service.OrderItem{
		{ID: cats[0].ID, Index: key(9)},
		{ID: cats[1].ID, Index: key(10)},
	})
	require.Error(t, err)
	require.True(t, raced)
	assert.True(t, errs.Is(err, errs.KindConflict), "got %v", err)

	// 整批回滚，rival 也随事务消失
	assert.Equal(t, int64(1), *categoryKey(t, db, cats[0].ID))
	var n int64
	require.NoError(t, db.Model(&domain.Category{}).Where("name = ?", "rival").Count(&n).Error)
	assert.Zero(t, n)
}

func TestReindexUnknownEntity(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewReorderService(repo.NewReorderRepo(db), zap.NewNop())

	_, err := svc.Reindex(context.Background(), "warehouses", []service.OrderItem{
		{ID: 1, Index: key(1)},
	})
	assert.True(t, errs.Is(err, errs.KindNotFound))
}
