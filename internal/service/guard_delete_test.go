package service_test

import (
	"context"
	"fmt"
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

func newGuard(db *gorm.DB) *service.GuardDeleteService {
	return service.NewGuardDeleteService(repo.NewDependencyRepo(db), zap.NewNop())
}

func TestGuardDeleteWithoutDependents(t *testing.T) {
	db := newTestDB(t)
	svc := newGuard(db)
	c := domain.Category{Name: "empty-cat"}
	require.NoError(t, db.Create(&c).Error)

	report, err := svc.Delete(context.Background(), "categories", c.ID)
	require.NoError(t, err)
	assert.False(t, report.Blocked)
	assert.Equal(t, "empty-cat", report.Row["name"])

	var n int64
	require.NoError(t, db.Model(&domain.Category{}).Where("id = ?", c.ID).Count(&n).Error)
	assert.Zero(t, n)

	// 再删一次就是 404
	_, err = svc.Delete(context.Background(), "categories", c.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestGuardDeleteBlockedByProducts(t *testing.T) {
	db := newTestDB(t)
	svc := newGuard(db)
	c := domain.Category{Name: "phones"}
	require.NoError(t, db.Create(&c).Error)
	for i := 1; i <= 5; i++ {
		p := domain.Product{Name: fmt.Sprintf("phone-%d", i), CategoryID: &c.ID}
		require.NoError(t, db.Create(&p).Error)
	}

	report, err := svc.Delete(context.Background(), "categories", c.ID)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindConflict))
	assert.Contains(t, err.Error(), "5 products")

	require.NotNil(t, report)
	assert.True(t, report.Blocked)
	assert.Equal(t, int64(5), report.DependentCount)
	assert.Equal(t, "products", report.DependentType)
	// 样例最多三条，按 id 升序
	assert.Equal(t, []string{"phone-1", "phone-2", "phone-3"}, report.Sample)

	// 被拒绝的行必须原样还在
	var n int64
	require.NoError(t, db.Model(&domain.Category{}).Where("id = ?", c.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestGuardDeleteBlockedReportInPayload(t *testing.T) {
	db := newTestDB(t)
	svc := newGuard(db)
	b := domain.Brand{Name: "acme"}
	require.NoError(t, db.Create(&b).Error)
	p := domain.Product{Name: "acme-widget", BrandID: &b.ID}
	require.NoError(t, db.Create(&p).Error)

	_, err := svc.Delete(context.Background(), "brands", b.ID)
	require.Error(t, err)

	e, ok := errs.AsError(err)
	require.True(t, ok)
	rp, ok := e.Payload.(*service.DeletionReport)
	require.True(t, ok)
	assert.True(t, rp.Blocked)
	assert.Equal(t, int64(1), rp.DependentCount)
	assert.Equal(t, []string{"acme-widget"}, e.Details)
}

func TestGuardDeleteJoinTableEdge(t *testing.T) {
	db := newTestDB(t)
	svc := newGuard(db)
	ac := domain.AgencyCategory{Name: "north"}
	require.NoError(t, db.Create(&ac).Error)
	a := domain.Agency{Name: "north-branch"}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&domain.AgencyCategoryLink{AgencyID: a.ID, CategoryID: ac.ID}).Error)

	report, err := svc.Delete(context.Background(), "agency_categories", ac.ID)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindConflict))
	assert.Equal(t, "agencies", report.DependentType)
	assert.Equal(t, []string{"north-branch"}, report.Sample)
}

// 依赖计数过了之后、DELETE 落库之前插进来新的子行：外键把删除拦下，
// 服务要把约束报错折算成 Conflict，不能按 Internal 返回。
func TestGuardDeleteRacingDependentIsConflict(t *testing.T) {
	db := newTestDB(t)
	svc := newGuard(db)
	c := domain.Category{Name: "raced-cat"}
	require.NoError(t, db.Create(&c).Error)

	raced := false
	err := db.Callback().Raw().Before("gorm:raw").Register("test:late_dependent", func(tx *gorm.DB) {
		if raced || !strings.HasPrefix(tx.Statement.SQL.String(), "DELETE FROM categories") {
			return
		}
		raced = true
		s := tx.Session(&gorm.Session{NewDB: true})
		if e := s.Exec("INSERT INTO products (name, active, category_id) VALUES (?, ?, ?)", "late-arrival", true, c.ID).Error; e != nil {
			tx.AddError(e)
		}
	})
	require.NoError(t, err)

	_, err = svc.Delete(context.Background(), "categories", c.ID)
	require.Error(t, err)
	require.True(t, raced)
	assert.True(t, errs.Is(err, errs.KindConflict), "got %v", err)

	e, ok := errs.AsError(err)
	require.True(t, ok)
	report, ok := e.Payload.(*service.DeletionReport)
	require.True(t, ok)
	assert.True(t, report.Blocked)

	// 父行原样留在表里
	var n int64
	require.NoError(t, db.Model(&domain.Category{}).Where("id = ?", c.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestGuardDeleteUnknownEntity(t *testing.T) {
	db := newTestDB(t)
	svc := newGuard(db)

	_, err := svc.Delete(context.Background(), "warehouses", 1)
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestGuardDeleteInvalidID(t *testing.T) {
	db := newTestDB(t)
	svc := newGuard(db)

	_, err := svc.Delete(context.Background(), "categories", 0)
	assert.True(t, errs.Is(err, errs.KindValidation))
}
