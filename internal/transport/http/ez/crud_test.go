package ez_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"go-catalog-api/internal/domain"
	"go-catalog-api/internal/repo"
	"go-catalog-api/internal/service"
	"go-catalog-api/internal/transport/http/ez"
	"go-catalog-api/internal/transport/http/response"
)

func newRig(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         glogger.Default.LogMode(glogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(domain.AllModels()...))

	guard := service.NewGuardDeleteService(repo.NewDependencyRepo(db), zap.NewNop())

	r := gin.New()
	g := r.Group("/admin/v1")
	ez.Register(g, "/brands", ez.Config[domain.Brand]{
		DB: db, Log: zap.NewNop(), SearchCol: "name", OrderBy: "name",
		Entity: "brands", Guard: guard,
	})
	ez.Register(g, "/videos", ez.Config[domain.Video]{
		DB: db, Log: zap.NewNop(), SearchCol: "name",
	})
	return r, db
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCrudListPagination(t *testing.T) {
	r, db := newRig(t)
	for i := 1; i <= 25; i++ {
		require.NoError(t, db.Create(&domain.Brand{Name: fmt.Sprintf("brand-%02d", i)}).Error)
	}

	w := do(r, http.MethodGet, "/admin/v1/brands?page=2&limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Success)

	page := body.Data.(map[string]any)
	assert.EqualValues(t, 25, page["total"])
	assert.EqualValues(t, 2, page["page"])
	assert.EqualValues(t, 3, page["totalPages"])
	assert.Len(t, page["data"].([]any), 10)
}

func TestCrudSearch(t *testing.T) {
	r, db := newRig(t)
	require.NoError(t, db.Create(&domain.Brand{Name: "Apacer"}).Error)
	require.NoError(t, db.Create(&domain.Brand{Name: "Kingston"}).Error)

	w := do(r, http.MethodGet, "/admin/v1/brands?search=apa", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	page := body.Data.(map[string]any)
	assert.EqualValues(t, 1, page["total"])
}

func TestCrudCreateAndDuplicate(t *testing.T) {
	r, _ := newRig(t)

	w := do(r, http.MethodPost, "/admin/v1/brands", `{"name":"acme"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/admin/v1/brands", `{"name":"acme"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
}

// 提交空字符串就得写空字符串进库，不能被当成「没改」吞掉
func TestCrudUpdateClearsStringField(t *testing.T) {
	r, db := newRig(t)
	v := domain.Video{Name: "intro", Description: "old words", LinkURL: "https://v.example.com/1"}
	require.NoError(t, db.Create(&v).Error)

	w := do(r, http.MethodPut, fmt.Sprintf("/admin/v1/videos/%d", v.ID),
		`{"name":"intro","description":"","link_url":"https://v.example.com/1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got domain.Video
	require.NoError(t, db.First(&got, "id = ?", v.ID).Error)
	assert.Empty(t, got.Description)
	assert.Equal(t, "intro", got.Name)

	// 回包也是落库后的值
	var body response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	row := body.Data.(map[string]any)
	assert.Equal(t, "", row["description"])
}

// 请求体里塞 id 或时间戳不许改行身份，URL 的 id 说了算
func TestCrudUpdateIgnoresIdentityFields(t *testing.T) {
	r, db := newRig(t)
	a := domain.Brand{Name: "alpha"}
	b := domain.Brand{Name: "beta"}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	w := do(r, http.MethodPut, fmt.Sprintf("/admin/v1/brands/%d", a.ID),
		fmt.Sprintf(`{"id":%d,"name":"alpha-2"}`, b.ID))
	require.Equal(t, http.StatusOK, w.Code)

	var got domain.Brand
	require.NoError(t, db.First(&got, "id = ?", a.ID).Error)
	assert.Equal(t, "alpha-2", got.Name)

	got = domain.Brand{}
	require.NoError(t, db.First(&got, "id = ?", b.ID).Error)
	assert.Equal(t, "beta", got.Name)
}

func TestCrudGuardedDelete(t *testing.T) {
	r, db := newRig(t)
	b := domain.Brand{Name: "held"}
	require.NoError(t, db.Create(&b).Error)
	p := domain.Product{Name: "anchor", BrandID: &b.ID}
	require.NoError(t, db.Create(&p).Error)

	// 有商品引用，删除要被挡下
	w := do(r, http.MethodDelete, fmt.Sprintf("/admin/v1/brands/%d", b.ID), "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Contains(t, body.Message, "1 products")
	assert.Equal(t, []string{"anchor"}, body.Errors)

	// 解除引用后放行
	require.NoError(t, db.Delete(&p).Error)
	w = do(r, http.MethodDelete, fmt.Sprintf("/admin/v1/brands/%d", b.ID), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodDelete, fmt.Sprintf("/admin/v1/brands/%d", b.ID), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCrudGetUnknownID(t *testing.T) {
	r, _ := newRig(t)
	w := do(r, http.MethodGet, "/admin/v1/brands/424242", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
