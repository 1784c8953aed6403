package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"go-catalog-api/internal/core/auth"
	"go-catalog-api/internal/domain"
	httpez "go-catalog-api/internal/transport/http/ez"
	"go-catalog-api/internal/transport/http/handler"
	mdw "go-catalog-api/internal/transport/http/middleware"
)

// NewAdminEngine 管理端。全部接口走 JWT + 按动作授权。
func NewAdminEngine(d Deps) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(100, 200),
		mdw.ConcurrencyLimit(150),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(15*time.Second),
		mdw.SimpleRecovery(),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
		cors.Default(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	categoryH := &handler.CategoryHandler{DB: d.DB, Log: d.Log, Cache: d.Cache, CacheTTL: d.CacheTTL, Reorder: d.Reorder, Guard: d.Guard}
	productH := &handler.ProductHandler{DB: d.DB, Log: d.Log, Reorder: d.Reorder}
	agencyH := &handler.AgencyHandler{DB: d.DB, Log: d.Log}
	blogH := &handler.BlogHandler{DB: d.DB, Log: d.Log}
	bannerH := &handler.BannerHandler{DB: d.DB, Log: d.Log, Cache: d.Cache, CacheTTL: d.CacheTTL, Reorder: d.Reorder}
	contactH := &handler.ContactHandler{DB: d.DB, Log: d.Log}
	userH := &handler.UserHandler{Users: d.Users, Log: d.Log}
	uploadH := &handler.UploadHandler{Store: d.Store, Log: d.Log}

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(d.JWTer))

	// --- 目录维护 ---
	catalog := admin.Group("")
	catalog.Use(mdw.Authorize(d.Policy, auth.ActionCatalogWrite))

	catalog.GET("/categories", categoryH.List)
	catalog.GET("/categories/:id", categoryH.Get)
	catalog.POST("/categories", categoryH.Create)
	catalog.PUT("/categories/:id", categoryH.Update)
	catalog.DELETE("/categories/:id", categoryH.Delete)

	catalog.GET("/products", productH.ListPrivate)
	catalog.GET("/products/:id", productH.GetPrivate)
	catalog.POST("/products", productH.Create)
	catalog.PUT("/products/:id", productH.Update)
	catalog.DELETE("/products/:id", productH.Delete)

	httpez.Register(catalog, "/brands", httpez.Config[domain.Brand]{
		DB: d.DB, Log: d.Log, SearchCol: "name", OrderBy: "name",
		Entity: "brands", Guard: d.Guard,
	})
	httpez.Register(catalog, "/characteristics", httpez.Config[domain.Characteristic]{
		DB: d.DB, Log: d.Log, SearchCol: "name", OrderBy: "name",
		Entity: "characteristics", Guard: d.Guard,
	})
	httpez.Register(catalog, "/agency-categories", httpez.Config[domain.AgencyCategory]{
		DB: d.DB, Log: d.Log, SearchCol: "name", OrderBy: "name",
		Entity: "agency_categories", Guard: d.Guard,
	})

	catalog.GET("/agencies", agencyH.List)
	catalog.GET("/agencies/:id", agencyH.Get)
	catalog.POST("/agencies", agencyH.Create)
	catalog.PUT("/agencies/:id", agencyH.Update)
	catalog.DELETE("/agencies/:id", agencyH.Delete)

	// --- 显示顺序 ---
	// gin 的路由树不允许 /categories/:id 和 /categories/indexes 并存，
	// 重排统一挂在 /reorder 子树下
	reorder := admin.Group("/reorder")
	reorder.Use(mdw.Authorize(d.Policy, auth.ActionCatalogReorder))
	reorder.PUT("/categories", categoryH.Reindex)
	reorder.PUT("/products", productH.Reindex)
	reorder.PUT("/banners", bannerH.Reindex)

	// --- 内容运营 ---
	content := admin.Group("")
	content.Use(mdw.Authorize(d.Policy, auth.ActionContentWrite))

	content.GET("/blogs", blogH.List)
	content.GET("/blogs/:id", blogH.Get)
	content.POST("/blogs", blogH.Create)
	content.PUT("/blogs/:id", blogH.Update)
	content.DELETE("/blogs/:id", blogH.Delete)

	httpez.Register(content, "/blog-categories", httpez.Config[domain.BlogCategory]{
		DB: d.DB, Log: d.Log, SearchCol: "name", OrderBy: "name",
		Entity: "blog_categories", Guard: d.Guard,
	})
	httpez.Register(content, "/videos", httpez.Config[domain.Video]{
		DB: d.DB, Log: d.Log, SearchCol: "name", OrderBy: "id DESC",
	})

	content.GET("/banners", bannerH.List)
	content.GET("/banners/:id", bannerH.Get)
	content.POST("/banners", bannerH.Create)
	content.PUT("/banners/:id", bannerH.Update)
	content.DELETE("/banners/:id", bannerH.Delete)

	// --- 留言 ---
	contacts := admin.Group("")
	contacts.Use(mdw.Authorize(d.Policy, auth.ActionContactRead))
	contacts.GET("/contacts", contactH.List)
	contacts.DELETE("/contacts/:id", contactH.Delete)

	// --- 账号管理 ---
	users := admin.Group("")
	users.Use(mdw.Authorize(d.Policy, auth.ActionUserManage))
	users.GET("/users", userH.List)
	users.GET("/users/:id", userH.Get)
	users.PATCH("/users/:id", userH.Patch)

	// --- 上传 ---
	uploads := admin.Group("")
	uploads.Use(mdw.Authorize(d.Policy, auth.ActionUpload))
	uploads.POST("/uploads", uploadH.Upload)

	return r
}
