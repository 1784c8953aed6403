package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-catalog-api/internal/core/auth"
	"go-catalog-api/internal/core/cache"
	"go-catalog-api/internal/core/storage"
	"go-catalog-api/internal/repo"
	"go-catalog-api/internal/service"
	httpez "go-catalog-api/internal/transport/http/ez"
	"go-catalog-api/internal/transport/http/handler"
	mdw "go-catalog-api/internal/transport/http/middleware"

	"go-catalog-api/internal/domain"
)

// Deps 两个引擎共用的依赖集合，由 cmd 侧组装
type Deps struct {
	Log      *zap.Logger
	DB       *gorm.DB
	Cache    *cache.Cache
	CacheTTL time.Duration
	JWTer    *auth.JWTer
	Policy   *auth.Policy
	Reorder  *service.ReorderService
	Guard    *service.GuardDeleteService
	Auth     *service.AuthService
	Users    *repo.UserRepo
	Store    *storage.Local
	// 上传文件的挂载点与磁盘目录
	UploadBaseURL string
	UploadDir     string
	// 忘记密码邮件里的链接前缀
	ResetBaseURL string
}

// NewAPIEngine 面向站点前端的只读目录 + 留言 + 账号接口
func NewAPIEngine(d Deps) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(4<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(d.Log, true),
		mdw.Metrics(),
		ginzap.Ginzap(d.Log, time.RFC3339, true),
		cors.Default(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 上传的静态文件
	if d.UploadBaseURL != "" && d.UploadDir != "" {
		r.Static(d.UploadBaseURL, d.UploadDir)
	}

	api := r.Group("/api/v1")

	categoryH := &handler.CategoryHandler{DB: d.DB, Log: d.Log, Cache: d.Cache, CacheTTL: d.CacheTTL, Reorder: d.Reorder, Guard: d.Guard}
	productH := &handler.ProductHandler{DB: d.DB, Log: d.Log, Reorder: d.Reorder}
	agencyH := &handler.AgencyHandler{DB: d.DB, Log: d.Log}
	blogH := &handler.BlogHandler{DB: d.DB, Log: d.Log}
	bannerH := &handler.BannerHandler{DB: d.DB, Log: d.Log, Cache: d.Cache, CacheTTL: d.CacheTTL, Reorder: d.Reorder}
	contactH := &handler.ContactHandler{DB: d.DB, Log: d.Log}
	authH := &handler.AuthHandler{Auth: d.Auth, Users: d.Users, Log: d.Log, ResetBaseURL: d.ResetBaseURL}

	// 目录只读
	api.GET("/categories", categoryH.List)
	api.GET("/categories/:id", categoryH.Get)
	api.GET("/products", productH.List)
	api.GET("/products/:id", productH.Get)
	api.GET("/agencies", agencyH.List)
	api.GET("/agencies/:id", agencyH.Get)
	api.GET("/blogs", blogH.List)
	api.GET("/blogs/:id", blogH.Get)
	api.GET("/banners", bannerH.List)

	httpez.RegisterReadOnly(api, "/brands", httpez.Config[domain.Brand]{DB: d.DB, Log: d.Log, SearchCol: "name", OrderBy: "name"})
	httpez.RegisterReadOnly(api, "/blog-categories", httpez.Config[domain.BlogCategory]{DB: d.DB, Log: d.Log, SearchCol: "name", OrderBy: "name"})
	httpez.RegisterReadOnly(api, "/agency-categories", httpez.Config[domain.AgencyCategory]{DB: d.DB, Log: d.Log, SearchCol: "name", OrderBy: "name"})
	httpez.RegisterReadOnly(api, "/characteristics", httpez.Config[domain.Characteristic]{DB: d.DB, Log: d.Log, SearchCol: "name", OrderBy: "name"})
	httpez.RegisterReadOnly(api, "/videos", httpez.Config[domain.Video]{DB: d.DB, Log: d.Log, SearchCol: "name", OrderBy: "id DESC"})

	// 访客留言
	api.POST("/contacts", contactH.Create)

	// 账号
	api.POST("/auth/login", authH.Login)
	api.POST("/auth/register", authH.Register)
	api.POST("/auth/forgot-password", authH.ForgotPassword)
	api.POST("/auth/reset-password", authH.ResetPassword)

	me := api.Group("")
	me.Use(mdw.AuthJWT(d.JWTer))
	me.GET("/me", authH.Me)
	me.POST("/auth/change-password", authH.ChangePassword)

	return r
}
