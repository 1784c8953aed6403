package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-catalog-api/internal/core/auth"
	"go-catalog-api/internal/core/cache"
	"go-catalog-api/internal/core/config"
	"go-catalog-api/internal/core/database"
	"go-catalog-api/internal/core/logger"
	"go-catalog-api/internal/core/mailer"
	"go-catalog-api/internal/core/server"
	"go-catalog-api/internal/core/storage"
	"go-catalog-api/internal/repo"
	"go-catalog-api/internal/service"
	"go-catalog-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	// 迁移和种子数据由 cmd/api 负责，后台端只连接

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	store, err := storage.NewLocal(cfg.Upload.Dir, cfg.Upload.BaseURL, cfg.Upload.MaxSizeMB)
	if err != nil {
		log.Fatal("upload dir", zap.Error(err))
	}

	var m mailer.Mailer = &mailer.Noop{Log: log}
	if cfg.SMTP.Host != "" {
		m = mailer.NewSMTP(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	}

	userRepo := repo.NewUserRepo(db)
	deps := router.Deps{
		Log:           log,
		DB:            db,
		Cache:         cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB),
		CacheTTL:      time.Duration(cfg.Redis.CatalogTTLS) * time.Second,
		JWTer:         jwter,
		Policy:        auth.DefaultPolicy(),
		Reorder:       service.NewReorderService(repo.NewReorderRepo(db), log),
		Guard:         service.NewGuardDeleteService(repo.NewDependencyRepo(db), log),
		Auth:          service.NewAuthService(userRepo, jwter, m, log),
		Users:         userRepo,
		Store:         store,
		UploadBaseURL: cfg.Upload.BaseURL,
		UploadDir:     cfg.Upload.Dir,
	}

	r := router.NewAdminEngine(deps)

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 15*time.Second, 60*time.Second)

	host4human := cfg.App.Admin.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.Admin.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()
	log.Info("admin api started SUCCESS")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("admin api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.New(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
