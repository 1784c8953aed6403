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
	"go-catalog-api/internal/domain"
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

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(domain.AllModels()...); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		if err := seedRoles(db); err != nil {
			log.Fatal("seed roles failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	store, err := storage.NewLocal(cfg.Upload.Dir, cfg.Upload.BaseURL, cfg.Upload.MaxSizeMB)
	if err != nil {
		log.Fatal("upload dir", zap.Error(err))
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
		Auth:          service.NewAuthService(userRepo, jwter, pickMailer(cfg, log), log),
		Users:         userRepo,
		Store:         store,
		UploadBaseURL: cfg.Upload.BaseURL,
		UploadDir:     cfg.Upload.Dir,
		ResetBaseURL:  os.Getenv("RESET_BASE_URL"),
	}

	r := router.NewAPIEngine(deps)

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("catalog api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("catalog api start FAILED", zap.Error(err))
		}
	}()
	log.Info("catalog api started SUCCESS")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("catalog api stopped gracefully")
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

// seedRoles 固定三种角色，幂等
func seedRoles(db *gorm.DB) error {
	for _, name := range []string{auth.RoleAdmin, auth.RoleSeller, auth.RoleUser} {
		var r domain.Role
		err := db.Where("name = ?", name).First(&r).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&domain.Role{Name: name}).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// pickMailer 没配 SMTP 就只记日志
func pickMailer(cfg *config.Config, l *zap.Logger) mailer.Mailer {
	if cfg.SMTP.Host == "" {
		return &mailer.Noop{Log: l}
	}
	return mailer.NewSMTP(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
}
