package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "lending-backoffice/internal/adapter/http"
	"lending-backoffice/internal/adapter/middleware"
	"lending-backoffice/internal/adapter/repository/mysql"
	"lending-backoffice/internal/config"
	prospectDomain "lending-backoffice/internal/domain/prospect"
	"lending-backoffice/internal/infrastructure/blob"
	"lending-backoffice/internal/infrastructure/cache"
	"lending-backoffice/internal/infrastructure/db"
	"lending-backoffice/internal/logger"
	fundingUC "lending-backoffice/internal/usecase/funding"
	lenderUC "lending-backoffice/internal/usecase/lender"
	prospectUC "lending-backoffice/internal/usecase/prospect"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		zl.Fatal("mysql connect", zap.Error(err))
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		zl.Fatal("redis connect", zap.Error(err))
	}

	blobs, err := blob.NewGCSStore(context.Background(), cfg.GCSBucket)
	if err != nil {
		zl.Fatal("gcs connect", zap.Error(err))
	}
	defer blobs.Close()

	orig := prospectDomain.OriginatorIdentity{
		LenderID: cfg.OriginatorLenderID,
		Account:  cfg.OriginatorAccount,
		Name:     cfg.OriginatorName,
	}

	prospects := mysql.NewProspectRepository(gdb)
	lenders := mysql.NewLenderRepository(gdb)
	users := mysql.NewUserRepository(gdb)
	txm := mysql.NewGormUoW(gdb)

	prospectUc := prospectUC.NewUsecase(prospects, users, orig, zl)
	fundingUc := fundingUC.NewUsecase(txm, orig, zl)
	lenderUc := lenderUC.NewUsecase(lenders, zl)

	h := httpadp.NewHandler()
	ph := httpadp.NewProspectHandler(prospectUc, blobs)
	fh := httpadp.NewFundingHandler(fundingUc)
	lh := httpadp.NewLenderHandler(lenderUc)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())
	e.Use(middleware.Identity(users))
	e.Use(middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))

	// routes
	e.GET("/health", h.Health)

	e.POST("/prospects", ph.Create)
	e.GET("/prospects", ph.List)
	e.GET("/prospects/:prospect_id", ph.Get)
	e.PATCH("/prospects/:prospect_id", ph.Update)
	e.POST("/prospects/:prospect_id/reject", ph.Reject)
	e.POST("/prospects/:prospect_id/reopen", ph.Reopen)

	e.PUT("/prospects/:prospect_id/stages/:stage_id/documents/:doc_id/status", ph.SetDocumentStatus)
	e.PUT("/prospects/:prospect_id/stages/:stage_id/documents/:doc_id/closing-flags", ph.SetClosingFlags)
	e.POST("/prospects/:prospect_id/stages/:stage_id/documents", ph.AddDocument)
	e.DELETE("/prospects/:prospect_id/stages/:stage_id/documents/:doc_id", ph.RemoveDocument)
	e.POST("/prospects/:prospect_id/stages/:stage_id/documents/:doc_id/file", ph.UploadDocumentFile)

	e.POST("/loans/:prospect_id/funders", fh.AddFunder)
	e.POST("/loans/:prospect_id/fundings", fh.RecordFunding)
	e.POST("/loans/:prospect_id/payments", fh.RecordPayment)
	e.DELETE("/loans/:prospect_id/history/:event_id", fh.DeleteHistoryEvent)

	e.POST("/lenders", lh.Create)
	e.GET("/lenders", lh.List)
	e.GET("/lenders/:lender_id", lh.Get)
	e.POST("/lenders/:lender_id/trust-transactions", lh.AddTrustTransaction)

	addr := ":" + cfg.AppPort
	zl.Info("listening", zap.String("addr", addr))
	if err := e.Start(addr); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}
