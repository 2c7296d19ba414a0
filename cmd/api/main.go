package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"app/internal/clock"
	"app/internal/config"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/line"
	"app/internal/repository"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	// .envは無くてもよい（本番は環境変数を直接渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	//DB接続とマイグレーション
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatalf("db connect: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatalf("db migrate: %v", err)
	}

	clk := clock.NewSystem()
	ttl := time.Duration(cfg.SessionTTLSeconds) * time.Second

	//セッション保管先の選択
	var sessions repository.SessionRepository
	switch cfg.SessionBackend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Fatalf("redis connect: %v", err)
		}
		sessions = infraRepo.NewSessionRedisRepository(rdb, clk, ttl)
	case "memory":
		sessions = infraRepo.NewSessionMemoryRepository(clk, ttl)
	default:
		sessions = infraRepo.NewSessionGormRepository(gormDB, clk, ttl)
	}

	//Repository（GORM実装）生成
	stockRepo := infraRepo.NewStockGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	msgr := line.NewClient(cfg.LineChannelAccessToken, logger)

	//Usecase生成
	stockUC := usecase.NewStockUsecase(stockRepo)
	orderUC := usecase.NewOrderUsecase(orderRepo, idGen, clk)
	convUC := usecase.NewConversationUsecase(cfg, sessions, stockUC, orderUC, msgr, idGen, logger)
	adminUC := usecase.NewAdminUsecase(cfg, orderUC, stockUC, clk)

	//Handler生成
	webhookH := handler.NewWebhookHandler(cfg.LineChannelSecret, convUC, logger)
	adminH := handler.NewAdminHandler(adminUC)

	e := server.New(cfg, webhookH, adminH)

	//Server起動
	go func() {
		logger.Printf("listening on :%s", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server: %v", err)
		}
	}()

	//SIGINT/SIGTERMで猶予つき停止
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
	logger.Println("stopped")
}
