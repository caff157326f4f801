package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/renteduse/roster-request-flow/config"
	"github.com/renteduse/roster-request-flow/internal/api/handler"
	"github.com/renteduse/roster-request-flow/internal/api/router"
	"github.com/renteduse/roster-request-flow/internal/repository"
	"github.com/renteduse/roster-request-flow/internal/service"
	"github.com/renteduse/roster-request-flow/pkg/database"
	"github.com/renteduse/roster-request-flow/pkg/jwt"
	"github.com/renteduse/roster-request-flow/pkg/logger"
	"github.com/renteduse/roster-request-flow/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（留空则查找 ./config/config.yaml）")
	flag.Parse()

	// ── 配置 ──
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// ── 日志 ──
	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	// ── 数据库 ──
	db, err := database.NewDB(&cfg.Database, log)
	if err != nil {
		log.Fatal("连接数据库失败", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("获取底层数据库连接失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, log); err != nil {
		log.Fatal("数据库迁移失败", zap.Error(err))
	}

	if cfg.Feature.DemoSeed {
		if err := database.SeedDemoData(db, log); err != nil {
			log.Fatal("注入演示数据失败", zap.Error(err))
		}
	}

	// ── Redis（可选，连接失败时降级运行）──
	rdb, err := redis.NewClient(&cfg.Redis, log)
	if err != nil {
		log.Warn("Redis 连接失败，Token 黑名单与限流降级为关闭", zap.Error(err))
		rdb = nil
	}

	// ── 组装各层 ──
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, log)
	h := handler.NewHandler(svc)
	engine := router.Setup(cfg, h, jwtMgr, rdb, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("服务启动", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("服务异常退出", zap.Error(err))
		}
	}()

	// ── 优雅退出 ──
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("收到退出信号，开始关闭")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("关闭 HTTP 服务失败", zap.Error(err))
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error("关闭 Redis 连接失败", zap.Error(err))
		}
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("关闭数据库连接失败", zap.Error(err))
	}
	log.Info("服务已退出")
}
