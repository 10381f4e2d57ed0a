// DangBan 排班引擎服务
// 主程序入口

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dangban/dangban/internal/config"
	"github.com/dangban/dangban/internal/database"
	"github.com/dangban/dangban/internal/handler"
	"github.com/dangban/dangban/internal/metrics"
	"github.com/dangban/dangban/internal/middleware"
	"github.com/dangban/dangban/internal/repository"
	"github.com/dangban/dangban/pkg/logger"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	format := "json"
	if cfg.IsDevelopment() {
		format = "console"
	}
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: format,
	})

	// 打印版本信息
	fmt.Printf("DangBan 排班引擎 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	// 创建处理器
	scheduleHandler := handler.NewScheduleHandler(cfg.Solver, cfg.API.Timeout)
	datasetHandler := handler.NewDatasetHandler(scheduleHandler)

	// 数据库连接：失败时降级运行，名单管理不可用
	var db *database.DB
	if d, err := database.New(&cfg.Database); err != nil {
		logger.Warn().Err(err).Msg("数据库连接失败，名单管理不可用")
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := d.EnsureSchema(ctx); err != nil {
			logger.Warn().Err(err).Msg("名单表初始化失败，名单管理不可用")
			d.Close()
		} else {
			db = d
			defer db.Close()
		}
		cancel()
	}

	// 创建 HTTP 服务器
	mux := http.NewServeMux()

	// ========================================
	// 系统端点
	// ========================================

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		dbState := "disabled"
		if db != nil {
			dbState = "up"
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			if err := db.Health(ctx); err != nil {
				dbState = "down"
			}
			cancel()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","service":"dangban","database":"%s"}`, dbState)
	})

	// 版本信息端点
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// ========================================
	// API v1 端点
	// ========================================

	// API 根路由
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "DangBan 排班引擎 API v1",
			"endpoints": {
				"schedule": {
					"solve": "POST /api/v1/schedule/solve",
					"coverage_export": "POST /api/v1/schedule/coverage/export"
				},
				"stats": {
					"coverage": "POST /api/v1/stats/coverage",
					"fairness": "POST /api/v1/stats/fairness"
				},
				"datasets": {
					"list": "GET /api/v1/datasets",
					"get": "GET /api/v1/datasets/{key}",
					"solve": "POST /api/v1/datasets/solve"
				},
				"rosters": {
					"list": "GET /api/v1/rosters",
					"create": "POST /api/v1/rosters",
					"get": "GET /api/v1/rosters/{id}",
					"update": "PUT /api/v1/rosters/{id}",
					"delete": "DELETE /api/v1/rosters/{id}",
					"solve": "POST /api/v1/rosters/{id}/solve"
				}
			}
		}`))
	})

	// 排班求解 API
	mux.HandleFunc("/api/v1/schedule/solve", scheduleHandler.Solve)

	// 覆盖报表 CSV 导出 API
	mux.HandleFunc("/api/v1/schedule/coverage/export", scheduleHandler.ExportCoverage)

	// ========================================
	// 统计分析 API
	// ========================================

	// 覆盖率分析 API
	mux.HandleFunc("/api/v1/stats/coverage", scheduleHandler.CoverageStats)

	// 公平性分析 API
	mux.HandleFunc("/api/v1/stats/fairness", scheduleHandler.FairnessStats)

	// ========================================
	// 演示数据集 API
	// ========================================

	mux.HandleFunc("/api/v1/datasets", datasetHandler.List)
	mux.HandleFunc("/api/v1/datasets/solve", datasetHandler.Solve)
	mux.HandleFunc("/api/v1/datasets/", datasetHandler.Get)

	// ========================================
	// 名单管理 API（需要数据库）
	// ========================================

	if db != nil {
		rosterHandler := handler.NewRosterHandler(repository.NewRosterRepository(db), scheduleHandler)
		mux.HandleFunc("/api/v1/rosters", rosterHandler.Collection)
		mux.HandleFunc("/api/v1/rosters/", rosterHandler.Item)

		go reportDBStats(db)
	}

	// ========================================
	// 监控端点
	// ========================================

	// Prometheus 指标端点
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	// ========================================
	// 中间件
	// ========================================

	// 中间件执行顺序：requestID -> recovery -> rateLimit -> cors -> logging -> handler
	limiter := middleware.NewRateLimiter(float64(cfg.API.RateLimit))
	root := middleware.Chain(mux,
		middleware.RequestID,
		middleware.Recovery,
		func(next http.Handler) http.Handler { return middleware.RateLimit(limiter, next) },
		middleware.CORS,
		middleware.SecurityHeaders,
		middleware.Logging,
	)

	port := fmt.Sprintf("%d", cfg.App.Port)
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 启动服务器（非阻塞）
	go func() {
		logger.Info().
			Str("port", port).
			Str("version", Version).
			Str("backend", cfg.Solver.Backend).
			Str("url", fmt.Sprintf("http://localhost:%s", port)).
			Str("api_docs", fmt.Sprintf("http://localhost:%s/api/v1/", port)).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已关闭")
}

// reportDBStats 周期性上报数据库连接池指标
func reportDBStats(db *database.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		stats := db.Stats()
		metrics.SetDBConnections("open", stats.OpenConnections)
		metrics.SetDBConnections("idle", stats.Idle)
		metrics.SetDBConnections("in_use", stats.InUse)
	}
}

