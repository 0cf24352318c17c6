package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/slotbook/internal/config"
	"github.com/hitoshi/slotbook/internal/directory"
	"github.com/hitoshi/slotbook/internal/frontdesk"
	"github.com/hitoshi/slotbook/internal/handler"
	"github.com/hitoshi/slotbook/internal/logger"
	"github.com/hitoshi/slotbook/internal/metrics"
	"github.com/hitoshi/slotbook/internal/middleware"
	"github.com/hitoshi/slotbook/internal/report"
	"github.com/hitoshi/slotbook/internal/seed"
	"github.com/hitoshi/slotbook/internal/worker/statsreport"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで作り直す
	logger.SetupDefault(w, cfg.LogLevel)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(fmt.Sprintf("http://localhost:%s/health", port))
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.Bool("seed_sample_data", cfg.SeedSampleData),
		slog.Bool("enforce_availability", cfg.BookingEnforceAvailability),
	)

	switch cmd {
	case CommandReport:
		return runReport(cfg)
	default:
		return runServe(cfg)
	}
}

// application は1プロセス分のワイヤリング結果。
type application struct {
	desk        *frontdesk.Desk
	handler     http.Handler
	rateLimiter *middleware.RateLimiter
	statsJob    *statsreport.Job
}

// newApplication はストアの初期化から全依存関係のワイヤリングまでを行う。
func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	// 1. ストアの初期化と初期データの投入
	stores := seed.NewMemoryStores()
	if err := populate(ctx, cfg, stores); err != nil {
		return nil, err
	}

	// 2. メトリクスの初期化
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	// 3. 操作窓口の組み立て
	desk := frontdesk.Assemble(stores, frontdesk.Options{
		Config:                 frontdesk.Config{SimulatedDelay: cfg.SimulatedDelay},
		EnforceAvailability:    cfg.BookingEnforceAvailability,
		DefaultTeacherPassword: cfg.DefaultTeacherPassword,
		Metrics:                collector,
		AuditLogger:            slog.Default(),
	})

	// 4. ルーターの構築
	// configのレート制限はreq/min単位
	rl := middleware.NewRateLimiter(middleware.PerMinuteRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitAuth))

	router := handler.NewRouter(&handler.RouterDeps{
		SessionSource:     desk,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rl,
		Metrics:           collector,
		Gatherer:          reg,
		Logger:            slog.Default(),

		SessionService:  desk,
		AdminService:    desk,
		ScheduleService: desk,
		MessageService:  desk,
	})

	// 5. 集計ジョブ。セッションを介さずストアから直接集計する
	statsJob := statsreport.NewJob(
		report.NewService(stores.Users, stores.Appointments),
		collector,
		slog.Default(),
	)

	return &application{
		desk:        desk,
		handler:     router,
		rateLimiter: rl,
		statsJob:    statsJob,
	}, nil
}

// populate はサンプルデータまたは初期管理者を投入する。
func populate(ctx context.Context, cfg *config.Config, stores seed.Stores) error {
	if cfg.SeedSampleData {
		if err := seed.Load(ctx, stores, time.Now()); err != nil {
			return fmt.Errorf("failed to load sample data: %w", err)
		}
		slog.Info("sample data loaded")
		return nil
	}

	dir := directory.NewService(stores.Users, cfg.DefaultTeacherPassword)
	if _, err := dir.CreateAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	slog.Info("admin account created", slog.String("email", cfg.AdminEmail))
	return nil
}

// runServe はAPIサーバーモードで起動する。
// 全依存関係をワイヤリングし、HTTPサーバーと集計ジョブを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.rateLimiter.Stop()

	jobDone := make(chan struct{})
	if cfg.StatsReportSchedule != "" {
		go func() {
			defer close(jobDone)
			if err := app.statsJob.Start(ctx, cfg.StatsReportSchedule); err != nil {
				slog.Error("stats report job failed", slog.String("error", err.Error()))
			}
		}()
	} else {
		close(jobDone)
	}

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		stop()
		<-jobDone
		return fmt.Errorf("server listen error: %w", err)
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	<-jobDone

	slog.Info("API server stopped gracefully")
	return nil
}

// runReport は集計スナップショットを1回出力して終了する。
func runReport(cfg *config.Config) error {
	ctx := context.Background()

	app, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.rateLimiter.Stop()

	if _, err := app.statsJob.Run(ctx); err != nil {
		return fmt.Errorf("stats report failed: %w", err)
	}
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(url string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
