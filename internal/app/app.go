// Package app は設定の読み込み、依存関係のワイヤリング、サブコマンドの実行を行う。
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/simplesocial/internal/config"
	"github.com/hitoshi/simplesocial/internal/database"
	"github.com/hitoshi/simplesocial/internal/follow"
	"github.com/hitoshi/simplesocial/internal/handler"
	"github.com/hitoshi/simplesocial/internal/like"
	"github.com/hitoshi/simplesocial/internal/logger"
	"github.com/hitoshi/simplesocial/internal/metrics"
	"github.com/hitoshi/simplesocial/internal/middleware"
	"github.com/hitoshi/simplesocial/internal/post"
	"github.com/hitoshi/simplesocial/internal/repository"
	"github.com/hitoshi/simplesocial/internal/user"
)

// Init はアプリケーションの初期化を行う。
// 設定を読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再初期化する
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		slog.Warn("falling back to info log level", slog.String("error", err.Error()))
	}
	logger.SetupDefault(w, level)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。SIGINTまたはSIGTERMで終了する。
func Run(w io.Writer, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return run(ctx, w, args)
}

func run(ctx context.Context, w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		baseURL, err := healthcheckBaseURL()
		if err != nil {
			return fmt.Errorf("healthcheck failed: %w", err)
		}
		return runHealthcheck(ctx, baseURL)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("driver", cfg.DatabaseDriver),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(ctx, cfg)
	default:
		return runServe(ctx, cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
func runServe(ctx context.Context, cfg *config.Config) error {
	ln, err := net.Listen("tcp", ":"+cfg.ServerPort)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", cfg.ServerPort, err)
	}
	return serve(ctx, cfg, ln)
}

// serve はDB接続を開き、全依存関係をワイヤリングし、lnでHTTPサーバーを起動する。
// ctxがキャンセルされるとShutdownTimeout以内にグレースフルシャットダウンを行う。
func serve(ctx context.Context, cfg *config.Config, ln net.Listener) error {
	// 1. DB接続
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		ln.Close()
		return err
	}
	defer db.Close()

	// 2. 起動時マイグレーション（AUTO_MIGRATE=true の場合のみ）
	if cfg.AutoMigrate {
		if err := database.MigrateUp(ctx, db, cfg.DatabaseDriver); err != nil {
			ln.Close()
			return fmt.Errorf("auto migration failed: %w", err)
		}
		slog.Info("database migrations applied on startup")
	}

	// 3. ルーターの構築
	reg := newRegistry()
	rlConfig := middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitWrite)
	rlConfig.TrustedProxies = cfg.TrustedProxies
	rl := middleware.NewRateLimiter(rlConfig)
	defer rl.Stop()

	router := newRouter(cfg, db, reg, rl)

	// 4. HTTPサーバーの起動
	server := &http.Server{
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", ln.Addr().String()))
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// openDatabase は接続プールを開き、疎通を確認する。
func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.PoolConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established", slog.String("driver", cfg.DatabaseDriver))
	return db, nil
}

// newRegistry はアプリケーション用のPrometheusレジストリを生成する。
// Goランタイムとプロセスのメトリクスも登録する。
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// newRouter はリポジトリ、サービス、ハンドラーをワイヤリングしたHTTPハンドラーを返す。
func newRouter(cfg *config.Config, db *sql.DB, reg *prometheus.Registry, rl *middleware.RateLimiter) http.Handler {
	mc := metrics.NewCollector(reg)

	// リポジトリの初期化
	userRepo := repository.NewSQLUserRepo(db)
	postRepo := repository.NewSQLPostRepo(db)
	followStore := repository.NewFollowStore(db)
	likeStore := repository.NewLikeStore(db)

	return handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rl,
		Metrics:           mc,
		MetricsHandler:    metrics.Handler(reg),
		HealthChecker:     db,

		UserService:   user.NewService(userRepo, mc),
		PostService:   post.NewService(postRepo, mc),
		FollowService: follow.NewService(followStore, mc),
		LikeService:   like.NewService(likeStore, mc),
	})
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(ctx context.Context, cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("driver", cfg.DatabaseDriver),
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(ctx, cfg.DatabaseDriver, cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// healthcheckBaseURL はserveと同じ設定からポートを解決し、ヘルスチェック先のURLを返す。
func healthcheckBaseURL() (string, error) {
	port, err := config.LoadServerPort()
	if err != nil {
		return "", err
	}
	return "http://localhost:" + port, nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(ctx context.Context, baseURL string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// dsnPasswordPattern はキー=値形式の接続文字列やクエリ中のパスワードにマッチする。
var dsnPasswordPattern = regexp.MustCompile(`(?i)(\bpassword\s*=\s*)('(?:[^'\\]|\\.)*'|[^\s&]+)`)

// maskDatabaseURL はデータベース接続文字列の認証情報をマスクする。
// URL形式ではユーザー情報を、キー=値形式ではpasswordの値を伏せる。
func maskDatabaseURL(raw string) string {
	masked := raw
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		if u.User != nil {
			u.User = url.User("***")
		}
		masked = u.String()
	}
	return dsnPasswordPattern.ReplaceAllString(masked, "${1}***")
}
