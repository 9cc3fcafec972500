package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"warfront.io/internal/server"
	"warfront.io/internal/tuning"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (empty: built-in defaults)")
		adminKey   = flag.String("admin_key", "", "shared secret for admin endpoints (or WF_ADMIN_KEY)")
		alertURL   = flag.String("alert_url", "", "webhook for operator alerts (or WF_ALERT_URL)")
		lobbyTime  = flag.Duration("lobby_time", 30*time.Second, "lobby countdown before a game starts")
		prod       = flag.Bool("prod", false, "production mode (enforces one seat per persistent id)")
		noArchive  = flag.Bool("disable_archive", false, "disable the finished-game archive")
	)
	flag.Parse()

	logger := newLogger(*dataDir)
	defer func() { _ = logger.Sync() }()

	t := tuning.Defaults()
	if p := strings.TrimSpace(*tuningPath); p != "" {
		var err error
		if t, err = tuning.Load(p); err != nil {
			logger.Fatal("load tuning", zap.Error(err))
		}
	}

	key := strings.TrimSpace(*adminKey)
	if key == "" {
		key = os.Getenv("WF_ADMIN_KEY")
	}
	alert := strings.TrimSpace(*alertURL)
	if alert == "" {
		alert = os.Getenv("WF_ALERT_URL")
	}

	archiveDir := ""
	if !*noArchive {
		archiveDir = filepath.Join(*dataDir, "archive")
	}

	mgr, err := server.NewManager(server.ManagerConfig{
		Tuning:     t,
		Production: *prod,
		AlertURL:   alert,
		LobbyTime:  *lobbyTime,
		ArchiveDir: archiveDir,
	}, logger)
	if err != nil {
		logger.Fatal("init manager", zap.Error(err))
	}
	defer func() { _ = mgr.Close() }()

	ws := server.NewWSHandler(mgr, logger)
	api := server.NewAPI(mgr, ws, key, logger)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", zap.String("addr", *addr), zap.Int("workers", t.Workers))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// newLogger writes JSON logs to stdout and a size-rotated file.
func newLogger(dataDir string) *zap.Logger {
	_ = os.MkdirAll(filepath.Join(dataDir, "logs"), 0o755)
	rotated := &lumberjack.Logger{
		Filename:   filepath.Join(dataDir, "logs", "server.log"),
		MaxSize:    100, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), zapcore.InfoLevel),
		zapcore.NewCore(enc, zapcore.AddSync(rotated), zapcore.InfoLevel),
	)
	return zap.New(core)
}
