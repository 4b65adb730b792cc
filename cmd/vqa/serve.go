package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"vqa/internal/inference"
	"vqa/internal/logging"
)

var listenAddr string

// serveCmd runs the reference inference server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the VQA inference server backed by Gemini",
	Long: `Serves POST /vqa (multipart "file" and "question") and answers with the
configured Gemini model. Requires GEMINI_API_KEY or gemini.api_key.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Server.Listen = listenAddr
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	if err := logging.Initialize(filepath.Dir(resolveConfigPath()), cfg.Logging); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "[logging] Warning: %v\n", err)
	}
	defer logging.CloseAll()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	answerer, err := inference.NewGeminiAnswerer(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		return err
	}

	srv := inference.NewServer(answerer,
		inference.WithLogger(serverLogger(logger)),
		inference.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
		inference.WithMaxUploadBytes(cfg.MaxUploadBytes()),
	)

	logger.Info("starting inference server",
		zap.String("listen", cfg.Server.Listen),
		zap.String("model", answerer.Model()),
		zap.Strings("allowed_origins", cfg.Server.AllowedOrigins),
		zap.Bool("debug_log", logging.IsDebugMode()),
		zap.String("logs", logging.Dir()))
	return srv.ListenAndServe(ctx, cfg.Server.Listen)
}

// serverLogger also writes to the server category log file when debug_mode
// is on.
func serverLogger(base *zap.Logger) *zap.Logger {
	if !logging.IsCategoryEnabled(logging.CategoryServer) {
		return base
	}
	return logging.Get(logging.CategoryServer).WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, base.Core())
	}))
}
