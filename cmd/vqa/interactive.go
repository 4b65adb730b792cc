package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vqa/cmd/vqa/form"
	"vqa/internal/config"
	"vqa/internal/logging"
	"vqa/internal/speech"
	"vqa/internal/submission"
)

// runForm opens the interactive form.
func runForm(cmd *cobra.Command, args []string) error {
	path := resolveConfigPath()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logging.Initialize(filepath.Dir(path), cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: %v\n", err)
	}
	defer logging.CloseAll()
	logging.Boot("starting form",
		zap.String("config", path),
		zap.String("endpoint", cfg.Client.Endpoint),
		zap.String("logs", logging.Dir()))
	logging.BootDebug("form options",
		zap.String("theme", cfg.UI.Theme),
		zap.Int("word_wrap", cfg.UI.WordWrap),
		zap.Bool("speech", cfg.Speech.Enabled),
		zap.Duration("request_timeout", cfg.GetRequestTimeout()))

	speaker := setupSpeech(cfg)

	client := submission.NewClient(cfg.Client.Endpoint,
		submission.WithClientLogger(logging.Get(logging.CategorySubmission)))
	notifier := submission.NewChanNotifier(4)
	ctrl := submission.NewController(client,
		submission.WithNotifier(notifier),
		submission.WithLogger(logging.Get(logging.CategorySubmission)),
		submission.WithTimeout(cfg.GetRequestTimeout()),
	)
	defer traceSubmission(ctrl, logging.Get(logging.CategorySubmission))()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startDir, _ := os.Getwd()
	m := form.New(form.Options{
		Context:       ctx,
		Controller:    ctrl,
		Client:        client,
		Notifications: notifier.C,
		Speaker:       speaker,
		Theme:         cfg.UI.Theme,
		WordWrap:      cfg.UI.WordWrap,
		StartDir:      startDir,
		Logger:        logging.Get(logging.CategoryUI),
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))

	go watchConfig(ctx, path, p)

	_, err = p.Run()
	if speaker != nil {
		speaker.Cancel()
	}
	logging.Boot("form closed")
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("form exited: %w", err)
	}
	return nil
}

// setupSpeech configures the process-wide speaker. It returns nil when
// speech is disabled or no synthesizer is installed.
func setupSpeech(cfg *config.Config) *speech.Speaker {
	log := logging.Get(logging.CategorySpeech)
	if !cfg.Speech.Enabled {
		log.Info("speech disabled")
		return nil
	}

	command := cfg.Speech.Command
	if command == "" {
		detected, ok := speech.DetectCommand()
		if !ok {
			log.Info("no speech synthesizer found on PATH")
			return nil
		}
		command = detected
	}

	speech.SetDefaultSynthesizer(speech.CommandSynthesizer{Command: command, Args: cfg.Speech.Args})
	speech.Default().SetLogger(log)
	log.Info("speech enabled", zap.String("command", command))
	return speech.Default()
}

// watchConfig forwards config file changes to the running form.
func watchConfig(ctx context.Context, path string, p *tea.Program) {
	log := logging.Get(logging.CategoryConfig)
	err := config.Watch(ctx, path,
		func(c *config.Config) {
			if endpoint != "" {
				c.Client.Endpoint = endpoint
			}
			log.Info("config reloaded", zap.String("path", path))
			p.Send(form.ConfigChangedMsg{Config: c})
		},
		func(err error) {
			log.Warn("config reload failed", zap.Error(err))
		},
	)
	if err != nil {
		log.Info("config watch unavailable", zap.Error(err))
	}
}
