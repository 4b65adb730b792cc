package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vqa/cmd/vqa/ui"
	"vqa/internal/submission"
)

var askFile string

// errNotified marks a failure already reported through the notifier.
var errNotified = errors.New("ask failed")

// askCmd performs one submission without the form
var askCmd = &cobra.Command{
	Use:   "ask --file PATH QUESTION...",
	Short: "Ask one question about a file and print the answer",
	Long: `Submits the file and question to the inference endpoint exactly like the
form's Ask button and prints the markdown answer. On failure the notification
is printed to stderr and the command exits non-zero.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	subLog := submissionLogger()
	client := submission.NewClient(cfg.Client.Endpoint, submission.WithClientLogger(subLog))
	ctrl := submission.NewController(client,
		submission.WithNotifier(submission.WriterNotifier{W: cmd.ErrOrStderr()}),
		submission.WithLogger(subLog),
		submission.WithTimeout(cfg.GetRequestTimeout()),
	)
	defer traceSubmission(ctrl, subLog)()

	f, err := submission.FileFromPath(askFile)
	if err != nil {
		return err
	}
	ctrl.SelectFile(f)
	ctrl.SetQuestion(joinArgs(args))

	logger.Debug("asking",
		zap.String("endpoint", cfg.Client.Endpoint),
		zap.String("file", f.Name),
		zap.String("content_type", f.ContentType))

	answer, err := ctrl.Submit(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", errNotified, err)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(ui.ThemeFor(cfg.UI.Theme).GlamourStyle()),
		glamour.WithWordWrap(cfg.UI.WordWrap),
	)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	}
	out, err := renderer.Render(answer)
	if err != nil {
		out = answer + "\n"
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// submissionLogger keeps submission logs off stderr unless --verbose is
// set, so a failure is only shown once, by the notifier.
func submissionLogger() *zap.Logger {
	if verbose && logger != nil {
		return logger
	}
	return zap.NewNop()
}

// traceSubmission logs every phase change of ctrl at Debug level.
func traceSubmission(ctrl *submission.Controller, log *zap.Logger) (unsubscribe func()) {
	last := ctrl.State().Phase
	return ctrl.Subscribe(func(s submission.State) {
		if s.Phase == last {
			return
		}
		log.Debug("submission phase",
			zap.Stringer("from", last),
			zap.Stringer("to", s.Phase),
			zap.Bool("submitting", s.IsSubmitting))
		last = s.Phase
	})
}
