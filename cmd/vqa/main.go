package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"vqa/internal/config"
	"vqa/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	endpoint   string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vqa",
	Short: "vqa - ask questions about images from the terminal",
	Long: `vqa is a visual question answering client.

Pick a file, type a question and the answer comes back as markdown from the
configured inference endpoint. Hover the answer with the mouse to hear it.

Run without arguments to open the interactive form.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The form owns the terminal; it logs through internal/logging.
		if cmd == cmd.Root() {
			logger = zap.NewNop()
			return nil
		}

		// Initialize logger
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runForm(cmd, args)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: .vqa/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "Inference endpoint URL (or set VQA_ENDPOINT)")

	askCmd.Flags().StringVarP(&askFile, "file", "f", "", "File to ask about (required)")
	_ = askCmd.MarkFlagRequired("file")

	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "Listen address (default from config, :8000)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if msg := exitMessage(err); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(1)
	}
}

// exitMessage returns what main prints for err. Failures the notifier has
// already shown print nothing more.
func exitMessage(err error) string {
	if errors.Is(err, errNotified) {
		return ""
	}
	return "Error: " + err.Error()
}

// resolveConfigPath returns --config or the default location.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

// loadConfig loads the config file and applies the --endpoint flag on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, err
	}
	if endpoint != "" {
		cfg.Client.Endpoint = endpoint
	}
	return cfg, nil
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
