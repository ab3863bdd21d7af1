package main

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/quesurifn/git-calendar-server/history"
	"github.com/quesurifn/git-calendar-server/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfg    appConfig
	logger = zap.NewNop()

	configFile string
	debug      bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "gitcal",
	Short: "Calendar views of git histories",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if logger, err = newLogger(debug, logLevel); err != nil {
			return err
		}

		loader := config.New(&config.Settings{ENVPrefix: "GITCAL", Debug: debug, Logger: logger})
		if err := loader.Load(&cfg, configFile); err != nil {
			return err
		}
		cfg.Env = loader.GetEnvironment()
		applyFlags(cmd)
		return nil
	},
	SilenceUsage: true,
}

// overrides holds flag values that win over the config file when set.
var overrides struct {
	port        string
	url         string
	tmp         string
	depth       int
	timeAllowed int64
	allowLocal  bool
}

func applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port = overrides.port
	}
	if flags.Changed("url") {
		cfg.Repo.URL = overrides.url
	}
	if flags.Changed("tmp") {
		cfg.Repo.TmpDir = overrides.tmp
	}
	if flags.Changed("clone-depth") {
		cfg.Repo.Depth = overrides.depth
	}
	if flags.Changed("time-allowed") {
		cfg.Repo.TimeAllowed = overrides.timeAllowed
	}
	if flags.Changed("allow-local") {
		cfg.Server.AllowLocal = overrides.allowLocal
	}
}

func newLogger(debug bool, level string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if debug {
		zc = zap.NewDevelopmentConfig()
	}
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("--log: %w", err)
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zc.Build()
}

func newService() *history.Service {
	return history.NewService(history.Options{
		TmpDir:      cfg.Repo.TmpDir,
		Depth:       cfg.Repo.Depth,
		TimeAllowed: cfg.Repo.TimeAllowed,
	}, logger)
}

func location() (*time.Location, error) {
	if cfg.Server.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(cfg.Server.Timezone)
}

func addRepoFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&overrides.url, "url", "u", "", "repository URL (file:, http(s):, ssh: or git@host:path)")
	cmd.Flags().StringVar(&overrides.tmp, "tmp", "", "directory holding clones of remote repositories")
	cmd.Flags().IntVarP(&overrides.depth, "clone-depth", "d", 0, "commits to fetch when cloning")
	cmd.Flags().Int64VarP(&overrides.timeAllowed, "time-allowed", "t", 0, "longest gap in seconds between commits of one session")
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yml", "config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug Mode")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd, eventsCmd, reportCmd)
}

func main() {
	err := rootCmd.Execute()

	if serr := logger.Sync(); serr != nil && !errors.Is(serr, syscall.ENOTTY) && !errors.Is(serr, syscall.EINVAL) {
		os.Stderr.WriteString(serr.Error() + "\n")
	}
	if err != nil {
		os.Exit(-1)
	}
}
