package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"treasurehunt/pkg/config"
	"treasurehunt/pkg/core"
	"treasurehunt/pkg/monitor"
	"treasurehunt/pkg/storage"
)

const historyFile = "history.db"

// globalFlags 对所有子命令生效，覆盖配置文件
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	dataDir    string
}

// app 是命令执行期间共享的依赖
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *monitor.Metrics
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	gf := &globalFlags{}
	hf := &huntFlags{}

	root := &cobra.Command{
		Use:   "treasurehunt [R G T]",
		Short: "Concurrent treasure search over a partitioned region map",
		Long: `Places T treasures in R regions and lets G groups search the regions concurrently.
Each group scans one contiguous partition; the discoveries are collected into one report.

Without arguments, R G T are taken from the configuration file.`,
		Args:          cobra.RangeArgs(0, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(gf, cmd.ErrOrStderr())
			if err != nil {
				return reportErr(cmd, err)
			}
			return reportErr(cmd, runHunt(cmd, a, hf, args))
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&gf.configPath, "config", "", "path to YAML config (default: configs/treasurehunt.yaml or ./treasurehunt.yaml)")
	pf.StringVar(&gf.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&gf.logFormat, "log-format", "", "log format: text or json")
	pf.StringVar(&gf.dataDir, "data", "", "directory for run history")

	hf.register(root)

	root.AddCommand(
		newServeCmd(gf),
		newHistoryCmd(gf),
		newReplayCmd(),
		newPartitionsCmd(),
	)
	return root
}

func loadApp(gf *globalFlags, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(gf.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if gf.logLevel != "" {
		cfg.Log.Level = gf.logLevel
	}
	if gf.logFormat != "" {
		cfg.Log.Format = gf.logFormat
	}
	if gf.dataDir != "" {
		cfg.Storage.Path = gf.dataDir
	}

	logger, err := monitor.NewLogger(cfg.Log.Level, cfg.Log.Format, logOut)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, metrics: monitor.NewMetrics()}, nil
}

func (a *app) openHistory() (*storage.SQLiteHistory, error) {
	if a.cfg.Storage.Path == "" {
		return nil, errors.New("storage path is empty")
	}
	if err := os.MkdirAll(a.cfg.Storage.Path, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(a.cfg.Storage.Path, historyFile)
	h, err := storage.OpenSQLiteHistory(path)
	if err != nil {
		return nil, err
	}
	if mode := h.JournalMode(); !strings.EqualFold(mode, "wal") {
		a.logger.Warn("history database is not in WAL mode", "path", path, "journal_mode", mode)
	}
	return h, nil
}

// usage 沿用原始命令行的参数说明
func usage() string {
	return fmt.Sprintf(`Expected command format:
   treasurehunt <R> <G> <T>
where:
   R - amount of regions   - integer in range [1, %d]
   G - amount of groups    - integer in range [1, R]
   T - amount of treasures - integer in range [1, R]`, core.MaxRegions)
}

func reportErr(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error! %v\n", err)
	if errors.Is(err, core.ErrInvalidParams) || errors.Is(err, errBadArgs) {
		fmt.Fprintln(cmd.ErrOrStderr(), usage())
	}
	return err
}
