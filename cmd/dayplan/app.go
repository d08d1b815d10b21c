package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sandeepkv93/dayplan/internal/config"
	"github.com/sandeepkv93/dayplan/internal/planner"
	"github.com/sandeepkv93/dayplan/internal/scheduler"
	"github.com/sandeepkv93/dayplan/internal/storage"
)

// app carries the wiring shared by every command.
type app struct {
	v        *viper.Viper
	cfgFile  string
	cfg      config.RuntimeConfig
	logger   *slog.Logger
	closeLog func() error
	repo     *storage.SQLiteRepository
	service  *planner.Service
	now      func() time.Time
}

func newApp() *app {
	return &app{v: viper.New(), now: time.Now}
}

// setup loads .env, config and logging, then opens the database. logOut
// receives log records when no log file is configured.
func (a *app) setup(logOut io.Writer) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	logger, closeLog, err := config.NewLogger(cfg, logOut)
	if err != nil {
		return err
	}
	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		_ = closeLog()
		return err
	}

	engine := scheduler.NewEngine(scheduler.WithClock(a.now), scheduler.WithLogger(logger))
	a.cfg = cfg
	a.logger = logger
	a.closeLog = closeLog
	a.repo = repo
	a.service = planner.NewService(repo, engine,
		planner.WithDefaults(cfg.Preferences()),
		planner.WithClock(a.now),
		planner.WithLogger(logger),
	)
	logger.Debug("dayplan ready", "db_path", cfg.DBPath, "work_start", cfg.WorkStart, "work_end", cfg.WorkEnd)
	return nil
}

func (a *app) close() error {
	var errs []error
	if a.repo != nil {
		errs = append(errs, a.repo.Close())
	}
	if a.closeLog != nil {
		errs = append(errs, a.closeLog())
	}
	return errors.Join(errs...)
}

func (a *app) bindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default $XDG_CONFIG_HOME/dayplan/config.yaml)")
	flags.String("db", "", "path to the SQLite database")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("work-start", "", "start of the working day (HH:MM)")
	flags.String("work-end", "", "end of the working day (HH:MM)")

	_ = a.v.BindPFlag("db_path", flags.Lookup("db"))
	_ = a.v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("work_start", flags.Lookup("work-start"))
	_ = a.v.BindPFlag("work_end", flags.Lookup("work-end"))
}
