package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/bryanwahyu/esr-tracker/src/app/scoreboard"
	"github.com/bryanwahyu/esr-tracker/src/app/tracker"
	"github.com/bryanwahyu/esr-tracker/src/infra/config"
	"github.com/bryanwahyu/esr-tracker/src/infra/csvstore"
	"github.com/bryanwahyu/esr-tracker/src/infra/logging"
)

const (
	configFlag   = "config"
	dataDirFlag  = "data-dir"
	strictFlag   = "strict"
	recoverFlag  = "recover"
	logLevelFlag = "log-level"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "esrctl",
		Usage: "Manage e-sports teams, games and match results",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    configFlag,
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"ESR_CONFIG"},
				Value:   "esr.yaml",
			},
			&cli.StringFlag{
				Name:  dataDirFlag,
				Usage: "directory holding teams.csv, games.csv and matches.csv",
			},
			&cli.BoolFlag{
				Name:  strictFlag,
				Usage: "reject matches that name unknown games or teams, or carry a bad date",
			},
			&cli.BoolFlag{
				Name:  recoverFlag,
				Usage: "quarantine corrupt data files instead of refusing to start",
			},
			&cli.StringFlag{
				Name:  logLevelFlag,
				Usage: "log level (debug, info, warn, error)",
				Value: "warn",
			},
		},
		Commands: []*cli.Command{
			teamCommand(),
			gameCommand(),
			matchCommand(),
			scoreboardCommand(),
			exportCommand(),
		},
	}
}

// env is what every command needs once configuration is resolved.
type env struct {
	cfg    config.Config
	logger *zap.Logger
	store  *tracker.Store
	board  *scoreboard.Service
	now    func() time.Time
}

func openEnv(c *cli.Context) (*env, error) {
	cfg, err := config.Load(c.String(configFlag))
	if err != nil {
		return nil, err
	}
	if c.IsSet(dataDirFlag) {
		cfg.DataDir = c.String(dataDirFlag)
	}
	if c.IsSet(strictFlag) {
		cfg.Store.Strict = c.Bool(strictFlag)
	}
	if c.IsSet(recoverFlag) {
		cfg.Store.Recover = c.Bool(recoverFlag)
	}
	// Console output stays at warn unless asked; a configured log file keeps its level.
	if c.IsSet(logLevelFlag) || cfg.Log.File == "" {
		cfg.Log.Level = c.String(logLevelFlag)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	store, err := tracker.Open(c.Context, csvstore.NewFSStore(cfg.DataDir), tracker.Options{
		StrictReferences: cfg.Store.Strict,
		RecoverCorrupt:   cfg.Store.Recover,
		Logger:           logger,
	})
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:    cfg,
		logger: logger,
		store:  store,
		board:  scoreboard.NewService(store, cfg.RecentLimit),
		now:    time.Now,
	}, nil
}

// action opens the store before running fn.
func action(fn func(c *cli.Context, e *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := openEnv(c)
		if err != nil {
			return err
		}
		defer func() { _ = e.logger.Sync() }()
		return fn(c, e)
	}
}

// argument returns the trimmed positional argument i.
func argument(c *cli.Context, i int, name string) (string, error) {
	v := strings.TrimSpace(c.Args().Get(i))
	if v == "" {
		return "", fmt.Errorf("missing %s argument", name)
	}
	return v, nil
}
