package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/deepwork/internal/api"
	"github.com/sadopc/deepwork/internal/config"
	"github.com/sadopc/deepwork/internal/store"
	"github.com/sadopc/deepwork/internal/tui"
)

type CLI struct {
	Config  string `short:"c" help:"Configuration file path (default: ~/.config/deepwork/config.yaml)" type:"path"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Run   RunCmd   `cmd:"" default:"1" help:"Start the Deep Work timer"`
	Serve ServeCmd `cmd:"" help:"Serve the focus session API"`
}

type RunCmd struct {
	Backend string `help:"Focus API base URL" env:"DEEPWORK_BACKEND_URL"`
	LogFile string `help:"Write logs to this file instead of discarding them" type:"path"`
}

type ServeCmd struct {
	Addr string `help:"Listen address" env:"DEEPWORK_ADDR"`
	DB   string `help:"SQLite database path" env:"DEEPWORK_DB" type:"path"`
}

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("deepwork"),
		kong.Description("A focus timer that logs Deep Work sessions and charts them."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run(&cli))
}

func (c *CLI) loadConfig() (config.Config, error) {
	path := c.Config
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

func (c *CLI) level() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func (r *RunCmd) Run(cli *CLI) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}
	if r.Backend != "" {
		cfg.BackendURL = r.Backend
	}
	if r.LogFile != "" {
		cfg.LogFile = r.LogFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// The terminal belongs to the TUI, so logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: cli.level()}))
	slog.SetDefault(logger)

	client := api.NewClient(cfg.BackendURL,
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(logger),
	)
	app := tui.NewApp(client, tui.Options{
		DefaultSeconds: cfg.DefaultSeconds(),
		Presets:        cfg.Presets,
		Timeout:        cfg.Timeout(),
		Logger:         logger,
	})

	logger.Info("Starting Deep Work timer", "backend", cfg.BackendURL)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func (s *ServeCmd) Run(cli *CLI) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cli.level()}))
	slog.SetDefault(logger)

	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.ListenAddr = s.Addr
	}
	if s.DB != "" {
		cfg.DBPath = s.DB
	}
	if cfg.DBPath == "" {
		if cfg.DBPath, err = store.DefaultDBPath(); err != nil {
			return err
		}
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()
	logger.Info("Database ready", "path", cfg.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(st,
		api.WithServerLogger(logger),
		api.WithMetrics(api.NewMetrics(nil)),
	)
	return srv.ListenAndServe(ctx, cfg.ListenAddr)
}
