package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"hdhr-tui/internal/config"
	"hdhr-tui/internal/lineup"
	"hdhr-tui/internal/logging"
	"hdhr-tui/internal/player"
	"hdhr-tui/internal/ui"
)

const userAgent = "hdhr-tui/1.0"

func main() {
	os.Exit(run())
}

func run() int {
	configPath, err := config.ResolvePath(os.Getenv(config.EnvConfig))
	if err != nil {
		fmt.Fprintf(os.Stderr, "hdhr: %v\n", err)
		return 1
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hdhr: %v\n", err)
		return 1
	}

	var notice string
	log, closeLog, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		notice = "Logging disabled: " + err.Error()
	}
	defer func() { _ = closeLog() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := lineup.NewClient(cfg.LineupURL, userAgent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hdhr: %v\n", err)
		return 1
	}

	launcher := player.NewExecLauncher(cfg.Player)
	playerPath, playerErr := launcher.Resolve()
	if playerErr != nil {
		log.WithError(playerErr).Warn("no media player found")
	} else {
		log.WithField("player", playerPath).Info("using media player")
	}

	controller := player.NewController(launcher, log)
	defer controller.Stop()

	log.WithField("url", client.URL()).Info("fetching lineup")
	results := lineup.Start(ctx, client)

	updates, err := config.Watch(ctx, configPath, log)
	if err != nil {
		log.WithError(err).Warn("config watcher disabled")
	}

	model := ui.NewModel(ui.Options{
		Player:        controller,
		Lineup:        results,
		ConfigUpdates: updates,
		ConfigPath:    configPath,
		LineupURL:     client.URL(),
		ThemeName:     cfg.Theme,
		PlayerErr:     playerErr,
		Notice:        notice,
		Logger:        log,
	})

	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			log.Info("stopped by signal")
			return 0
		}
		log.WithError(err).Error("ui exited with error")
		fmt.Fprintf(os.Stderr, "hdhr: %v\n", err)
		return 1
	}
	log.Info("bye")
	return 0
}
