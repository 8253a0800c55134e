package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/KotFed0t/risk_monitor/config"
	"github.com/KotFed0t/risk_monitor/internal/externalApi/riskApi"
	"github.com/KotFed0t/risk_monitor/internal/metrics"
	"github.com/KotFed0t/risk_monitor/internal/reportGenerator/xlsxGenerator"
	"github.com/KotFed0t/risk_monitor/internal/scheduler"
	"github.com/KotFed0t/risk_monitor/internal/service/alertService"
	"github.com/KotFed0t/risk_monitor/internal/service/exportService"
	"github.com/KotFed0t/risk_monitor/internal/service/monitorService"
	"github.com/KotFed0t/risk_monitor/internal/service/positionForm"
	"github.com/KotFed0t/risk_monitor/internal/tgbot"
	"github.com/KotFed0t/risk_monitor/internal/transport/telegram"
	"github.com/KotFed0t/risk_monitor/internal/transport/tui"
)

func main() {
	cfg := config.MustLoad()

	logFile := setupLogger(cfg)
	defer logFile.Close()

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		m.Serve(ctx, cfg.Metrics.Addr)
	}

	riskApiClient := riskApi.New(cfg)

	sched := scheduler.New()
	sched.Start()
	defer sched.Stop()

	monitorSrv := monitorService.New(riskApiClient, sched, m, cfg.Jobs.PollInterval)
	defer monitorSrv.Close()

	form := positionForm.New(riskApiClient, monitorSrv, m)

	reportGenerator := xlsxGenerator.New()
	exportSrv := exportService.New(reportGenerator, cfg.Export.Dir)

	if cfg.Telegram.Enabled() {
		tgController := telegram.NewController(cfg, monitorSrv, reportGenerator)
		tgBot := tgbot.New(cfg, tgController)
		tgBot.Start()
		defer tgBot.Stop()

		if cfg.Telegram.AlertsEnabled() {
			alertSrv := alertService.New(tgBot)
			alertSrv.Start()
			defer alertSrv.Stop()
			monitorSrv.Subscribe(alertSrv.OnState)
		}
	}

	p := tea.NewProgram(tui.NewModel(monitorSrv, form, exportSrv), tea.WithAltScreen())

	monitorSrv.Subscribe(func(st monitorService.State) {
		p.Send(tui.StateMsg{State: st})
	})

	go func() {
		// a failure is kept in the monitor state and shown by the view
		_ = monitorSrv.Init(ctx)
	}()

	if _, err := p.Run(); err != nil {
		slog.Error("tui stopped with error", slog.String("err", err.Error()))
	}
}

// setupLogger writes JSON logs to cfg.LogFile, stdout belongs to the terminal UI.
func setupLogger(cfg *config.Config) io.Closer {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("open log file error: %s", err)
	}

	log := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)

	return f
}
