package tgbot

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/risk_monitor/config"
	"github.com/KotFed0t/risk_monitor/internal/transport/telegram"
	customMW "github.com/KotFed0t/risk_monitor/internal/transport/telegram/middleware"
	"github.com/KotFed0t/risk_monitor/utils"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

type TGBot struct {
	bot         *tele.Bot
	ctrl        *telegram.Controller
	alertChatID int64
}

func New(cfg *config.Config, ctrl *telegram.Controller) *TGBot {
	settings := tele.Settings{
		URL:    cfg.Telegram.ApiURL,
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
	}

	b, err := newBot(settings, ctrl, cfg.Telegram.AlertChatID)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return b
}

func newBot(settings tele.Settings, ctrl *telegram.Controller, alertChatID int64) (*TGBot, error) {
	b, err := tele.NewBot(settings)
	if err != nil {
		return nil, err
	}

	return &TGBot{bot: b, ctrl: ctrl, alertChatID: alertChatID}, nil
}

func (b *TGBot) Start() {
	b.bot.Use(middleware.Recover(), customMW.Logger())

	b.setupRoutes()

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

// Send posts text to the alert chat.
func (b *TGBot) Send(ctx context.Context, text string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TGBot.Send"

	_, err := b.bot.Send(tele.ChatID(b.alertChatID), text)
	if err != nil {
		slog.Error("got error from bot.Send", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("chatID", b.alertChatID), slog.String("err", err.Error()))
		return err
	}
	return nil
}

func (b *TGBot) setupRoutes() {
	b.bot.Handle("/start", b.ctrl.Start)

	b.bot.Handle("/status", b.ctrl.Status)

	b.bot.Handle("/export", b.ctrl.Export)
}
