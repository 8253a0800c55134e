package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

// Logger tags every update with a request id, which handlers pick up through
// utils.CreateCtxFromTele, and logs the command with its outcome.
func Logger() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			rqID := uuid.NewString()
			c.Set("rqID", rqID)

			attrs := []any{slog.String("rqID", rqID), slog.String("command", command(c.Text()))}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.Int64("chatID", chat.ID))
			}
			slog.Info("bot command received", attrs...)

			start := time.Now()
			err := next(c)
			attrs = append(attrs, slog.Duration("took", time.Since(start)))

			if err != nil {
				slog.Error("bot command failed", append(attrs, slog.String("err", err.Error()))...)
				return err
			}
			slog.Info("bot command handled", attrs...)
			return nil
		}
	}
}

// command drops arguments and the bot mention: "/status@risk_bot now" is "/status".
func command(text string) string {
	cmd, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd
}
