package utils

import (
	"context"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

type rqIDKey struct{}

func GetRequestIDFromCtx(ctx context.Context) string {
	rqID, ok := ctx.Value(rqIDKey{}).(string)
	if !ok {
		return ""
	}
	return rqID
}

// CreateCtxWithRqID keeps an already assigned request id so nested
// operations log under the id of the action that started them.
func CreateCtxWithRqID(ctx context.Context) context.Context {
	if GetRequestIDFromCtx(ctx) != "" {
		return ctx
	}
	return context.WithValue(ctx, rqIDKey{}, uuid.NewString())
}

// CreateCtxFromTele starts a context carrying the request id that the
// telegram logger middleware stored on c.
func CreateCtxFromTele(c tele.Context) context.Context {
	rqID, ok := c.Get("rqID").(string)
	if !ok {
		return context.WithValue(context.Background(), rqIDKey{}, uuid.NewString())
	}
	return context.WithValue(context.Background(), rqIDKey{}, rqID)
}
