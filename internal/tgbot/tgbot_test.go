package tgbot

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func TestSend_PostsToAlertChat(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"},"text":"hi"}}`))
	}))
	defer srv.Close()

	b, err := newBot(tele.Settings{URL: srv.URL, Token: "token", Offline: true}, nil, 42)
	require.NoError(t, err)

	require.NoError(t, b.Send(context.Background(), "margin call"))

	assert.True(t, strings.HasSuffix(gotPath, "/sendMessage"))
	assert.Contains(t, gotBody, "42")
	assert.Contains(t, gotBody, "margin call")
}

func TestSend_ApiError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	b, err := newBot(tele.Settings{URL: srv.URL, Token: "token", Offline: true}, nil, 1)
	require.NoError(t, err)

	assert.Error(t, b.Send(context.Background(), "margin call"))
}

