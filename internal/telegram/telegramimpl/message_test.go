package telegramimpl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/giveaway-telegram-bot/internal/domain"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/config"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/logger"
)

const okMessage = `{"ok":true,"result":{"message_id":%d,"date":0,"chat":{"id":-1001,"type":"channel"}}}`

// fakeBotAPI answers getMe and replies to sendPhoto with photoReply.
type fakeBotAPI struct {
	photoReply string

	mu    sync.Mutex
	calls []string
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	f.mu.Lock()
	f.calls = append(f.calls, method)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch method {
	case "getMe":
		fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Giveaways","username":"giveaway_bot"}}`)
	case "sendPhoto":
		fmt.Fprint(w, f.photoReply)
	case "sendMessage":
		fmt.Fprintf(w, okMessage, 20)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeBotAPI) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

func newTestTelegram(t *testing.T, api *fakeBotAPI) *TelegramImpl {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint("123:abc", srv.URL+"/bot%s/%s")
	if err != nil {
		t.Fatalf("NewBotAPIWithAPIEndpoint: %v", err)
	}
	return &TelegramImpl{TgBot: bot, Logger: logger.NewNop(), Config: &config.Config{}}
}

func TestSendNotificationPhotoFallback(t *testing.T) {
	n := domain.Notification{Text: "*Widget Pro*", PhotoURL: "https://img.test/w.jpg"}

	tests := []struct {
		name         string
		photoReply   string
		wantID       int
		wantErr      bool
		wantMessages int
	}{
		{
			name:         "photo sent",
			photoReply:   fmt.Sprintf(okMessage, 10),
			wantID:       10,
			wantMessages: 0,
		},
		{
			name:         "photo url rejected",
			photoReply:   `{"ok":false,"error_code":400,"description":"Bad Request: wrong file identifier/HTTP URL specified"}`,
			wantID:       20,
			wantMessages: 1,
		},
		{
			name:         "rate limited",
			photoReply:   `{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 5","parameters":{"retry_after":5}}`,
			wantErr:      true,
			wantMessages: 0,
		},
		{
			name:         "chat not found",
			photoReply:   `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`,
			wantErr:      true,
			wantMessages: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeBotAPI{photoReply: tt.photoReply}
			tg := newTestTelegram(t, api)

			id, err := tg.SendNotification(context.Background(), -1001, n)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SendNotification error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && id != tt.wantID {
				t.Errorf("message id = %d, want %d", id, tt.wantID)
			}
			if got := api.count("sendMessage"); got != tt.wantMessages {
				t.Errorf("sendMessage calls = %d, want %d", got, tt.wantMessages)
			}
		})
	}
}

func TestIsPhotoRejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"bad url", &tgbotapi.Error{Code: 400, Message: "Bad Request: failed to get HTTP URL content"}, true},
		{"wrapped", fmt.Errorf("send: %w", &tgbotapi.Error{Code: 400, Message: "Bad Request: IMAGE_PROCESS_FAILED"}), true},
		{"too many requests", &tgbotapi.Error{Code: 429, Message: "Too Many Requests: retry after 5"}, false},
		{"other bad request", &tgbotapi.Error{Code: 400, Message: "Bad Request: can't parse entities"}, false},
		{"network", errors.New("context deadline exceeded"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isPhotoRejected(tt.err); got != tt.want {
				t.Errorf("isPhotoRejected = %v, want %v", got, tt.want)
			}
		})
	}
}
