package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwbot/internal/config"
)

type chatRecorder struct {
	mu    sync.Mutex
	texts []string
}

func (c *chatRecorder) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var payload map[string]any
	_ = json.Unmarshal(body, &payload)
	txt, _ := payload["text"].(string)

	c.mu.Lock()
	c.texts = append(c.texts, txt)
	n := len(c.texts)
	c.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok": true,
		"result": map[string]any{
			"message_id": n,
			"date":       0,
			"chat":       map[string]any{"id": 42, "type": "private"},
			"text":       txt,
		},
	})
}

func (c *chatRecorder) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.texts...)
}

func testEnv(vals map[string]string) func(string) string {
	return func(k string) string { return vals[k] }
}

var fullEnv = map[string]string{
	config.EnvPracticumToken: "p-token",
	config.EnvTelegramToken:  "TEST",
	config.EnvTelegramChatID: "42",
}

func writeConfig(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	p := filepath.Join(t.TempDir(), "hwbot.json")
	require.NoError(t, os.WriteFile(p, b, 0o600))
	return p
}

func TestNewAppRequiresCredentials(t *testing.T) {
	_, err := NewApp(Options{Getenv: testEnv(map[string]string{config.EnvTelegramToken: "x"})})
	require.ErrorIs(t, err, config.ErrMissingCredentials)
	assert.Contains(t, err.Error(), config.EnvPracticumToken)
	assert.Contains(t, err.Error(), config.EnvTelegramChatID)
}

func TestNewAppRejectsBadSchedule(t *testing.T) {
	p := writeConfig(t, map[string]any{"poller": map[string]any{"schedule": "sometimes"}})
	_, err := NewApp(Options{ConfigPath: p, Getenv: testEnv(fullEnv)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poller.schedule")
}

func TestAppPollsAndNotifies(t *testing.T) {
	var auth string
	var authMu sync.Mutex
	practicum := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authMu.Lock()
		auth = r.Header.Get("Authorization")
		authMu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"homeworks":[{"homework_name":"hw1","status":"approved"}],"current_date":%d}`, time.Now().Unix()+60)
	}))
	defer practicum.Close()

	chat := &chatRecorder{}
	botAPI := httptest.NewServer(http.HandlerFunc(chat.handler))
	defer botAPI.Close()

	p := writeConfig(t, map[string]any{
		"practicum": map[string]any{"endpoint": practicum.URL + "/api/user_api/homework_statuses/"},
		"telegram":  map[string]any{"api_url": botAPI.URL},
		"poller":    map[string]any{"schedule": "1h"},
		"logging":   map[string]any{"level": "ERROR", "console": true},
	})
	a, err := NewApp(Options{ConfigPath: p, Getenv: testEnv(fullEnv)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.Start(ctx))

	want := `Изменился статус проверки работы "hw1". Работа проверена: ревьюеру всё понравилось. Ура!`
	require.Eventually(t, func() bool {
		texts := chat.snapshot()
		return len(texts) == 1 && texts[0] == want
	}, 5*time.Second, 20*time.Millisecond)

	authMu.Lock()
	assert.Equal(t, "OAuth p-token", auth)
	authMu.Unlock()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, a.Stop(stopCtx, StopSignal))
	select {
	case <-a.Done():
	default:
		t.Fatal("app context still alive after Stop")
	}

	hist := a.Notifier().Snapshot()
	require.Len(t, hist, 1)
	assert.Equal(t, want, hist[0].Text)
}

func TestRepeatedFailureReachesChatOnce(t *testing.T) {
	var requests atomic.Int32
	practicum := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer practicum.Close()

	chat := &chatRecorder{}
	botAPI := httptest.NewServer(http.HandlerFunc(chat.handler))
	defer botAPI.Close()

	// Telegram log sink on, but no group_log: ERROR lines must not be
	// mirrored into the notice chat.
	p := writeConfig(t, map[string]any{
		"practicum": map[string]any{"endpoint": practicum.URL + "/"},
		"telegram":  map[string]any{"api_url": botAPI.URL},
		"poller":    map[string]any{"schedule": "1s"},
		"logging": map[string]any{
			"level":    "INFO",
			"console":  true,
			"telegram": map[string]any{"enabled": true, "min_level": "ERROR", "rate_per_sec": 10},
		},
	})
	a, err := NewApp(Options{ConfigPath: p, Getenv: testEnv(fullEnv)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.Start(ctx))

	require.Eventually(t, func() bool { return requests.Load() >= 3 }, 10*time.Second, 50*time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, a.Stop(stopCtx, StopSignal))

	texts := chat.snapshot()
	require.Len(t, texts, 1, "chat got %q", texts)
	assert.True(t, strings.HasPrefix(texts[0], "Сбой в работе программы: "), texts[0])
	assert.Contains(t, texts[0], "503")
}
