package notifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwbot/internal/eventbus"
	kit "hwbot/internal/transport"
	logx "hwbot/pkg/logx"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	to   []kit.ChatTarget
	err  error
}

func (f *fakeSender) SendText(_ context.Context, to kit.ChatTarget, text string, _ *kit.SendOptions) (kit.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return kit.MessageRef{}, f.err
	}
	f.sent = append(f.sent, text)
	f.to = append(f.to, to)
	return kit.MessageRef{ChatID: to.ChatID, MessageID: len(f.sent)}, nil
}

func TestNotifySendsToTarget(t *testing.T) {
	bus := eventbus.New()
	events, unsub := bus.Subscribe(4)
	defer unsub()

	sender := &fakeSender{}
	target := kit.ChatTarget{ChatID: 42, ThreadID: 7}
	svc := New(Config{RatePerSec: 1000}, sender, target, logx.Nop(), bus)

	svc.Notify(context.Background(), "hello")

	require.Equal(t, []string{"hello"}, sender.sent)
	assert.Equal(t, target, sender.to[0])

	ev := <-events
	assert.Equal(t, eventbus.TypeNotifierSent, ev.Type)
	data, ok := ev.Data.(NotificationEvent)
	require.True(t, ok)
	assert.Equal(t, int64(42), data.ChatID)
	assert.Equal(t, 7, data.ThreadID)
	assert.Empty(t, data.Error)

	hist := svc.Snapshot()
	require.Len(t, hist, 1)
	assert.Equal(t, "hello", hist[0].Text)
}

func TestNotifyFailureIsSwallowedAndLogged(t *testing.T) {
	bus := eventbus.New()
	events, unsub := bus.Subscribe(4)
	defer unsub()

	var buf bytes.Buffer
	sender := &fakeSender{err: errors.New("telegram: chat not found (400)")}
	svc := New(Config{}, sender, kit.ChatTarget{ChatID: 1}, logx.NewJSON(&buf, "DEBUG"), bus)

	assert.NotPanics(t, func() { svc.Notify(context.Background(), "hello") })

	assert.Contains(t, buf.String(), "notification delivery failed")
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Empty(t, svc.Snapshot())

	ev := <-events
	assert.Equal(t, eventbus.TypeNotifierFailed, ev.Type)
	assert.Contains(t, ev.Data.(NotificationEvent).Error, "chat not found")
}

func TestNotifyCancelledWhileRateLimited(t *testing.T) {
	sender := &fakeSender{}
	svc := New(Config{RatePerSec: 1}, sender, kit.ChatTarget{ChatID: 1}, logx.Nop(), nil)

	svc.Notify(context.Background(), "first")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	svc.Notify(ctx, "second")

	assert.Equal(t, []string{"first"}, sender.sent)
}

func TestHistoryIsBounded(t *testing.T) {
	sender := &fakeSender{}
	svc := New(Config{RatePerSec: 10000}, sender, kit.ChatTarget{ChatID: 1}, logx.Nop(), nil)

	for i := 0; i < historyLimit+5; i++ {
		svc.Notify(context.Background(), fmt.Sprintf("n%d", i))
	}

	hist := svc.Snapshot()
	require.Len(t, hist, historyLimit)
	assert.Equal(t, "n5", hist[0].Text)
	assert.Equal(t, fmt.Sprintf("n%d", historyLimit+4), hist[len(hist)-1].Text)
}
