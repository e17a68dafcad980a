package notifier

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"hwbot/internal/eventbus"
	kit "hwbot/internal/transport"
	logx "hwbot/pkg/logx"
)

// Service sends notices to a single chat. It is safe for concurrent use.
type Service struct {
	log     logx.Logger
	sender  kit.Sender
	target  kit.ChatTarget
	bus     eventbus.Bus
	limiter *rate.Limiter

	// In-memory history (debugging only)
	hmu     sync.Mutex
	history []HistoryItem
}

// New builds the notifier. bus may be nil.
func New(cfg Config, sender kit.Sender, target kit.ChatTarget, log logx.Logger, bus eventbus.Bus) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	return &Service{
		log:     log,
		sender:  sender,
		target:  target,
		bus:     bus,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
	}
}

func (s *Service) Target() kit.ChatTarget { return s.target }

// Notify sends text to the target chat. Every failure, including a
// cancelled ctx while waiting for the rate limiter, is logged at ERROR
// and swallowed.
func (s *Service) Notify(ctx context.Context, text string) {
	log := s.log.With(logx.String("chat", s.target.Recipient()))

	if err := s.limiter.Wait(ctx); err != nil {
		log.Error("notification delivery failed", logx.Err(err), logx.String("stage", "rate_limit"))
		s.publish(eventbus.TypeNotifierFailed, text, err)
		return
	}
	if _, err := s.sender.SendText(ctx, s.target, text, &kit.SendOptions{DisablePreview: true}); err != nil {
		log.Error("notification delivery failed", logx.Err(err))
		s.publish(eventbus.TypeNotifierFailed, text, err)
		return
	}

	log.Debug("notification sent", logx.String("text", text))
	s.publish(eventbus.TypeNotifierSent, text, nil)
	s.appendHistory(text)
}

func (s *Service) publish(typ, text string, err error) {
	if s.bus == nil {
		return
	}
	now := time.Now()
	ev := NotificationEvent{ChatID: s.target.ChatID, Username: s.target.Username, ThreadID: s.target.ThreadID, Length: len(text), At: now}
	if err != nil {
		ev.Error = err.Error()
	}
	s.bus.Publish(eventbus.Event{Type: typ, Time: now, Data: ev})
}

// Snapshot returns the delivered notices, oldest first.
func (s *Service) Snapshot() []HistoryItem {
	s.hmu.Lock()
	out := append([]HistoryItem(nil), s.history...)
	s.hmu.Unlock()
	return out
}

func (s *Service) appendHistory(text string) {
	s.hmu.Lock()
	s.history = append(s.history, HistoryItem{At: time.Now(), Text: text})
	if len(s.history) > historyLimit {
		s.history = s.history[len(s.history)-historyLimit:]
	}
	s.hmu.Unlock()
}
