package poller

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"

	"hwbot/internal/eventbus"
	"hwbot/internal/homework"
	logx "hwbot/pkg/logx"
)

// ErrorNoticePrefix starts every error notice.
const ErrorNoticePrefix = "Сбой в работе программы: "

const windowTimeFormat = "2006-01-02 15:04:05"

// Fetcher returns the status document for changes since cursor.
type Fetcher interface {
	FetchStatus(ctx context.Context, cursor int64) (homework.Document, error)
}

// Notifier delivers a notice. It reports nothing back; delivery problems
// are its own business.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// Result classifies a finished cycle.
type Result int

const (
	ResultEmpty Result = iota
	ResultNotified
	ResultUnchanged
	ResultFailed
	ResultInterrupted
)

func (r Result) String() string {
	switch r {
	case ResultEmpty:
		return "empty"
	case ResultNotified:
		return "notified"
	case ResultUnchanged:
		return "unchanged"
	case ResultFailed:
		return "failed"
	case ResultInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Outcome describes one cycle.
type Outcome struct {
	Result Result
	// Cursor is the cursor after the cycle.
	Cursor int64
	// Sent is the text handed to the notifier, if any.
	Sent string
	Err  error
}

// CycleEvent is published on the bus after every cycle.
type CycleEvent struct {
	Result string    `json:"result"`
	Cursor int64     `json:"cursor"`
	Kind   string    `json:"kind,omitempty"`
	Error  string    `json:"error,omitempty"`
	At     time.Time `json:"at"`
}

type Deps struct {
	Fetcher  Fetcher
	Notifier Notifier
	// Schedule decides when the next cycle starts. Default: every 600s.
	Schedule cron.Schedule
	Clock    Clock
	Sleeper  Sleeper
	Log      logx.Logger
	Bus      eventbus.Bus
	// OnCycle, when set, runs after every cycle on the loop goroutine.
	OnCycle func(Outcome)
}

// Loop is the poller. Its accessors must not be called concurrently with
// Run or RunCycle.
type Loop struct {
	fetcher  Fetcher
	notifier Notifier
	schedule cron.Schedule
	clock    Clock
	sleeper  Sleeper
	log      logx.Logger
	bus      eventbus.Bus
	onCycle  func(Outcome)

	cursor           int64
	lastMessage      string
	lastErrorMessage string
}

// New builds a Loop whose cursor starts at the clock's current unix time.
func New(d Deps) *Loop {
	if d.Clock == nil {
		d.Clock = SystemClock()
	}
	if d.Sleeper == nil {
		d.Sleeper = TimerSleeper()
	}
	if d.Schedule == nil {
		d.Schedule = cron.Every(600 * time.Second)
	}
	if d.Log.IsZero() {
		d.Log = logx.Nop()
	}
	return &Loop{
		fetcher:  d.Fetcher,
		notifier: d.Notifier,
		schedule: d.Schedule,
		clock:    d.Clock,
		sleeper:  d.Sleeper,
		log:      d.Log,
		bus:      d.Bus,
		onCycle:  d.OnCycle,
		cursor:   d.Clock.Now().Unix(),
	}
}

func (l *Loop) Cursor() int64            { return l.cursor }
func (l *Loop) LastMessage() string      { return l.lastMessage }
func (l *Loop) LastErrorMessage() string { return l.lastErrorMessage }

// Run executes cycles until ctx is done, sleeping until the next schedule
// tick after each one. It returns nil on a clean stop.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Info("poller started", logx.Int64("cursor", l.cursor))
	for ctx.Err() == nil {
		l.RunCycle(ctx)

		now := l.clock.Now()
		wait := l.schedule.Next(now).Sub(now)
		l.log.Trace("poller sleeping", logx.Duration("wait", wait))
		if err := l.sleeper.Sleep(ctx, wait); err != nil {
			break
		}
	}
	l.log.Info("poller stopped", logx.Int64("cursor", l.cursor))
	return nil
}

// RunCycle performs one Polling → Evaluating → Notifying pass. It never
// sleeps.
func (l *Loop) RunCycle(ctx context.Context) Outcome {
	out := l.cycle(ctx)
	out.Cursor = l.cursor
	l.finish(out)
	return out
}

func (l *Loop) cycle(ctx context.Context) Outcome {
	from := l.cursor

	doc, err := l.fetcher.FetchStatus(ctx, from)
	if err != nil {
		return l.fail(ctx, err)
	}

	l.log.Debug("validating response")
	serverCursor, tasks, err := homework.Validate(doc)
	if err != nil {
		return l.fail(ctx, err)
	}

	if len(tasks) == 0 {
		l.advance(serverCursor)
		l.log.Info("homework list is empty",
			logx.String("from", time.Unix(from, 0).Format(windowTimeFormat)),
			logx.String("to", time.Unix(serverCursor, 0).Format(windowTimeFormat)),
		)
		return Outcome{Result: ResultEmpty}
	}

	notice, err := homework.ExtractNotice(tasks[0])
	if err != nil {
		return l.fail(ctx, err)
	}
	l.advance(serverCursor)

	if notice == l.lastMessage {
		l.log.Debug("no new statuses")
		return Outcome{Result: ResultUnchanged}
	}
	l.notifier.Notify(ctx, notice)
	l.lastMessage = notice
	return Outcome{Result: ResultNotified, Sent: notice}
}

// advance moves the cursor forward; it never goes back.
func (l *Loop) advance(serverCursor int64) {
	if serverCursor > l.cursor {
		l.cursor = serverCursor
	}
}

func (l *Loop) fail(ctx context.Context, err error) Outcome {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		l.log.Debug("cycle interrupted", logx.Err(err))
		return Outcome{Result: ResultInterrupted, Err: err}
	}

	kind := homework.KindOf(err)
	log := l.log.With(logx.String("kind", kind.String()), logx.Int64("cursor", l.cursor))
	switch kind {
	case homework.KindTransport, homework.KindStatusCode:
		log.Error("status request failed", logx.Err(err))
	case homework.KindMalformedBody, homework.KindShape, homework.KindMissingCursor:
		log.Error("status response rejected", logx.Err(err))
	case homework.KindMissingField, homework.KindUnknownStatus:
		log.Error("homework status parse failed", logx.Err(err))
	default:
		log.Error("poll cycle failed", logx.Err(err))
	}

	text := ErrorNoticePrefix + err.Error()
	if text == l.lastErrorMessage {
		log.Debug("error notice already sent; skipping")
		return Outcome{Result: ResultFailed, Err: err}
	}
	l.notifier.Notify(ctx, text)
	l.lastErrorMessage = text
	return Outcome{Result: ResultFailed, Sent: text, Err: err}
}

func (l *Loop) finish(out Outcome) {
	if l.bus != nil {
		now := l.clock.Now()
		ev := CycleEvent{Result: out.Result.String(), Cursor: out.Cursor, At: now}
		if out.Err != nil {
			ev.Kind = homework.KindOf(out.Err).String()
			ev.Error = out.Err.Error()
		}
		l.bus.Publish(eventbus.Event{Type: eventbus.TypePollCycle, Time: now, Data: ev})
	}
	if l.onCycle != nil {
		l.onCycle(out)
	}
}
