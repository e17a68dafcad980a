package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"hwbot/internal/config"
	"hwbot/internal/eventbus"
	"hwbot/internal/homework"
	"hwbot/internal/notifier"
	"hwbot/internal/poller"
	kit "hwbot/internal/transport"
	telegram "hwbot/internal/transport/telegram/adapter"
	logx "hwbot/pkg/logx"
	"hwbot/pkg/systemd"
)

// Options are the process-level inputs of the app.
type Options struct {
	// ConfigPath is an optional YAML/JSON file. Empty means defaults.
	ConfigPath string
	// Getenv reads the credentials. Default: os.Getenv.
	Getenv func(string) string
}

type App struct {
	cfgm *ConfigManager
	sup  *Supervisor

	log  logx.Logger
	logs *logx.Service
	bus  eventbus.Bus

	adapter *telegram.Adapter
	client  *homework.Client
	notif   *notifier.Service
	loop    *poller.Loop
	sd      *systemd.Notifier

	noticeChat string
}

func NewApp(opts Options) (*App, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	cfgm := NewConfigManager(opts.ConfigPath)
	cfgm.SetValidator(validateConfig)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	sched, err := poller.NewSchedule(cfg.Poller.Schedule)
	if err != nil {
		return nil, fmt.Errorf("poller.schedule: %w", err)
	}

	bootLog := logx.NewConsole(cfg.Logging.Level)
	bootLog.Info("checking environment")
	creds, err := config.LoadCredentials(getenv)
	if err != nil {
		return nil, err
	}

	// Offline: no getMe at startup; the first send is the connectivity check.
	ad, err := telegram.New(telegram.Config{
		Token:   creds.TelegramToken,
		APIURL:  cfg.Telegram.APIURL,
		Offline: true,
	}, bootLog.With(logx.String("comp", "telegram")))
	if err != nil {
		return nil, err
	}

	// Set the Telegram log target before enabling that sink so the first
	// mirrored line already has a destination.
	baseLogCfg := mapLogConfig(cfg)
	baseLogCfg.Telegram.Enabled = false
	logSvc, log := logx.New(baseLogCfg, ad)
	logSvc.SetTelegramTarget(logTarget(cfg))
	logSvc.Apply(mapLogConfig(cfg))
	log = log.With(logx.String("comp", "app"))

	bus := eventbus.New()

	client := homework.NewClient(homework.Config{
		Endpoint: cfg.Practicum.Endpoint,
		Token:    creds.PracticumToken,
	}, log.With(logx.String("comp", "homework")))

	notifSvc := notifier.New(
		notifier.Config{RatePerSec: cfg.Telegram.RatePerSec},
		ad,
		kit.ChatTarget{ChatID: creds.ChatID, Username: creds.ChatUsername, ThreadID: cfg.Telegram.ThreadID},
		log.With(logx.String("comp", "notifier")),
		bus,
	)

	a := &App{
		cfgm:       cfgm,
		log:        log,
		logs:       logSvc,
		bus:        bus,
		adapter:    ad,
		client:     client,
		notif:      notifSvc,
		sd:         systemd.New(),
		noticeChat: notifSvc.Target().Recipient(),
	}
	a.loop = poller.New(poller.Deps{
		Fetcher:  client,
		Notifier: notifSvc,
		Schedule: sched,
		Log:      log.With(logx.String("comp", "poller")),
		Bus:      bus,
		OnCycle:  a.onCycle,
	})
	return a, nil
}

func (a *App) Notifier() *notifier.Service { return a.notif }

// Done is closed when the app supervisor context is canceled (fatal error or Stop()).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = NewSupervisor(ctx, WithLogger(a.log), WithCancelOnError(true))
	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))

	// The loop keeps its state across restarts; only a panic restarts it.
	a.sup.GoRestart("poller", a.loop.Run)

	events, unsub := a.bus.Subscribe(128)
	a.sup.Go0("eventbus.log", func(c context.Context) {
		defer unsub()
		for {
			select {
			case <-c.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				a.log.Debug("event", logx.String("type", e.Type), logx.Time("time", e.Time), logx.Any("data", e.Data))
			}
		}
	})

	sub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		lastApplied := a.cfgm.Get()
		for {
			select {
			case <-c.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				a.applyConfig(lastApplied, newCfg)
				lastApplied = newCfg
			}
		}
	})

	a.sup.Go("config.watch", func(c context.Context) error {
		return a.cfgm.Watch(c)
	})

	if wd := systemd.WatchdogInterval(); wd > 0 {
		a.log.Debug("systemd watchdog enabled", logx.Duration("interval", wd))
	}
	if _, err := a.sd.Ready(); err != nil {
		a.log.Warn("systemd notify failed", logx.Err(err))
	}
	a.log.Info("app started", logx.String("chat", a.noticeChat))
	return nil
}

// applyConfig hot-applies the logging section. Other sections are read once
// at startup.
func (a *App) applyConfig(oldCfg, newCfg *Config) {
	sections := config.ChangedSections(oldCfg, newCfg)
	if len(sections) == 0 {
		a.log.Debug("config reload received, but no effective changes detected")
		return
	}
	for _, s := range sections {
		if s == "logging" || (s == "telegram" && onlyGroupLogChanged(oldCfg, newCfg)) {
			continue
		}
		a.log.Warn("config section changed; restart required for changes to take effect", logx.String("section", s))
	}
	if newCfg.Logging != oldCfg.Logging || newCfg.Telegram.GroupLog != oldCfg.Telegram.GroupLog {
		a.logs.SetTelegramTarget(logTarget(newCfg))
		a.logs.Apply(mapLogConfig(newCfg))
	}
	a.log.Info("config reloaded", logx.String("changed", strings.Join(sections, ",")))
}

func onlyGroupLogChanged(oldCfg, newCfg *Config) bool {
	o, n := oldCfg.Telegram, newCfg.Telegram
	o.GroupLog, n.GroupLog = "", ""
	return o == n
}

func (a *App) onCycle(out poller.Outcome) {
	if _, err := a.sd.Watchdog(); err != nil {
		a.log.Debug("systemd watchdog notify failed", logx.Err(err))
	}
	_, _ = a.sd.Status(fmt.Sprintf("last cycle: %s, cursor %d", out.Result, out.Cursor))
}

func (a *App) Stop(ctx context.Context, reason StopReason) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping", logx.String("reason", string(reason)))
	_, _ = a.sd.Stopping()

	a.sup.Cancel()

	waitCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	err := a.sup.Wait(waitCtx)
	if err != nil && waitCtx.Err() != nil {
		a.log.Warn("stop deadline reached (continuing)", logx.Err(err))
		err = nil
	}

	a.log.Info("stopped")
	_ = a.logs.Close()
	return err
}

