// Package systemd speaks the sd_notify protocol. Every call is a no-op when
// the process is not running under systemd (NOTIFY_SOCKET unset).
package systemd

import (
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// Notifier sends state updates to the service manager.
type Notifier struct {
	// unsetEnv removes NOTIFY_SOCKET after the first send; keep false so
	// later watchdog pings still reach systemd.
	unsetEnv bool
}

func New() *Notifier { return &Notifier{} }

// Ready reports that startup finished.
func (n *Notifier) Ready() (bool, error) {
	return daemon.SdNotify(n.unsetEnv, daemon.SdNotifyReady)
}

// Stopping reports that shutdown began.
func (n *Notifier) Stopping() (bool, error) {
	return daemon.SdNotify(n.unsetEnv, daemon.SdNotifyStopping)
}

// Watchdog pings the service watchdog.
func (n *Notifier) Watchdog() (bool, error) {
	return daemon.SdNotify(n.unsetEnv, daemon.SdNotifyWatchdog)
}

// Status sets the free-form status line shown by systemctl status.
func (n *Notifier) Status(text string) (bool, error) {
	return daemon.SdNotify(n.unsetEnv, "STATUS="+text)
}

// WatchdogInterval returns WatchdogSec from the unit, or 0 when the watchdog
// is disabled.
func WatchdogInterval() time.Duration {
	d, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return 0
	}
	return d
}
