// Package notifier delivers status notices to the configured Telegram chat.
//
// Delivery is synchronous and best-effort: sends are paced by a token
// bucket, failures are logged and reported on the event bus, and nothing is
// ever retried or queued. Callers never see a delivery error.
//
// # History
//
// For debugging, the service keeps a small in-memory history of recently
// delivered notices.
package notifier
