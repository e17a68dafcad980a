// Package poller runs the poll-detect-notify loop.
//
// Each cycle fetches the statuses changed since the cursor, validates the
// answer, turns the first task into a notice and sends it when it differs
// from the previous one. Failures become an error notice that is sent only
// when its text changes. The loop always sleeps until the next schedule
// tick afterwards, whatever the cycle's result.
//
// All mutable state (cursor, last notice, last error notice) belongs to the
// Loop and is touched only by the goroutine running it.
package poller
