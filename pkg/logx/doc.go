// Package logx configures hwbot's structured logging.
//
// A small wrapper (logx.Logger) on top of zerolog keeps:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - An optional Telegram sink (min-level + rate limiting) for operators
//
// CRITICAL is logged at zerolog's fatal level through WithLevel, so it never
// terminates the process. Exiting is left to the caller.
package logx
