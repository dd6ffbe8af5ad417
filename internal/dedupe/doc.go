// Package dedupe suppresses duplicate envelope delivery using a time-based
// cache, keeping re-entrant card submissions idempotent.
package dedupe
