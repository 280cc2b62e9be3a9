package logger

import "strings"

const (
	// LevelDebug represents the debug severity level name.
	LevelDebug = "DEBUG"
	// LevelInfo represents the info severity level name.
	LevelInfo = "INFO"
	// LevelWarn represents the warning severity level name.
	LevelWarn = "WARN"
	// LevelError represents the error severity level name.
	LevelError = "ERROR"
)

var allowedLevels = map[string]string{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

var allowedStatus = map[string]struct{}{
	"ok": {}, "fail": {}, "skip": {}, "retry": {}, "rate_limited": {}, "cancelled": {}, "denied": {},
}

var allowedCache = map[string]struct{}{
	"hit": {}, "miss": {}, "refresh": {},
}

var allowedOutcome = map[string]struct{}{
	"ok": {}, "fail": {}, "cancelled": {}, "rate_limited": {}, "rejected": {},
}

func normalizeLevel(level string) string {
	if level == "" {
		return LevelInfo
	}
	if mapped, ok := allowedLevels[strings.ToLower(level)]; ok {
		return mapped
	}
	return strings.ToUpper(level)
}

func lookupEnum(set map[string]struct{}, raw string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return "", false
	}
	_, ok := set[v]
	return v, ok
}

// normalizeStatus lowercases status; unknown values pass through unflagged.
func normalizeStatus(status string) (string, bool) {
	return lookupEnum(allowedStatus, status)
}

func normalizeCache(cache string) (string, bool) {
	return lookupEnum(allowedCache, cache)
}

func normalizeOutcome(outcome string) (string, bool) {
	return lookupEnum(allowedOutcome, outcome)
}

var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"run_id",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"cb_key",
	"action",
	"state",
	"outcome",
	"duration_ms",
	"messages",
	"kb",
	"prayer",
	"delta",
	"unit",
	"amount",
	"channel_id",
	"target_id",
	"faq_id",
	"region",
	"city",
	"cache",
	"job",
	"recipients",
	"sent",
	"failed",
	"count",
	"payload",
	"username",
	"mode",
	"listen",
	"public_url",
	"db",
	"driver",
	"host",
	"port",
	"err",
	"err_code",
	"cause",
	"retryable",
	"attempts",
	"backoff_ms",
}
