package telegram

import (
	"net/http"
	"time"

	"github.com/qazobot/qazobot/core/telegram/netutil"
)

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls.
// The client timeout must exceed the long-poll timeout.
func BuildHTTPClient(longPollTimeout time.Duration) *http.Client {
	return netutil.NewHTTPClient(netutil.ClientOptions{
		Timeout: longPollTimeout + 20*time.Second,
		// getUpdates holds the response for the whole poll window.
		ResponseTimeout: longPollTimeout + 5*time.Second,
		Retries:         3,
		Backoff:         2 * time.Second,
	})
}
