// Package lifecycle holds shared timeouts for startup and shutdown hooks.
package lifecycle

import "time"

// DefaultTimeout bounds individual lifecycle hook operations such as
// connection pings and graceful shutdowns.
const DefaultTimeout = 10 * time.Second
