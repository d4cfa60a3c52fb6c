// Package lifecycle holds shared constants for component startup and shutdown.
package lifecycle

import "time"

// DefaultTimeout bounds graceful startup/shutdown work such as pinging the
// database or draining in-flight HTTP requests.
const DefaultTimeout = 10 * time.Second
