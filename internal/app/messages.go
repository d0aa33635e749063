package app

import "time"

// TickMsg runs one control-loop pass.
type TickMsg time.Time
