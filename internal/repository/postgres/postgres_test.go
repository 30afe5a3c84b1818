package postgres

import "time"

var fixedTime = time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC)
