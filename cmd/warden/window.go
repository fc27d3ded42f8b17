package main

import (
	"errors"
	"fmt"
	"time"

	"mercator-hq/warden/pkg/audit/scan"
)

// timeWindow resolves --since and --hours into the scan lower bound.
// Neither flag means no bound.
func timeWindow(since string, hours int, now time.Time) (*time.Time, error) {
	if since != "" && hours != 0 {
		return nil, errors.New("--since and --hours are mutually exclusive")
	}
	if hours < 0 {
		return nil, fmt.Errorf("--hours must be positive, got %d", hours)
	}
	if hours > 0 {
		t := now.Add(-time.Duration(hours) * time.Hour)
		return &t, nil
	}
	if since == "" {
		return nil, nil
	}

	t, ok := scan.ParseTimestamp(since)
	if !ok {
		return nil, fmt.Errorf("invalid --since timestamp %q", since)
	}
	return &t, nil
}
