package pipeline

import "time"

func ptr[T any](v T) *T {
	return &v
}

func datetime(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}
