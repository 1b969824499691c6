package scheduler

import "errors"

// Sentinel errors for job submission and cron configuration.
var (
	ErrSchedulerNotRunning = errors.New("scheduler is not running")
	ErrJobQueueFull        = errors.New("job queue is full")
	ErrInvalidJobType      = errors.New("invalid job type")
	ErrInvalidConfig       = errors.New("invalid scheduler configuration")
)
