package schedule

import "context"

// Task is one periodic unit of work.
type Task interface {
	Run(ctx context.Context) error
	Name() string
}
