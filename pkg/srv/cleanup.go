package srv

import "context"

// cleanupService wraps a teardown func, the database close, as a
// Service so it rides the same shutdown order as the transports.
type cleanupService struct {
	cleanup func() error
}

func (c *cleanupService) Start(ctx context.Context) error {
	// Nothing to run, the wrapped func only matters at shutdown.
	return nil
}

func (c *cleanupService) Shutdown(ctx context.Context) error {
	if c.cleanup != nil {
		return c.cleanup()
	}
	return nil
}

func NewCleanup(fn func() error) Service {
	return &cleanupService{cleanup: fn}
}
