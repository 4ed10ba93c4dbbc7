package wrap

import (
	"context"
	"errors"
)

// Error wraps an error with the current LogCtx from the context.
// An already wrapped error keeps its chain and gets the newer LogCtx.
func Error(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	var e *errorWithLogCtx
	if errors.As(err, &e) {
		if x, ok := ctx.Value(LogCtxKey).(LogCtx); ok {
			e.logCtx = x
		}
		return err
	}

	return &errorWithLogCtx{
		err:    err,
		logCtx: fromCtx(ctx),
	}
}
