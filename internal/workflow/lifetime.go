package workflow

import "context"

// lifetime ties network calls to a view. Once closed, calls in flight are
// cancelled and their responses must be dropped.
type lifetime struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func newLifetime() lifetime {
	ctx, cancel := context.WithCancel(context.Background())
	return lifetime{ctx: ctx, cancel: cancel}
}

func (l lifetime) close() { l.cancel() }

func (l lifetime) closed() bool { return l.ctx.Err() != nil }

// bind derives a context that ends with either the caller or the view.
func (l lifetime) bind(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)
	stop := context.AfterFunc(l.ctx, func() { cancel(ErrClosed) })
	return ctx, func() {
		stop()
		cancel(nil)
	}
}
