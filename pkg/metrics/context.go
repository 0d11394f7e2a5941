package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

type newRelicContextKey struct{}

// NewRelicContextKey is the context key holding the *newrelic.Application that
// events and metrics are recorded against.
var NewRelicContextKey = newRelicContextKey{}

// WithApplication returns a context that records metrics against app. A nil
// app leaves the context untouched, so recording becomes a no-op.
func WithApplication(ctx context.Context, app *newrelic.Application) context.Context {
	if app == nil {
		return ctx
	}
	return context.WithValue(ctx, NewRelicContextKey, app)
}

// StartTransaction starts a New Relic transaction named name when an
// application is present in ctx. The returned end function must be called
// once the traced work completes.
func StartTransaction(ctx context.Context, name string) (context.Context, func()) {
	nr, ok := ctx.Value(NewRelicContextKey).(*newrelic.Application)
	if !ok {
		return ctx, func() {}
	}

	txn := nr.StartTransaction(name)
	return newrelic.NewContext(ctx, txn), txn.End
}
