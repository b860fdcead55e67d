// Package verification owns the challenge-token lifecycle on the
// client: loading the third-party challenge provider, holding exactly
// one widget session, and producing single-use verification tokens for
// the permit exchange.
package verification

import "context"

// Provider abstracts the third-party challenge vendor. Implementations
// carry the vendor protocol; the broker only sequences calls.
type Provider interface {
	// Load starts (or restarts, when forceReload is set) fetching the
	// challenge script. Safe to call repeatedly.
	Load(ctx context.Context, forceReload bool) error

	// Ready reports whether the script has finished loading. A hard
	// load failure surfaces as an error, not as ready=false.
	Ready(ctx context.Context) (bool, error)

	// Render creates one widget session in explicit mode and returns
	// its id. Never auto-executes.
	Render(ctx context.Context) (string, error)

	// Reset returns the widget session to a clean pre-execution state.
	Reset(ctx context.Context, widgetID string) error

	// Execute runs one challenge on the widget and returns the
	// verification token. Single-use: each token feeds one exchange.
	Execute(ctx context.Context, widgetID string, action string) (string, error)
}
