package session

import "context"

// Provider is the capability the route gate needs: a synchronous query of
// whether the current requester is authenticated. A non-nil error means the
// state could not be determined.
type Provider interface {
	IsAuthenticated(ctx context.Context) (bool, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (bool, error)

func (f ProviderFunc) IsAuthenticated(ctx context.Context) (bool, error) {
	return f(ctx)
}

// Static is a Provider with a fixed answer.
type Static bool

func (s Static) IsAuthenticated(context.Context) (bool, error) {
	return bool(s), nil
}

// Failed returns a Provider that always reports err.
func Failed(err error) Provider {
	return ProviderFunc(func(context.Context) (bool, error) {
		return false, err
	})
}
