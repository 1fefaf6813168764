package cart

import "context"

// Persister mirrors State into a durable slot.
type Persister interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
}
