package port

import "context"

// Notifier delivers a short text to the user's registered phone.
// Delivery is best-effort; callers must not couple business state to it.
type Notifier interface {
	Send(ctx context.Context, phone string, text string) error
}
