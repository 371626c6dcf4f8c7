package notifications

import "context"

type WelcomeInput struct {
	Email string
}

type Notifier interface {
	SendWelcome(ctx context.Context, input WelcomeInput) error
}
