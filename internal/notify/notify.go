package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Kind enumerates the outbound notification kinds.
type Kind string

const (
	KindWelcome        Kind = "welcome"
	KindProfileCreated Kind = "profile_created"
	KindFriendRequest  Kind = "friend_request"
	KindFriendAccepted Kind = "friend_accepted"
	KindPasswordReset  Kind = "password_reset"
	KindAccountDeleted Kind = "account_deleted"
)

// Event is the record handed to the notification collaborator. Delivery is
// fire-and-forget from the core's perspective; the worker reports success or
// failure on its own logs.
type Event struct {
	Kind             Kind           `json:"kind"`
	RecipientAddress string         `json:"recipient_address"`
	TemplateData     map[string]any `json:"template_data,omitempty"`
}

// Publisher is satisfied by helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Emitter publishes events toward the notify queue. A publish failure is
// logged and swallowed so it can never fail the originating state transition.
type Emitter struct {
	Pub    Publisher
	Logger *logrus.Logger
}

func NewEmitter(pub Publisher, logger *logrus.Logger) *Emitter {
	return &Emitter{Pub: pub, Logger: logger}
}

func (e *Emitter) Emit(ctx context.Context, ev Event) {
	if e == nil || e.Pub == nil {
		return
	}
	if err := e.Pub.PublishJSON(ctx, ev); err != nil && e.Logger != nil {
		e.Logger.WithError(err).WithFields(logrus.Fields{
			"kind":      ev.Kind,
			"recipient": ev.RecipientAddress,
		}).Warn("notification publish failed")
	}
}
