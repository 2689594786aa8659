package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Kattu2003/PRODUCT/types"
)

const EventAccountCreated = "account.created"

// AccountCreatedEvent is published after a successful signup.
// It never carries password material.
type AccountCreatedEvent struct {
	Type      string     `json:"type"`
	Email     string     `json:"email"`
	Role      types.Role `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
}

// AccountEvents publishes account lifecycle events to one channel.
type AccountEvents struct {
	queue   *MQ
	channel string
}

func NewAccountEvents(queue *MQ, channel string) *AccountEvents {
	return &AccountEvents{queue: queue, channel: channel}
}

func (e *AccountEvents) AccountCreated(ctx context.Context, user types.User) error {
	payload, err := json.Marshal(AccountCreatedEvent{
		Type:      EventAccountCreated,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	})
	if err != nil {
		return err
	}

	attrs := map[string]string{"type": EventAccountCreated}
	if _, err := e.queue.Publish(ctx, e.channel, payload, attrs); err != nil {
		return fmt.Errorf("publish %s: %w", EventAccountCreated, err)
	}
	return nil
}
