package produce

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	AccountExchange = "account.exchange"

	AccountTeardownQueue      = "account.teardown"
	AccountTeardownRoutingKey = "account.teardown"
)

// AccountTeardownMessage asks the consumer to sweep every stored object under
// a deleted account's key prefix. Registry rows are removed by domain-row
// cascade, not by this message.
type AccountTeardownMessage struct {
	UserID    string `json:"user_id"`
	Reason    string `json:"reason,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// AccountService publishes account lifecycle events.
type AccountService struct {
	channel *amqp.Channel
}

func InitAccountService(channel *amqp.Channel) *AccountService {
	service := &AccountService{
		channel: channel,
	}

	err := channel.ExchangeDeclare(
		AccountExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to declare Account exchange: " + err.Error())
	}

	_, err = channel.QueueDeclare(
		AccountTeardownQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to declare Account teardown queue: " + err.Error())
	}

	err = channel.QueueBind(
		AccountTeardownQueue,
		AccountTeardownRoutingKey,
		AccountExchange,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to bind Account teardown queue: " + err.Error())
	}

	return service
}

// PublishTeardown enqueues a full-account object sweep.
func (s *AccountService) PublishTeardown(ctx context.Context, userID, reason string) error {
	msg := AccountTeardownMessage{
		UserID:    userID,
		Reason:    reason,
		Timestamp: time.Now().Unix(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal teardown message: %w", err)
	}

	err = s.channel.PublishWithContext(ctx,
		AccountExchange,
		AccountTeardownRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish teardown message: %w", err)
	}

	return nil
}
