package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/planhaus/asset-orchestrator/infra"
	"github.com/planhaus/asset-orchestrator/infra/produce"
	"github.com/planhaus/asset-orchestrator/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

// TeardownConsumer sweeps the object store after an account is deleted.
// Registry rows disappear with the owning domain rows; this worker's sole
// responsibility is making sure no bytes remain under the account prefix.
type TeardownConsumer struct {
	channel    *amqp.Channel
	infra      *infra.Infra
	repository *repository.Repository
}

func NewTeardownConsumer(channel *amqp.Channel, infra *infra.Infra, repo *repository.Repository) *TeardownConsumer {
	return &TeardownConsumer{
		channel:    channel,
		infra:      infra,
		repository: repo,
	}
}

func (c *TeardownConsumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		produce.AccountTeardownQueue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register teardown consumer: %w", err)
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Teardown Consumer] Started listening on queue: %s", produce.AccountTeardownQueue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.infra.Logger.InfoWithContextf(ctx, "[Teardown Consumer] Shutting down...")
				return
			case msg, ok := <-msgs:
				if !ok {
					c.infra.Logger.WarningWithContextf(ctx, "[Teardown Consumer] Channel closed")
					return
				}
				c.handleTeardown(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *TeardownConsumer) handleTeardown(ctx context.Context, msg amqp.Delivery) {
	c.infra.Logger.InfoWithContextf(ctx, "[Teardown Consumer] Received message: %s", string(msg.Body))

	var payload produce.AccountTeardownMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Teardown Consumer] Failed to unmarshal message: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Teardown Consumer] Invalid User ID: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	maxRetries := 3
	for attempt := 1; attempt <= maxRetries; attempt++ {
		deleted, err := c.infra.Store.DeleteAllByPrefix(ctx, userID)
		if err == nil {
			c.infra.Logger.InfoWithContextf(ctx, "[Teardown Consumer] Deleted %d stored objects for user %s", deleted, userID)
			_ = msg.Ack(false)
			return
		}

		c.infra.Logger.ErrorWithContextf(ctx, err, "[Teardown Consumer] Attempt %d/%d failed after %d deletions: %v", attempt, maxRetries, deleted, err)

		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * 2 * time.Second)
		}
	}

	// After max retries, reject and requeue so the sweep eventually completes
	c.infra.Logger.ErrorWithContextf(ctx, nil, "[Teardown Consumer] Failed after %d attempts, requeueing message", maxRetries)
	_ = msg.Nack(false, true)
}
