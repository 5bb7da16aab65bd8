package jetstream

import (
	"context"
	"errors"
	"fmt"
	"github.com/nats-io/nats.go/jetstream"
	"log/slog"
	"time"
	"venue-booking/common/constant"
)

type Handler func(ctx context.Context, msg []byte) error

type ConsumerConfig struct {
	Durable       string
	FilterSubject string
	MaxDeliver    int
	AckWait       time.Duration
	NakDelay      time.Duration
}

// Consume dispatches messages by subject until ctx is done. A handler error naks the
// message for redelivery; unknown subjects are acked and dropped.
func Consume(ctx context.Context, st jetstream.Stream, cfg ConsumerConfig, handlers map[string]Handler) error {
	cons, err := st.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       cfg.Durable,
		FilterSubject: cfg.FilterSubject,
		MaxDeliver:    cfg.MaxDeliver,
		AckWait:       cfg.AckWait,
	})
	if err != nil {
		return fmt.Errorf("create consumer %s: %w", cfg.Durable, err)
	}

	iter, err := cons.Messages()
	if err != nil {
		return fmt.Errorf("consume %s: %w", cfg.Durable, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
				msg, err := iter.Next()
				if err != nil {
					if !errors.Is(err, jetstream.ErrMsgIteratorClosed) {
						slog.ErrorContext(ctx, "Error fetching message", slog.Any(constant.LogFieldErr, err))
					}
					continue
				}

				if msg == nil {
					continue
				}

				handle(ctx, msg, handlers, cfg.NakDelay)
			}
		}
	}()

	slog.InfoContext(ctx, "queue consumer started", slog.String("consumer", cfg.Durable))

	<-ctx.Done()

	iter.Stop()

	slog.InfoContext(ctx, "queue consumer stopped", slog.String("consumer", cfg.Durable))
	return nil
}

func handle(ctx context.Context, msg jetstream.Msg, handlers map[string]Handler, nakDelay time.Duration) {
	handler, ok := handlers[msg.Subject()]
	if !ok {
		slog.WarnContext(ctx, "no handler for subject", slog.String("subject", msg.Subject()))
	} else if err := handler(ctx, msg.Data()); err != nil {
		if nakErr := msg.NakWithDelay(nakDelay); nakErr != nil {
			slog.ErrorContext(ctx, "Error naking message", slog.Any(constant.LogFieldErr, nakErr), slog.String("subject", msg.Subject()))
		}
		return
	}

	if err := msg.Ack(); err != nil {
		slog.ErrorContext(ctx, "Error acknowledging message",
			slog.Any(constant.LogFieldErr, err),
			slog.Any(constant.LogFieldPayload, string(msg.Data())),
			slog.String("subject", msg.Subject()),
		)
	}
}
