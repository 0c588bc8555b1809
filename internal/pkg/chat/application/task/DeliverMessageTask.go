package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Ubokutom222/whatsappclone/internal/infrastructure/metrics"
	qport "github.com/Ubokutom222/whatsappclone/internal/infrastructure/queue/port"
	chat "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/domain"
	"github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/notifier"
)

// DeliverMessageTaskType is the queue task name for realtime delivery of a stored message.
const DeliverMessageTaskType = "chat:deliver_message"

// DeliverMessageQueue is the asynq queue the delivery task is enqueued on.
const DeliverMessageQueue = "chat"

// RegisterDeliverMessageTask binds the delivery handler to the provided server.
// A payload that cannot be decoded is dropped; publish failures are retried.
func RegisterDeliverMessageTask(srv qport.Server, d *notifier.Deliverer, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	srv.Register(DeliverMessageTaskType, func(ctx context.Context, t qport.Task) error {
		var ev notifier.MessageEvent
		if err := json.Unmarshal(t.Payload, &ev); err != nil {
			metrics.NotifyFailures.WithLabelValues("decode").Inc()
			return fmt.Errorf("%w: decode payload: %v", qport.ErrSkipRetry, err)
		}
		if ev.ConversationID == "" || ev.ID == "" {
			metrics.NotifyFailures.WithLabelValues("decode").Inc()
			return fmt.Errorf("%w: payload missing ids", qport.ErrSkipRetry)
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		if err := d.Deliver(ctx, ev); err != nil {
			metrics.NotifyFailures.WithLabelValues("publish").Inc()
			log.Warn("message delivery failed",
				zap.String("conversation_id", ev.ConversationID),
				zap.String("message_id", ev.ID),
				zap.Error(err),
			)
			return err
		}
		return nil
	})
}

// QueueNotifier hands messages to the delivery task through the queue.
type QueueNotifier struct {
	client   qport.Client
	maxRetry int
	log      *zap.Logger
}

func NewQueueNotifier(client qport.Client, maxRetry int, log *zap.Logger) *QueueNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &QueueNotifier{client: client, maxRetry: maxRetry, log: log}
}

var _ notifier.Notifier = (*QueueNotifier)(nil)

// Notify enqueues the delivery task. Enqueue failures are logged and counted only.
func (n *QueueNotifier) Notify(ctx context.Context, m chat.Message) {
	payload, err := json.Marshal(notifier.NewMessageEvent(m))
	if err != nil {
		n.fail(m, "encode", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	_, err = n.client.Enqueue(ctx, qport.Task{Type: DeliverMessageTaskType, Payload: payload}, qport.EnqueueOption{
		Queue:     DeliverMessageQueue,
		MaxRetry:  n.maxRetry,
		Timeout:   30 * time.Second,
		Retention: time.Hour,
	})
	if err != nil {
		n.fail(m, "enqueue", err)
	}
}

func (n *QueueNotifier) fail(m chat.Message, stage string, err error) {
	metrics.NotifyFailures.WithLabelValues(stage).Inc()
	n.log.Warn("message delivery hand-off failed",
		zap.String("stage", stage),
		zap.String("conversation_id", m.ConversationID),
		zap.String("message_id", m.ID),
		zap.Error(err),
	)
}
