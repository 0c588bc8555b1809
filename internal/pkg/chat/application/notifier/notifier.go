package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Ubokutom222/whatsappclone/internal/infrastructure/metrics"
	chat "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/domain"
)

// Publisher delivers an event on a named realtime channel.
type Publisher interface {
	Publish(ctx context.Context, channel, event string, payload []byte) error
}

// Notifier hands a stored message off for realtime delivery. It never
// reports failure to the caller; the message is already durable.
type Notifier interface {
	Notify(ctx context.Context, m chat.Message)
}

// MessageEvent is the public projection of a stored message sent to subscribers.
type MessageEvent struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Content        *string   `json:"content"`
	SenderID       string    `json:"sender_id"`
	CreatedAt      time.Time `json:"created_at"`
	MessageType    string    `json:"message_type"`
	MediaURL       *string   `json:"media_url"`
}

func NewMessageEvent(m chat.Message) MessageEvent {
	return MessageEvent{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Content:        m.Content,
		SenderID:       m.SenderID,
		CreatedAt:      m.CreatedAt,
		MessageType:    string(m.MsgType),
		MediaURL:       m.Media.URL,
	}
}

// Sink is a named Publisher; the name labels delivery metrics.
type Sink struct {
	Name      string
	Publisher Publisher
}

// Deliverer publishes a message event to every configured sink.
type Deliverer struct {
	sinks []Sink
	log   *zap.Logger
}

func NewDeliverer(log *zap.Logger, sinks ...Sink) *Deliverer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Deliverer{sinks: sinks, log: log}
}

// Deliver attempts every sink and joins their errors. One failing sink does
// not stop the others.
func (d *Deliverer) Deliver(ctx context.Context, ev MessageEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("notifier: encode event: %w", err)
	}
	channel := chat.ChannelName(ev.ConversationID)

	var errs []error
	for _, s := range d.sinks {
		if err := s.Publisher.Publish(ctx, channel, chat.EventNewMessage, payload); err != nil {
			metrics.Deliveries.WithLabelValues(s.Name, "error").Inc()
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		metrics.Deliveries.WithLabelValues(s.Name, "ok").Inc()
	}
	return errors.Join(errs...)
}

// InlineNotifier delivers on a background goroutine owned by the notifier.
// Wait blocks until every started delivery has been attempted.
type InlineNotifier struct {
	deliverer *Deliverer
	timeout   time.Duration
	log       *zap.Logger
	wg        sync.WaitGroup
}

func NewInlineNotifier(d *Deliverer, timeout time.Duration, log *zap.Logger) *InlineNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &InlineNotifier{deliverer: d, timeout: timeout, log: log}
}

var _ Notifier = (*InlineNotifier)(nil)

func (n *InlineNotifier) Notify(ctx context.Context, m chat.Message) {
	ev := NewMessageEvent(m)
	// the request context ends with the response; keep its values only
	ctx = context.WithoutCancel(ctx)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, n.timeout)
		defer cancel()
		if err := n.deliverer.Deliver(ctx, ev); err != nil {
			metrics.NotifyFailures.WithLabelValues("publish").Inc()
			n.log.Warn("message delivery failed",
				zap.String("conversation_id", ev.ConversationID),
				zap.String("message_id", ev.ID),
				zap.Error(err),
			)
		}
	}()
}

func (n *InlineNotifier) Wait() {
	n.wg.Wait()
}
