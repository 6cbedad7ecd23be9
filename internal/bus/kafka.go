package bus

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the subset of *kafka.Writer used by the forwarder.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter returns an async writer. WriteMessages returns at once and
// delivery failures are logged from the completion callback.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 250 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				zap.L().Warn("bus: kafka delivery failed",
					zap.Int("messages", len(msgs)),
					zap.Error(err),
				)
			}
		},
	}
}

// KafkaForwarder mirrors broadcasts to a Kafka topic, keyed by channel name.
// It is a listener like any other and adds no delivery guarantee.
type KafkaForwarder struct {
	w MessageWriter

	mu     sync.Mutex
	unsubs []func()
}

// NewKafkaForwarder wraps w.
func NewKafkaForwarder(w MessageWriter) *KafkaForwarder {
	return &KafkaForwarder{w: w}
}

// Attach subscribes the forwarder to each channel on s.
func (f *KafkaForwarder) Attach(s Subscriber, channels ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range channels {
		ch := ch
		f.unsubs = append(f.unsubs, s.Subscribe(ch, func(payload any) {
			if err := f.forward(context.Background(), ch, payload); err != nil {
				zap.L().Warn("bus: forward broadcast", zap.String("channel", ch), zap.Error(err))
			}
		}))
	}
}

func (f *KafkaForwarder) forward(ctx context.Context, channel string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "bus: marshal payload")
	}
	err = f.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(channel),
		Value: body,
		Time:  time.Now().UTC(),
	})
	return eris.Wrap(err, "bus: write message")
}

// Close detaches from every channel and closes the writer.
func (f *KafkaForwarder) Close() error {
	f.mu.Lock()
	unsubs := f.unsubs
	f.unsubs = nil
	f.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
	return eris.Wrap(f.w.Close(), "bus: close writer")
}
