package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	writeTimeout = 5 * time.Second
	queueSize    = 1024
)

var (
	ErrQueueFull = errors.New("kafka: publish queue is full")
	ErrClosed    = errors.New("kafka: publisher is closed")
)

// Kafka публикует события в один топик, ключ сообщения — id позиции,
// поэтому события одной позиции попадают в одну партицию по порядку.
// Publish только ставит сообщение в очередь, отправкой занимается
// отдельная горутина. Ошибки доставки логируются.
type Kafka struct {
	log    *slog.Logger
	writer *kafka.Writer

	mu     sync.RWMutex
	closed bool
	queue  chan kafka.Message
	done   chan struct{}
}

var _ Publisher = (*Kafka)(nil)

func NewKafka(log *slog.Logger, brokers []string, topic string) *Kafka {
	k := newKafka(log, brokers, topic)
	go k.run()
	return k
}

func newKafka(log *slog.Logger, brokers []string, topic string) *Kafka {
	k := &Kafka{
		log:   log.With(slog.String("topic", topic)),
		queue: make(chan kafka.Message, queueSize),
		done:  make(chan struct{}),
	}
	k.writer = &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           writeTimeout,
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion:             k.completed,
	}
	return k
}

func (k *Kafka) run() {
	defer close(k.done)
	for msg := range k.queue {
		// WriteMessages сначала запрашивает метаданные топика даже в асинхронном режиме
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := k.writer.WriteMessages(ctx, msg)
		cancel()
		if err != nil {
			k.completed([]kafka.Message{msg}, err)
		}
	}
}

func (k *Kafka) completed(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, msg := range messages {
		k.log.Warn("failed to deliver inventory event",
			slog.String("sweetID", string(msg.Key)),
			slog.String("type", eventType(msg)),
			slog.Any("error", err),
		)
	}
}

func eventType(msg kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == "event_type" {
			return string(h.Value)
		}
	}
	return ""
}

func newMessage(event Event) (kafka.Message, error) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.SweetID.String()),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}, nil
}

func (k *Kafka) Publish(ctx context.Context, event Event) error {
	msg, err := newMessage(event)
	if err != nil {
		return err
	}

	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.closed {
		return ErrClosed
	}
	select {
	case k.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close дожидается отправки накопленных сообщений
func (k *Kafka) Close() error {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return nil
	}
	k.closed = true
	close(k.queue)
	k.mu.Unlock()

	<-k.done
	return k.writer.Close()
}
