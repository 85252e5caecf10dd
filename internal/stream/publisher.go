package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/DeafMist/cybernews-relay/internal/models"
)

// RawNews is the message shape consumed by raw-news ingestion workers.
type RawNews struct {
	Title     string `json:"title"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher mirrors relayed news items onto a Kafka topic.
type Publisher struct {
	w      messageWriter
	source string
	now    func() time.Time
}

// NewPublisher creates a Publisher writing to topic on the given brokers.
func NewPublisher(brokers []string, topic, source string) *Publisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireOne,
	}
	return newPublisher(w, source)
}

func newPublisher(w messageWriter, source string) *Publisher {
	return &Publisher{w: w, source: source, now: time.Now}
}

// Publish writes one message per item, keyed by source URL, in a single batch.
func (p *Publisher) Publish(ctx context.Context, items []models.NewsItem) error {
	if len(items) == 0 {
		return nil
	}

	ts := p.now().UTC().Format(time.RFC3339)
	msgs := make([]kafka.Message, 0, len(items))
	for _, item := range items {
		value, err := json.Marshal(toRaw(item, ts, p.source))
		if err != nil {
			return fmt.Errorf("marshal mirror message: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(item.SourceURL),
			Value: value,
			Headers: []kafka.Header{
				{Key: "content_type", Value: []byte("application/json")},
			},
		})
	}

	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write mirror messages: %w", err)
	}
	return nil
}

// Close flushes and releases the underlying writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}

func toRaw(item models.NewsItem, ts, source string) RawNews {
	text := strings.TrimSpace(item.Excerpt)
	if url := strings.TrimSpace(item.SourceURL); url != "" {
		text = strings.TrimSpace(text + "\n" + url)
	}
	return RawNews{
		Title:     strings.TrimSpace(item.Headline),
		Text:      text,
		Timestamp: ts,
		Source:    source,
	}
}
