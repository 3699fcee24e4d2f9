package events

import (
	"context"
	"encoding/json"
	"time"

	"newsdesk/logger"
	"newsdesk/models"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type KafkaTopics struct {
	PostPublished string
	PostDeleted   string
}

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	topics KafkaTopics
}

func NewKafkaPublisher(brokers []string, topics KafkaTopics) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: writer, topics: topics}
}

func (p *KafkaPublisher) send(ctx context.Context, topic, key string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Log.Error("Failed to marshal event", zap.Error(err), zap.String("topic", topic))
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	})
	if err != nil {
		logger.Log.Error("Failed to write Kafka message", zap.Error(err), zap.String("topic", topic))
		return err
	}

	logger.Log.Debug("Sent Kafka message", zap.String("topic", topic), zap.String("key", key))
	return nil
}

func (p *KafkaPublisher) PostPublished(ctx context.Context, post *models.Post) error {
	return p.send(ctx, p.topics.PostPublished, post.ID.Hex(), NewPostPublishedEvent(post))
}

func (p *KafkaPublisher) PostDeleted(ctx context.Context, post *models.Post) error {
	return p.send(ctx, p.topics.PostDeleted, post.ID.Hex(), NewPostDeletedEvent(post))
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
