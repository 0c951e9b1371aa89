package kafka

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"

	"harvestbot/types"
)

// Producer publishes outbound harvest messages to the delivery topic.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// ProducerConfig holds Kafka producer configuration.
type ProducerConfig struct {
	Brokers []string
	Topic   string
}

// NewProducer creates a synchronous producer. Delivery is acknowledged by
// all in-sync replicas before Send returns.
func NewProducer(config ProducerConfig) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, err
	}

	return &Producer{producer: producer, topic: config.Topic}, nil
}

// Send stamps the message timestamp, marshals it and publishes it keyed by
// journal key. The returned delivery id is "partition/offset".
func (p *Producer) Send(key string, msg types.OutboundMessage) (string, error) {
	msg.StampTimestamp(time.Now().UTC().Format(time.RFC3339))

	payload, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal outbound message: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d/%d", partition, offset), nil
}

// Close shuts the producer down.
func (p *Producer) Close() error {
	log.Println("Closing Kafka producer...")
	return p.producer.Close()
}
