package kafka

import (
	"time"

	"github.com/alimikegami/pos-microservices/catalog-federation/config"
	"github.com/segmentio/kafka-go"
)

func CreateKafkaWriter(conf config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(conf.BrokerAddress),
		Topic:                  conf.BrokerTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

func CreateKafkaReader(conf config.KafkaConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{conf.BrokerAddress},
		Topic:       conf.BrokerTopic,
		GroupID:     conf.GroupID,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
		StartOffset: kafka.FirstOffset,
	})
}
