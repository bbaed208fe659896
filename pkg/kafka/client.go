// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"time"
	"vidhub-go/internal/config"
	"vidhub-go/pkg/log"
	"vidhub-go/pkg/tasks"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// messageWriter 是 kafka.Writer 的最小子集，便于测试替换。
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer 负责把上传完成事件发送到 Kafka。
type Producer struct {
	writer messageWriter
}

// NewProducer 初始化 Kafka 生产者。
func NewProducer(cfg config.KafkaConfig) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	log.Infof("Kafka 生产者初始化成功，topic=%s", cfg.Topic)
	return &Producer{writer: w}
}

// PublishVideoUploaded 发送一个视频上传完成事件，以 ObjectKey 作为消息 key 保证同一对象的事件有序。
func (p *Producer) PublishVideoUploaded(ctx context.Context, task tasks.VideoUploadedTask) error {
	if task.EventID == "" {
		task.EventID = uuid.NewString()
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(task.ObjectKey),
		Value: payload,
	})
}

// Close 刷新并关闭底层 writer。
func (p *Producer) Close() error {
	return p.writer.Close()
}
