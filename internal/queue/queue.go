package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel 是 Publisher 需要用到的 amqp.Channel 的方法
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Declare 声明一个持久化的队列
func Declare(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,  // 队列名称
		true,  // 是否持久化
		false, // 是否自动删除
		false, // 是否独占
		false, // 是否不等待
		nil,   // 额外参数
	)
}

// Publisher 把消息序列化成 JSON 后投递到指定的队列
type Publisher struct {
	ch      Channel
	queue   string
	timeout time.Duration
}

func NewPublisher(ch Channel, queue string, timeout time.Duration) *Publisher {
	return &Publisher{
		ch:      ch,
		queue:   queue,
		timeout: timeout,
	}
}

func (p *Publisher) Publish(ctx context.Context, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.ch.PublishWithContext(
		ctx,
		"",      // 使用默认交换机
		p.queue, // 路由键即队列名称
		false,   // 不需要强制路由
		false,   // 不需要立即发送
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
