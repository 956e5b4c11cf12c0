package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/domain"
)

// Consume 逐条处理求解队列中的消息，直到 ctx 被取消或者通道被关闭
func (w *Worker) Consume(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				w.logger.Warn("消息通道已关闭")
				return
			}
			w.handleDelivery(ctx, d)
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	msg := domain.SolveJobMessage{}
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		w.logger.Error("任务消息反序列化失败", slog.String("error", err.Error()))
		_ = d.Nack(false, false)
		return
	}

	if err := w.Process(ctx, msg); err != nil {
		w.logger.Error("任务处理失败", slog.String("job_id", msg.JobID.String()), slog.String("error", err.Error()))
		_ = d.Nack(false, true) // 将消息重新入队
		return
	}

	_ = d.Ack(false)
}
