// Package messaging 领域事件发布的基础设施实现
package messaging

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/xiebiao/bookreview/internal/application/event"
	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/pkg/circuitbreaker"
	"github.com/xiebiao/bookreview/pkg/metrics"
	"github.com/xiebiao/bookreview/pkg/mq"
)

const breakerName = "event-publisher"

// Broker 底层消息发布（*mq.Publisher）
type Broker interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// BreakerPublisher 带熔断和超时的事件发布者
// Broker故障时熔断器打开，后续事件直接丢弃，不拖慢HTTP请求
type BreakerPublisher struct {
	broker  Broker
	breaker *circuitbreaker.CircuitBreaker
	timeout time.Duration
}

// NewBreakerPublisher 创建事件发布者
func NewBreakerPublisher(broker Broker, timeout time.Duration) *BreakerPublisher {
	metrics.InitMetrics()
	cb := circuitbreaker.NewCircuitBreaker(breakerName, circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: circuitbreaker.ConsecutiveFailures(5),
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(to))
			slog.Warn("熔断器状态变化", "name", name, "from", from.String(), "to", to.String())
		},
	})
	metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": breakerName}, float64(circuitbreaker.StateClosed))

	return &BreakerPublisher{broker: broker, breaker: cb, timeout: timeout}
}

// Publish 实现event.Publisher
func (p *BreakerPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	// 请求结束后ctx会被取消，事件发布使用独立的超时
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	err := p.breaker.ExecuteContext(pubCtx, func(ctx context.Context) error {
		return p.broker.Publish(ctx, routingKey, payload)
	})

	result := metrics.ResultLabel(err)
	if errors.Is(err, circuitbreaker.ErrOpenState) {
		result = "rejected"
	}
	metrics.IncCounterVec(metrics.MessagesPublishedTotal, map[string]string{"routing_key": routingKey, "result": result})
	metrics.IncCounterVec(metrics.CircuitBreakerRequests, map[string]string{"name": breakerName, "result": result})
	return err
}

// State 熔断器当前状态
func (p *BreakerPublisher) State() circuitbreaker.State {
	return p.breaker.State()
}

// NoopPublisher mq关闭时使用
type NoopPublisher struct{}

// Publish 丢弃事件
func (NoopPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	return nil
}

// NewEventPublisher 根据配置创建事件发布者
// 连接RabbitMQ失败时降级为NoopPublisher，服务照常启动
func NewEventPublisher(cfg *config.Config) (event.Publisher, func(), error) {
	if !cfg.MQ.Enabled {
		slog.Info("事件发布未启用")
		return NoopPublisher{}, func() {}, nil
	}

	broker, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
	if err != nil {
		slog.Warn("连接RabbitMQ失败，事件发布降级为空实现", "error", err)
		return NoopPublisher{}, func() {}, nil
	}

	cleanup := func() {
		if err := broker.Close(); err != nil {
			slog.Error("关闭RabbitMQ连接失败", "error", err)
		}
	}
	return NewBreakerPublisher(broker, cfg.MQ.PublishTimeout), cleanup, nil
}
