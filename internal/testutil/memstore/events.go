package memstore

import (
	"context"
	"sync"
)

// Message 已发布的事件
type Message struct {
	RoutingKey string
	Payload    interface{}
}

// Publisher 记录全部事件的发布者，实现event.Publisher
type Publisher struct {
	mu       sync.Mutex
	messages []Message
	fail     error
}

// NewPublisher 创建发布者
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Fail 之后的发布都返回err
func (p *Publisher) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail = err
}

func (p *Publisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.messages = append(p.messages, Message{RoutingKey: routingKey, Payload: payload})
	return nil
}

// Messages 已发布事件的副本
func (p *Publisher) Messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Message(nil), p.messages...)
}

// RoutingKeys 按发布顺序返回路由键
func (p *Publisher) RoutingKeys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.messages))
	for _, m := range p.messages {
		keys = append(keys, m.RoutingKey)
	}
	return keys
}
