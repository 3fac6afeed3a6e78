package testutils

import (
	"context"
	"encoding/json"
	"sync"
)

// Message is one captured publication.
type Message struct {
	Type string
	Body []byte
}

// Publisher records PublishJSON calls instead of talking to a broker.
type Publisher struct {
	mu       sync.Mutex
	Messages []Message
	Fail     error
}

func (p *Publisher) PublishJSON(_ context.Context, msgType string, body any) error {
	if p.Fail != nil {
		return p.Fail
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.Messages = append(p.Messages, Message{Type: msgType, Body: b})
	p.mu.Unlock()
	return nil
}

func (p *Publisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.Messages))
	for _, m := range p.Messages {
		out = append(out, m.Type)
	}
	return out
}
