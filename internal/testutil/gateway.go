package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Hrishikeshgupta2002/AI-Council/model"
)

// ReplyFunc computes the reply for one request.
type ReplyFunc func(ctx context.Context, req model.Request) (string, error)

// Gateway is a scripted model.Model. Behavior is registered per agent name
// (model.Request.Agent); agents without a script get a generic reply.
//
//	gw := NewGateway().Reply("Elon", "Ship it").Hang("Ray").Fail("Sam", errors.New("boom"))
type Gateway struct {
	mu      sync.Mutex
	scripts map[string]ReplyFunc
	calls   []model.Request
	pingErr  error
	pingHang bool
}

// NewGateway creates an empty scripted gateway.
func NewGateway() *Gateway {
	return &Gateway{scripts: map[string]ReplyFunc{}}
}

// On registers fn for agent (chainable).
func (g *Gateway) On(agent string, fn ReplyFunc) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.scripts[agent] = fn

	return g
}

// Reply makes agent answer text (chainable).
func (g *Gateway) Reply(agent, text string) *Gateway {
	return g.On(agent, func(context.Context, model.Request) (string, error) { return text, nil })
}

// Replies makes agent answer each text in turn, repeating the last one (chainable).
func (g *Gateway) Replies(agent string, texts ...string) *Gateway {
	var (
		mu sync.Mutex
		i  int
	)

	return g.On(agent, func(context.Context, model.Request) (string, error) {
		mu.Lock()
		defer mu.Unlock()

		text := texts[min(i, len(texts)-1)]
		i++

		return text, nil
	})
}

// Fail makes agent fail with err (chainable).
func (g *Gateway) Fail(agent string, err error) *Gateway {
	return g.On(agent, func(context.Context, model.Request) (string, error) { return "", err })
}

// Hang makes agent block until its context is done (chainable).
func (g *Gateway) Hang(agent string) *Gateway {
	return g.On(agent, func(ctx context.Context, _ model.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
}

// Delay makes agent answer text after d unless the context ends first (chainable).
func (g *Gateway) Delay(agent string, d time.Duration, text string) *Gateway {
	return g.On(agent, func(ctx context.Context, _ model.Request) (string, error) {
		select {
		case <-time.After(d):
			return text, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
}

// SetPingError makes Ping fail with err.
func (g *Gateway) SetPingError(err error) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.pingErr = err

	return g
}

// HangPing makes Ping block until its context is done.
func (g *Gateway) HangPing() *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.pingHang = true

	return g
}

// Calls returns a copy of every request received.
func (g *Gateway) Calls() []model.Request {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]model.Request, len(g.calls))
	copy(out, g.calls)

	return out
}

// CallsFor returns the requests received for agent.
func (g *Gateway) CallsFor(agent string) []model.Request {
	var out []model.Request

	for _, c := range g.Calls() {
		if c.Agent == agent {
			out = append(out, c)
		}
	}

	return out
}

// Generate implements model.Model.
func (g *Gateway) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	fn, ok := g.scripts[req.Agent]
	g.mu.Unlock()

	if !ok {
		fn = func(context.Context, model.Request) (string, error) {
			return fmt.Sprintf("%s has an opinion.", req.Agent), nil
		}
	}

	respCh := make(chan model.Response, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		text, err := fn(ctx, req)
		if err != nil {
			errCh <- err
			return
		}

		respCh <- model.Response{Text: text, FinishReason: "stop"}
	}()

	return respCh, errCh
}

// Info implements model.Model.
func (g *Gateway) Info() model.Info { return model.Info{Name: "scripted", Provider: "test"} }

// Ping implements model.Pinger.
func (g *Gateway) Ping(ctx context.Context) error {
	g.mu.Lock()
	hang, err := g.pingHang, g.pingErr
	g.mu.Unlock()

	if hang {
		<-ctx.Done()
		return ctx.Err()
	}

	return err
}
