package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Hrishikeshgupta2002/AI-Council/model"
)

func TestBuildParams(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test" })

	params := m.buildParams(model.Request{
		Instructions: "You are Sheryl.",
		Prompt:       "How do we execute?",
		Model:        "claude-sonnet-4-5",
		Temperature:  model.Temperature(0.5),
	})

	assert.Equal(t, "claude-sonnet-4-5", string(params.Model))
	assert.Len(t, params.Messages, 1)
	assert.Len(t, params.System, 1)
	assert.Equal(t, "You are Sheryl.", params.System[0].Text)
	assert.InDelta(t, 0.5, params.Temperature.Value, 1e-9)
	assert.Equal(t, int64(4096), params.MaxTokens)
}

func TestInfo(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test"; o.Model = "claude-haiku" })
	assert.Equal(t, model.Info{Name: "claude-haiku", Provider: Provider}, m.Info())
}
