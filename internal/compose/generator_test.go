package compose

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ghostwriter/internal/draft"
)

type fakeModel struct {
	content string
	err     error
	// lastPrompt captures the prompt of the most recent call.
	lastPrompt string
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if len(messages) > 0 && len(messages[0].Parts) > 0 {
		if text, ok := messages[0].Parts[0].(llms.TextContent); ok {
			f.lastPrompt = text.Text
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.content}},
	}, nil
}

func newTestGenerator(model chatModel) *Generator {
	return &Generator{model: model, signature: "Best regards, Sam", logger: zap.NewNop()}
}

func TestGenerate(t *testing.T) {
	t.Run("returns subject and body from well-formed output", func(t *testing.T) {
		model := &fakeModel{content: `{"subject": "Lunch?", "body": "Want to grab lunch tomorrow?"}`}
		g := newTestGenerator(model)

		subject, body, err := g.Generate(context.Background(), "Alice", "lunch tomorrow", draft.ToneCasual)
		require.NoError(t, err)
		assert.Equal(t, "Lunch?", subject)
		assert.Equal(t, "Want to grab lunch tomorrow?", body)
	})

	t.Run("prompt carries recipient, intent, tone, and signature", func(t *testing.T) {
		model := &fakeModel{content: `{"subject": "s", "body": "b"}`}
		g := newTestGenerator(model)

		_, _, err := g.Generate(context.Background(), "Alice", "lunch tomorrow", draft.ToneUrgent)
		require.NoError(t, err)
		assert.Contains(t, model.lastPrompt, "Alice")
		assert.Contains(t, model.lastPrompt, "lunch tomorrow")
		assert.Contains(t, model.lastPrompt, "Urgent")
		assert.Contains(t, model.lastPrompt, "Best regards, Sam")
	})

	t.Run("model failure is a generation error", func(t *testing.T) {
		model := &fakeModel{err: errors.New("connection refused")}
		g := newTestGenerator(model)

		_, _, err := g.Generate(context.Background(), "Alice", "x", draft.ToneFormal)
		var genErr *draft.GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Contains(t, genErr.Error(), "model call failed")
	})

	t.Run("malformed output shapes", func(t *testing.T) {
		for name, content := range map[string]string{
			"not json":          `Subject: Lunch`,
			"missing subject":   `{"body": "hi"}`,
			"missing body":      `{"subject": "hi"}`,
			"empty subject":     `{"subject": "  ", "body": "hi"}`,
			"empty body":        `{"subject": "hi", "body": ""}`,
			"wrong field types": `{"subject": 1, "body": 2}`,
			"empty object":      `{}`,
		} {
			t.Run(name, func(t *testing.T) {
				g := newTestGenerator(&fakeModel{content: content})
				_, _, err := g.Generate(context.Background(), "Alice", "x", draft.ToneFormal)
				var genErr *draft.GenerationError
				assert.ErrorAs(t, err, &genErr, "content: %s", content)
			})
		}
	})

	t.Run("no choices is a generation error", func(t *testing.T) {
		g := newTestGenerator(&emptyModel{})
		_, _, err := g.Generate(context.Background(), "Alice", "x", draft.ToneFormal)
		var genErr *draft.GenerationError
		assert.ErrorAs(t, err, &genErr)
	})
}

type emptyModel struct{}

func (emptyModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	return &llms.ContentResponse{}, nil
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Config{APIKey: "k"}.Validate())
	assert.Error(t, Config{Model: "gpt-4o-mini"}.Validate())
	assert.NoError(t, Config{Model: "gpt-4o-mini", APIKey: "k"}.Validate())
}
