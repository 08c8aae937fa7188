// Package compose generates email drafts via langchaingo.
//
// The generator asks an OpenAI-compatible chat model for a JSON object with
// exactly two string fields, "subject" and "body", and validates that shape
// strictly: a missing field, an empty field, or undecodable output is a
// generation error, never a partially populated draft.
package compose

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ghostwriter/internal/draft"
)

// Config holds configuration for the draft generator.
type Config struct {
	// BaseURL is the OpenAI-compatible endpoint.
	BaseURL string `koanf:"base_url"`
	// Model is the chat model to use.
	Model string `koanf:"model"`
	// APIKey authenticates against the endpoint.
	APIKey string `koanf:"api_key"`
	// Signature is appended to the prompt's sign-off instruction.
	Signature string `koanf:"signature"`
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("llm model is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("llm api key is required")
	}
	return nil
}

// chatModel is the slice of the langchaingo model surface the generator
// needs. Narrow on purpose so tests can fake it.
type chatModel interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Generator produces subject/body drafts from a recipient, an intent, and a
// tone. It implements draft.Generator.
type Generator struct {
	model     chatModel
	signature string
	logger    *zap.Logger
}

// NewGenerator creates a generator backed by an OpenAI-compatible endpoint.
func NewGenerator(cfg Config, logger *zap.Logger) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating llm client: %w", err)
	}

	return &Generator{model: llm, signature: cfg.Signature, logger: logger}, nil
}

// draftPayload is the exact shape the model must return.
type draftPayload struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Generate asks the model for a draft. All failures come back as
// *draft.GenerationError.
func (g *Generator) Generate(ctx context.Context, recipientName, intent string, tone draft.Tone) (string, string, error) {
	prompt := g.buildPrompt(recipientName, intent, tone)

	resp, err := g.model.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)},
		llms.WithJSONMode(),
	)
	if err != nil {
		return "", "", &draft.GenerationError{Cause: "model call failed", Err: err}
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", "", &draft.GenerationError{Cause: "model returned no choices"}
	}

	var payload draftPayload
	if err := json.Unmarshal([]byte(resp.Choices[0].Content), &payload); err != nil {
		g.logger.Warn("undecodable model output", zap.Error(err))
		return "", "", &draft.GenerationError{Cause: "model returned malformed JSON", Err: err}
	}
	if strings.TrimSpace(payload.Subject) == "" {
		return "", "", &draft.GenerationError{Cause: "model output missing subject"}
	}
	if strings.TrimSpace(payload.Body) == "" {
		return "", "", &draft.GenerationError{Cause: "model output missing body"}
	}

	return payload.Subject, payload.Body, nil
}

// buildPrompt assembles the drafting instruction. The body must carry the
// content only; restating the subject there breaks the field separation.
func (g *Generator) buildPrompt(recipientName, intent string, tone draft.Tone) string {
	var b strings.Builder
	b.WriteString("You are a professional email assistant.\n\n")
	b.WriteString("Task: write an email based on the context below.\n")
	fmt.Fprintf(&b, "Recipient name: %s\n", recipientName)
	fmt.Fprintf(&b, "Context/intent: %s\n\n", intent)
	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "- Tone: %s\n", tone)
	b.WriteString(`- Respond with a JSON object with exactly two keys: "subject" and "body".` + "\n")
	b.WriteString("- The body must contain the email content only, without the subject line.\n")
	if g.signature != "" {
		fmt.Fprintf(&b, "- Sign off as %q.\n", g.signature)
	}
	return b.String()
}
