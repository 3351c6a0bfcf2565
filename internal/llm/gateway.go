package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clarifile/internal/adapter/ollama"
)

var (
	// ErrCall marks any failure of the underlying transport, so HTTP
	// handlers can map it to an upstream-failure status.
	ErrCall = errors.New("LLM call failed")

	ErrEmptyAnswer = errors.New("model returned empty text")
)

// Generator is the single contract the answering pipeline depends on. The
// concrete transport (local daemon or cloud chat API) is injected at wiring
// time, so tests can substitute a fake.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ChatCompleter is the cloud chat-completion transport.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Responder is the local daemon transport; both ollama.Client and
// ollama.CompatClient satisfy it.
type Responder interface {
	Generate(ctx context.Context, prompt string) (*ollama.GenerateResponse, error)
}

// Gateway normalizes transport responses and failures behind Generate.
type Gateway struct {
	gen Generator
}

func NewGateway(gen Generator) *Gateway {
	return &Gateway{gen: gen}
}

func (g *Gateway) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := g.gen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCall, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %w", ErrCall, ErrEmptyAnswer)
	}
	return text, nil
}

type cloudTransport struct {
	chat    ChatCompleter
	persona string
}

// NewCloudTransport sends the persona as the system role and the prompt as
// the user message.
func NewCloudTransport(chat ChatCompleter, persona string) Generator {
	return &cloudTransport{chat: chat, persona: persona}
}

func (t *cloudTransport) Generate(ctx context.Context, prompt string) (string, error) {
	return t.chat.Complete(ctx, t.persona, prompt)
}

type localTransport struct {
	daemon  Responder
	persona string
}

// NewLocalTransport prepends the persona to the prompt, since the daemon's
// generate endpoint has no separate system role.
func NewLocalTransport(daemon Responder, persona string) Generator {
	return &localTransport{daemon: daemon, persona: persona}
}

func (t *localTransport) Generate(ctx context.Context, prompt string) (string, error) {
	full := prompt
	if t.persona != "" {
		full = t.persona + "\n\n" + prompt
	}
	resp, err := t.daemon.Generate(ctx, full)
	if err != nil {
		return "", err
	}
	return resp.Response, nil
}
