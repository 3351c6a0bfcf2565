package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"clarifile/internal/adapter/ollama"
	"clarifile/internal/llm"
)

type stubGenerator struct {
	text string
	err  error
	got  string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.got = prompt
	return s.text, s.err
}

func TestGateway_Generate(t *testing.T) {
	gen := &stubGenerator{text: "an answer"}
	g := llm.NewGateway(gen)

	got, err := g.Generate(t.Context(), "a prompt")
	require.NoError(t, err)
	assert.Equal(t, "an answer", got)
	assert.Equal(t, "a prompt", gen.got)
}

func TestGateway_WrapsTransportError(t *testing.T) {
	boom := errors.New("connection refused")
	g := llm.NewGateway(&stubGenerator{err: boom})

	_, err := g.Generate(t.Context(), "a prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, llm.ErrCall)
	assert.Contains(t, err.Error(), "LLM call failed")
}

func TestGateway_EmptyText(t *testing.T) {
	g := llm.NewGateway(&stubGenerator{text: "   \n"})

	_, err := g.Generate(t.Context(), "a prompt")
	assert.ErrorIs(t, err, llm.ErrEmptyAnswer)
}

type stubChat struct {
	system string
	user   string
}

func (s *stubChat) Complete(_ context.Context, system, user string) (string, error) {
	s.system = system
	s.user = user
	return "cloud says hi", nil
}

func TestCloudTransport_PersonaAsSystemRole(t *testing.T) {
	chat := &stubChat{}
	gen := llm.NewCloudTransport(chat, "be terse")

	got, err := gen.Generate(t.Context(), "the prompt")
	require.NoError(t, err)
	assert.Equal(t, "cloud says hi", got)
	assert.Equal(t, "be terse", chat.system)
	assert.Equal(t, "the prompt", chat.user)
}

type stubDaemon struct {
	prompt string
}

func (s *stubDaemon) Generate(_ context.Context, prompt string) (*ollama.GenerateResponse, error) {
	s.prompt = prompt
	return &ollama.GenerateResponse{Response: "local says hi", Done: true}, nil
}

func TestLocalTransport_PersonaPrepended(t *testing.T) {
	daemon := &stubDaemon{}
	gen := llm.NewLocalTransport(daemon, "be terse")

	got, err := gen.Generate(t.Context(), "the prompt")
	require.NoError(t, err)
	assert.Equal(t, "local says hi", got)
	assert.Equal(t, "be terse\n\nthe prompt", daemon.prompt)
}

func TestLocalTransport_NoPersona(t *testing.T) {
	daemon := &stubDaemon{}
	gen := llm.NewLocalTransport(daemon, "")

	_, err := gen.Generate(t.Context(), "the prompt")
	require.NoError(t, err)
	assert.Equal(t, "the prompt", daemon.prompt)
}
