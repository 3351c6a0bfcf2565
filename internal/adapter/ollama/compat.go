package ollama

import (
	"context"
)

// ChatCompleter is the cloud chat transport the shim delegates to.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// CompatClient mimics the local daemon's client surface on top of a cloud
// chat API. Callers written against Generate/GenerateStream keep working
// unmodified when only a cloud credential is available: responses are
// synthesized in the daemon's shape, and GenerateStream emulates incremental
// delivery by slicing the final text into fixed-size fragments.
type CompatClient struct {
	chat         ChatCompleter
	model        string
	fragmentSize int
}

const defaultFragmentSize = 48

func NewCompatClient(chat ChatCompleter, model string) *CompatClient {
	return &CompatClient{chat: chat, model: model, fragmentSize: defaultFragmentSize}
}

// SetFragmentSize overrides the emulated stream fragment length in runes.
func (c *CompatClient) SetFragmentSize(n int) {
	if n > 0 {
		c.fragmentSize = n
	}
}

func (c *CompatClient) Generate(ctx context.Context, prompt string) (*GenerateResponse, error) {
	text, err := c.chat.Complete(ctx, "", prompt)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, ErrEmptyResponse
	}
	return &GenerateResponse{Model: c.model, Response: text, Done: true}, nil
}

// GenerateStream performs one blocking cloud call, then replays the answer as
// a sequence of daemon-shaped fragments with Done set on the last.
func (c *CompatClient) GenerateStream(ctx context.Context, prompt string) (<-chan GenerateResponse, error) {
	text, err := c.chat.Complete(ctx, "", prompt)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, ErrEmptyResponse
	}

	runes := []rune(text)
	out := make(chan GenerateResponse)
	go func() {
		defer close(out)
		for start := 0; start < len(runes); start += c.fragmentSize {
			end := start + c.fragmentSize
			if end > len(runes) {
				end = len(runes)
			}
			frag := GenerateResponse{
				Model:    c.model,
				Response: string(runes[start:end]),
				Done:     end == len(runes),
			}
			select {
			case out <- frag:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
