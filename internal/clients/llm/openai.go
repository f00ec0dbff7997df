package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI implements Client with the official openai-go SDK (chat completions).
type OpenAI struct {
	client openai.Client
}

func NewOpenAI(apiKey, baseURL string) (*OpenAI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai api key missing; set OPENAI_API_KEY")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAI{client: openai.NewClient(opts...)}, nil
}

func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Model) == "" {
		return "", errors.New("llm model is required")
	}
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	// o1-family models reject system messages.
	if req.System != "" && !isO1(req.Model) {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	msgs = append(msgs, openai.UserMessage(req.User))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: msgs,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func isO1(model string) bool {
	return strings.Contains(strings.ToLower(model), "o1")
}
