package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Vovarama1992/ai_doctor/internal/ports"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

var ErrNoChoices = errors.New("completion has no choices")

// VisionClient asks a multimodal chat model about one image.
type VisionClient struct {
	client *openai.Client
	log    *zap.Logger
}

func NewVisionClient(client *openai.Client, log *zap.Logger) *VisionClient {
	return &VisionClient{client: client, log: log.Named("vision")}
}

// Analyze sends a single-turn request with the prompt and the image as a data
// URI. Failures are logged and returned as a Result, never raised.
func (c *VisionClient) Analyze(ctx context.Context, prompt, model, encodedImage string) ports.Result[string] {
	start := time.Now()

	messages := []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt},
				{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: DataURI(encodedImage)},
				},
			},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		kind := ClassifyError(err)
		c.log.Error("vision completion failed",
			zap.String("model", model),
			zap.Stringer("kind", kind),
			zap.String("reason", Describe(kind)),
			zap.Error(err))
		return ports.Failure[string](kind, err)
	}

	if len(resp.Choices) == 0 {
		c.log.Warn("vision completion returned no choices", zap.String("model", model))
		return ports.Failure[string](ports.KindEmpty, ErrNoChoices)
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	c.log.Info("vision completion done",
		zap.String("model", model),
		zap.Duration("took", time.Since(start)),
		zap.Int("reply_len", len(reply)))

	return ports.Success(reply)
}
