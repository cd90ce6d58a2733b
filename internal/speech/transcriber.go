package speech

import (
	"context"
	"strings"
	"time"

	"github.com/Vovarama1992/ai_doctor/internal/ai"
	"github.com/Vovarama1992/ai_doctor/internal/ports"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// GroqTranscriber sends audio files to a hosted Whisper model.
type GroqTranscriber struct {
	client   *openai.Client
	model    string
	language string
	log      *zap.Logger
}

func NewGroqTranscriber(client *openai.Client, model, language string, log *zap.Logger) *GroqTranscriber {
	return &GroqTranscriber{
		client:   client,
		model:    model,
		language: language,
		log:      log.Named("stt"),
	}
}

// Transcribe never returns a Go error: any failure comes back as a Result
// kind and is logged here.
func (t *GroqTranscriber) Transcribe(ctx context.Context, audioPath string) ports.Result[string] {
	start := time.Now()

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
		Language: t.language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		kind := ai.ClassifyError(err)
		t.log.Error("transcription failed",
			zap.String("model", t.model),
			zap.String("file", audioPath),
			zap.Stringer("kind", kind),
			zap.String("reason", ai.Describe(kind)),
			zap.Error(err))
		return ports.Failure[string](kind, err)
	}

	text := strings.TrimSpace(resp.Text)
	t.log.Info("transcribed",
		zap.String("model", t.model),
		zap.Duration("took", time.Since(start)),
		zap.Int("chars", len(text)))

	return ports.Success(text)
}
