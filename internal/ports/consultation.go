package ports

import "context"

// ConsultRequest is one submission. Empty path means the input is absent.
type ConsultRequest struct {
	AudioPath string
	ImagePath string
}

// Stage of the consultation pipeline a Notice refers to.
type Stage string

const (
	StageAudio      Stage = "audio"
	StageTranscribe Stage = "transcribe"
	StageImage      Stage = "image"
	StageAnalyze    Stage = "analyze"
	StageSynthesize Stage = "synthesize"
)

// Notice describes a degraded stage so the UI can show a specific message.
type Notice struct {
	Stage   Stage       `json:"stage"`
	Kind    FailureKind `json:"-"`
	Reason  string      `json:"kind"`
	Message string      `json:"message"`
	Err     error       `json:"-"`
}

// ConsultOutcome holds the three outputs of a run. AudioPath == "" means no audio.
type ConsultOutcome struct {
	Transcript string
	Reply      string
	AudioPath  string
	Notices    []Notice
}

type ConsultationService interface {
	Consult(ctx context.Context, req ConsultRequest) ConsultOutcome
}

// pipeline collaborators

type AudioNormalizer interface {
	Normalize(ctx context.Context, path string) (string, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) Result[string]
}

type ImageEncoder interface {
	Encode(path string) (string, error)
}

type ImageAnalyzer interface {
	Analyze(ctx context.Context, prompt, model, encodedImage string) Result[string]
}

type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, outputPath string) Result[string]
}
