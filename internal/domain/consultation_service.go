package domain

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/Vovarama1992/ai_doctor/internal/ai"
	"github.com/Vovarama1992/ai_doctor/internal/ports"
	"github.com/Vovarama1992/ai_doctor/internal/worker"
	"github.com/google/uuid"
	"github.com/rs/xid"
	"go.uber.org/zap"
)

// Persona holds the fixed texts the consultation is built around.
type Persona struct {
	Prompt              string
	NoImageReply        string
	NoAnalysisReply     string
	TranscriptionFailed string
}

type Collaborators struct {
	Normalizer  ports.AudioNormalizer
	Transcriber ports.Transcriber
	Encoder     ports.ImageEncoder
	Analyzer    ports.ImageAnalyzer
	Synthesizer ports.SpeechSynthesizer
}

type consultationService struct {
	deps        Collaborators
	persona     Persona
	visionModel string
	outputDir   string
	pool        *worker.Pool
	log         *zap.Logger
}

func NewConsultationService(
	deps Collaborators,
	persona Persona,
	visionModel string,
	outputDir string,
	pool *worker.Pool,
	log *zap.Logger,
) ports.ConsultationService {
	return &consultationService{
		deps:        deps,
		persona:     persona,
		visionModel: visionModel,
		outputDir:   outputDir,
		pool:        pool,
		log:         log.Named("consult"),
	}
}

type branch struct {
	text    string
	notices []ports.Notice
}

func (s *consultationService) Consult(ctx context.Context, req ports.ConsultRequest) ports.ConsultOutcome {
	if req.AudioPath == "" && req.ImagePath == "" {
		s.log.Debug("empty submission")
		return ports.ConsultOutcome{}
	}

	runID := xid.New().String()
	log := s.log.With(zap.String("run", runID))
	start := time.Now()
	log.Info("consultation started",
		zap.Bool("audio", req.AudioPath != ""),
		zap.Bool("image", req.ImagePath != ""))

	var encoded *worker.Task[string]
	if req.ImagePath != "" {
		encoded = worker.Submit(ctx, s.pool, func(context.Context) (string, error) {
			return s.deps.Encoder.Encode(req.ImagePath)
		})
	}

	var out ports.ConsultOutcome

	if req.AudioPath != "" {
		heard := s.transcribe(ctx, req.AudioPath)
		out.Transcript = heard.text
		out.Notices = append(out.Notices, heard.notices...)
	}

	if encoded != nil {
		seen := s.analyze(ctx, encoded, s.persona.Prompt+out.Transcript)
		out.Reply = seen.text
		out.Notices = append(out.Notices, seen.notices...)
	} else {
		out.Reply = s.persona.NoImageReply
	}

	spoken := s.synthesize(ctx, out.Reply)
	out.AudioPath = spoken.text
	out.Notices = append(out.Notices, spoken.notices...)

	for _, n := range out.Notices {
		log.Warn("stage degraded",
			zap.String("stage", string(n.Stage)),
			zap.Stringer("kind", n.Kind),
			zap.Error(n.Err))
	}
	log.Info("consultation finished",
		zap.Duration("took", time.Since(start)),
		zap.Bool("spoken", out.AudioPath != ""))

	return out
}

// transcribe normalizes and transcribes on the pool. A decode failure leaves
// the transcript empty; a remote failure yields the sentinel text.
func (s *consultationService) transcribe(ctx context.Context, audioPath string) branch {
	task := worker.Submit(ctx, s.pool, func(ctx context.Context) (branch, error) {
		wav, err := s.deps.Normalizer.Normalize(ctx, audioPath)
		if err != nil {
			kind := ports.KindUnsupportedMedia
			if errors.Is(err, fs.ErrNotExist) {
				kind = ports.KindNotFound
			}
			return branch{notices: []ports.Notice{notice(ports.StageAudio, kind, err)}}, nil
		}

		res := s.deps.Transcriber.Transcribe(ctx, wav)
		if !res.OK() {
			return branch{
				text:    s.persona.TranscriptionFailed,
				notices: []ports.Notice{notice(ports.StageTranscribe, res.Kind, res.Err)},
			}, nil
		}
		return branch{text: res.Value}, nil
	})

	b, err := task.Wait(ctx)
	if err != nil {
		return branch{
			text:    s.persona.TranscriptionFailed,
			notices: []ports.Notice{notice(ports.StageTranscribe, ai.ClassifyError(err), err)},
		}
	}
	return b
}

func (s *consultationService) analyze(ctx context.Context, encoded *worker.Task[string], prompt string) branch {
	image, err := encoded.Wait(ctx)
	if err != nil {
		kind := ai.ClassifyError(err)
		if errors.Is(err, ai.ErrImageNotFound) {
			kind = ports.KindNotFound
		}
		return branch{
			text:    s.persona.NoAnalysisReply,
			notices: []ports.Notice{notice(ports.StageImage, kind, err)},
		}
	}

	task := worker.Submit(ctx, s.pool, func(ctx context.Context) (ports.Result[string], error) {
		return s.deps.Analyzer.Analyze(ctx, prompt, s.visionModel, image), nil
	})

	res, err := task.Wait(ctx)
	if err != nil {
		res = ports.Failure[string](ai.ClassifyError(err), err)
	}
	if !res.OK() {
		return branch{
			text:    s.persona.NoAnalysisReply,
			notices: []ports.Notice{notice(ports.StageAnalyze, res.Kind, res.Err)},
		}
	}
	return branch{text: res.Value}
}

func (s *consultationService) synthesize(ctx context.Context, reply string) branch {
	target := filepath.Join(s.outputDir, "reply_"+uuid.NewString()+".mp3")

	task := worker.Submit(ctx, s.pool, func(ctx context.Context) (ports.Result[string], error) {
		return s.deps.Synthesizer.Synthesize(ctx, reply, target), nil
	})

	res, err := task.Wait(ctx)
	if err != nil {
		res = ports.Failure[string](ai.ClassifyError(err), err)
	}
	if !res.OK() {
		return branch{notices: []ports.Notice{notice(ports.StageSynthesize, res.Kind, res.Err)}}
	}
	return branch{text: res.Value}
}

func notice(stage ports.Stage, kind ports.FailureKind, err error) ports.Notice {
	return ports.Notice{
		Stage:   stage,
		Kind:    kind,
		Reason:  kind.String(),
		Message: ai.Describe(kind),
		Err:     err,
	}
}
