package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Vovarama1992/ai_doctor/internal/ports"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const helpText = "Send me a voice note describing what bothers you, or a photo of it, and I will answer by voice."

func (app *BotApp) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	log := app.log.With(zap.Int64("chat", chatID), zap.Int("message", msg.MessageID))

	in := inputFrom(msg)
	if in.kind == inputNone {
		app.send(log, tgbotapi.NewMessage(chatID, helpText))
		return
	}

	_, _ = app.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))

	path, err := app.download(ctx, in)
	if err != nil {
		log.Error("download failed", zap.String("file", in.fileID), zap.Error(err))
		app.send(log, tgbotapi.NewMessage(chatID, "I could not download your file, please try again."))
		return
	}
	defer os.Remove(path)

	var req ports.ConsultRequest
	if in.kind == inputAudio {
		req.AudioPath = path
	} else {
		req.ImagePath = path
	}

	out := app.svc.Consult(ctx, req)
	log.Info("consultation answered",
		zap.Bool("spoken", out.AudioPath != ""),
		zap.Int("notices", len(out.Notices)))

	app.send(log, tgbotapi.NewMessage(chatID, formatReply(out)))

	if out.AudioPath != "" {
		app.send(log, tgbotapi.NewAudio(chatID, tgbotapi.FilePath(out.AudioPath)))
	}
}

func (app *BotApp) send(log *zap.Logger, c tgbotapi.Chattable) {
	if _, err := app.bot.Send(c); err != nil {
		log.Warn("send failed", zap.Error(err))
	}
}

// download saves the Telegram file into the work dir under a fresh name.
func (app *BotApp) download(ctx context.Context, in input) (string, error) {
	file, err := app.bot.GetFile(tgbotapi.FileConfig{FileID: in.fileID})
	if err != nil {
		return "", fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(app.bot.Token), nil)
	if err != nil {
		return "", err
	}
	resp, err := app.httpCli.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download: status %d", resp.StatusCode)
	}

	path := filepath.Join(app.workDir, "tg_"+uuid.NewString()+in.ext)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("save: %w", err)
	}
	return path, out.Close()
}

func formatReply(out ports.ConsultOutcome) string {
	var b strings.Builder
	if out.Transcript != "" {
		fmt.Fprintf(&b, "You said: %s\n\n", out.Transcript)
	}
	b.WriteString(out.Reply)
	for _, n := range out.Notices {
		fmt.Fprintf(&b, "\n\n(%s: %s)", n.Stage, n.Message)
	}
	return b.String()
}
