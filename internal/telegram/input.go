package telegram

import (
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type inputKind int

const (
	inputNone inputKind = iota
	inputAudio
	inputImage
)

type input struct {
	kind   inputKind
	fileID string
	ext    string
}

// inputFrom picks the attachment a consultation can use from msg.
func inputFrom(msg *tgbotapi.Message) input {
	switch {
	case msg.Voice != nil:
		return input{kind: inputAudio, fileID: msg.Voice.FileID, ext: ".ogg"}
	case msg.Audio != nil:
		return input{kind: inputAudio, fileID: msg.Audio.FileID, ext: extOr(msg.Audio.FileName, ".mp3")}
	case len(msg.Photo) > 0:
		// Telegram lists sizes ascending.
		p := msg.Photo[len(msg.Photo)-1]
		return input{kind: inputImage, fileID: p.FileID, ext: ".jpg"}
	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/"):
		return input{kind: inputImage, fileID: msg.Document.FileID, ext: extOr(msg.Document.FileName, ".jpg")}
	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "audio/"):
		return input{kind: inputAudio, fileID: msg.Document.FileID, ext: extOr(msg.Document.FileName, ".mp3")}
	}
	return input{}
}

func extOr(name, fallback string) string {
	if ext := strings.ToLower(filepath.Ext(name)); ext != "" {
		return ext
	}
	return fallback
}
