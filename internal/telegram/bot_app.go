package telegram

import (
	"context"
	"net/http"
	"time"

	"github.com/Vovarama1992/ai_doctor/internal/ports"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// BotApp feeds Telegram voice notes and photos into consultations.
type BotApp struct {
	bot     *tgbotapi.BotAPI
	svc     ports.ConsultationService
	workDir string
	httpCli *http.Client
	log     *zap.Logger
}

func NewBotApp(token string, svc ports.ConsultationService, workDir string, log *zap.Logger) (*BotApp, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &BotApp{
		bot:     bot,
		svc:     svc,
		workDir: workDir,
		httpCli: &http.Client{Timeout: 60 * time.Second},
		log:     log.Named("telegram").With(zap.String("bot", bot.Self.UserName)),
	}, nil
}

// Run polls for updates until ctx is done. Each message is handled on its
// own goroutine.
func (app *BotApp) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := app.bot.GetUpdatesChan(u)
	app.log.Info("bot loop started")

	for {
		select {
		case <-ctx.Done():
			app.bot.StopReceivingUpdates()
			app.log.Info("bot loop stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			go app.handleMessage(ctx, update.Message)
		}
	}
}
