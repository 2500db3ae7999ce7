package telegram

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "maize-vision/internal/application"
	"maize-vision/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я бот для диагностики болезней листьев кукурузы.

📸 Отправьте мне фото листа, и я определю болезнь и оценю степень поражения.

📋 Команды:
/check — начать проверку листа
/last — показать последний результат
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото листа
2️⃣ Бот определит болезнь: гельминтоспориоз, ржавчина, серая пятнистость или здоровый лист
3️⃣ Для больного листа вы получите процент поражения и фото с подсветкой очагов

💡 Рекомендации:
• Снимайте один лист крупным планом
• Снимайте при дневном освещении
• Фото должно быть чётким

📋 Команды:
/check — начать проверку
/last — последний результат
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото листа кукурузы для проверки."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото листа кукурузы."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgBusy            = "⏳ Предыдущее фото ещё обрабатывается, подождите."
	msgNoHistory       = "📭 Вы ещё не проверяли листья. Отправьте фото."
	msgInvalidImage    = "⚠️ Не удалось прочитать фото. Попробуйте отправить другое изображение."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте позже."
	msgTooLarge        = "⚠️ Фото слишком большое. Отправьте изображение поменьше."

	downloadTimeout = 30 * time.Second
)

var errTooLarge = errors.New("file is too large")

var labelNames = map[entity.Label]string{
	entity.LabelBlight:       "Северный гельминтоспориоз (Blight)",
	entity.LabelCommonRust:   "Обыкновенная ржавчина (Common Rust)",
	entity.LabelGrayLeafSpot: "Серая пятнистость (Gray Leaf Spot)",
	entity.LabelHealthy:      "Здоровый лист",
}

var severityNames = map[entity.SeverityLabel]string{
	entity.SeverityMild:     "лёгкая",
	entity.SeverityModerate: "средняя",
	entity.SeveritySevere:   "тяжёлая",
}

// Diagnoser сервис диагностики, нужный боту
type Diagnoser interface {
	Diagnose(ctx context.Context, data []byte, source entity.Source) (*entity.Analysis, error)
	Get(ctx context.Context, id string) (*entity.Analysis, error)
}

// Bot представляет Telegram-бота
type Bot struct {
	api       *tgbotapi.BotAPI
	users     *app.UserService
	diagnosis Diagnoser
	log       *zap.Logger
	client    *http.Client
	maxSize   int64

	// пользователи, чьё фото сейчас в обработке
	inflight sync.Map
	wg       sync.WaitGroup
}

// NewBot создаёт нового бота
// maxSize ограничивает размер скачиваемого фото.
func NewBot(token string, users *app.UserService, diagnosis Diagnoser, log *zap.Logger, maxSize int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	return &Bot{
		api:       api,
		users:     users,
		diagnosis: diagnosis,
		log:       log,
		client:    &http.Client{Timeout: downloadTimeout},
		maxSize:   maxSize,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены контекста.
// Сообщения обрабатываются параллельно; при остановке Run ждёт начатые обработки.
func (b *Bot) Run(ctx context.Context) error {
	defer b.wg.Wait()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleMessage(ctx, msg)
			}(update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	var err error
	switch msg.Command() {
	case "start":
		_, err = b.users.Cancel(ctx, userID, chatID)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "check":
		_, err = b.users.BeginCheck(ctx, userID, chatID)
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "cancel":
		_, err = b.users.Cancel(ctx, userID, chatID)
		b.sendMessage(chatID, msgCancelled)

	case "last":
		b.handleLast(ctx, userID, chatID)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}

	if err != nil {
		b.log.Error("failed to update user state", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (b *Bot) handleLast(ctx context.Context, userID, chatID int64) {
	user, err := b.users.Get(ctx, userID, chatID)
	if err != nil {
		b.log.Error("failed to get user", zap.Int64("user_id", userID), zap.Error(err))
		b.sendMessage(chatID, msgProcessingError)
		return
	}
	if user.LastAnalysisID == "" {
		b.sendMessage(chatID, msgNoHistory)
		return
	}

	analysis, err := b.diagnosis.Get(ctx, user.LastAnalysisID)
	if err != nil {
		if errors.Is(err, entity.ErrAnalysisNotFound) {
			b.sendMessage(chatID, msgNoHistory)
			return
		}
		b.log.Error("failed to get analysis", zap.String("id", user.LastAnalysisID), zap.Error(err))
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	b.sendResult(chatID, analysis)
}

// handlePhoto обрабатывает входящее фото
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID
	log := b.log.With(zap.Int64("user_id", userID), zap.Int64("chat_id", chatID))

	if !b.acquire(userID) {
		b.sendMessage(chatID, msgBusy)
		return
	}
	defer b.release(userID)

	if _, err := b.users.StartProcessing(ctx, userID, chatID); err != nil {
		log.Error("failed to update user state", zap.Error(err))
	}
	b.sendMessage(chatID, msgProcessing)

	// Берём фото с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]

	imageData, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		log.Error("failed to download photo", zap.Error(err))
		if errors.Is(err, errTooLarge) {
			b.sendMessage(chatID, msgTooLarge)
		} else {
			b.sendMessage(chatID, msgProcessingError)
		}
		b.reset(ctx, userID, chatID)
		return
	}

	analysis, err := b.diagnosis.Diagnose(ctx, imageData, entity.SourceTelegram)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidImage) {
			log.Info("rejected photo", zap.Error(err))
			b.sendMessage(chatID, msgInvalidImage)
		} else {
			log.Error("diagnosis failed", zap.Int("size", len(imageData)), zap.Error(err))
			b.sendMessage(chatID, msgProcessingError)
		}
		b.reset(ctx, userID, chatID)
		return
	}

	if _, err := b.users.FinishCheck(ctx, userID, chatID, analysis.ID); err != nil {
		log.Error("failed to record analysis", zap.Error(err))
	}

	b.sendResult(chatID, analysis)
}

// acquire помечает фото пользователя как обрабатываемое; false, если обработка уже идёт.
func (b *Bot) acquire(userID int64) bool {
	_, busy := b.inflight.LoadOrStore(userID, struct{}{})
	return !busy
}

func (b *Bot) release(userID int64) {
	b.inflight.Delete(userID)
}

func (b *Bot) reset(ctx context.Context, userID, chatID int64) {
	if _, err := b.users.Cancel(ctx, userID, chatID); err != nil {
		b.log.Error("failed to reset user state", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// sendResult отправляет текст диагноза и, если есть, фото с подсветкой поражений
func (b *Bot) sendResult(chatID int64, analysis *entity.Analysis) {
	text := formatResult(&analysis.Result)

	if !analysis.Result.HasOverlay() {
		b.sendMessage(chatID, text)
		return
	}

	overlay, err := base64.StdEncoding.DecodeString(analysis.Result.OverlayImage)
	if err != nil {
		b.log.Error("failed to decode overlay", zap.String("id", analysis.ID), zap.Error(err))
		b.sendMessage(chatID, text)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: analysis.ID + ".jpg", Bytes: overlay})
	photo.Caption = text
	if _, err := b.api.Send(photo); err != nil {
		b.log.Error("failed to send photo", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sendMessage(chatID, text)
	}
}

// formatResult текст ответа с диагнозом
func formatResult(r *entity.PredictionResult) string {
	name, ok := labelNames[r.Prediction]
	if !ok {
		name = string(r.Prediction)
	}

	if r.SeverityLabel == nil {
		return fmt.Sprintf("✅ %s\nУверенность: %s", name, r.ConfidencePercent())
	}

	return fmt.Sprintf("🦠 %s\nУверенность: %s\nПоражено: %.2f%% листа\nСтепень: %s",
		name, r.ConfidencePercent(), r.SeverityPercentage, severityNames[*r.SeverityLabel])
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %s", resp.Status)
	}

	data, err := readLimited(resp.Body, b.maxSize)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// readLimited читает не больше limit байт; limit <= 0 снимает ограничение.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("more than %d bytes: %w", limit, errTooLarge)
	}
	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
