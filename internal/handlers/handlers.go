package handlers

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Ostapenko-Vasilii/TgBot-fork/internal/models"
	"github.com/Ostapenko-Vasilii/TgBot-fork/internal/service"
)

const (
	buttonSubmit    = "📁 Отправить файл"
	buttonListAll   = "Все полученные файлы"
	buttonUnreplied = "Файлы без ответа"
	buttonBack      = "Назад ↩️"
)

// Sender is the outbound half of the Telegram API used by the handler.
// Satisfied by *tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type BotHandler struct {
	bot     Sender
	service *service.Service
}

func NewBotHandler(bot Sender, service *service.Service) *BotHandler {
	return &BotHandler{
		bot:     bot,
		service: service,
	}
}

func (h *BotHandler) HandleUpdate(update tgbotapi.Update) {
	// Handle messages
	if update.Message != nil && update.Message.From != nil {
		if err := h.service.RecordInteraction(update.Message.From.ID); err != nil {
			log.Printf("Error recording interaction: %v", err)
		}
		h.handleMessage(update.Message)
	}

	// Handle callback queries (inline "Ответить" buttons)
	if update.CallbackQuery != nil {
		if err := h.service.RecordInteraction(update.CallbackQuery.From.ID); err != nil {
			log.Printf("Error recording interaction: %v", err)
		}
		h.handleCallbackQuery(update.CallbackQuery)
	}
}

func (h *BotHandler) handleMessage(message *tgbotapi.Message) {
	if message.IsCommand() {
		switch message.Command() {
		case "start":
			h.handleStart(message)
		case "admin":
			h.handleAdmin(message)
		}
		return
	}

	switch message.Text {
	case buttonSubmit:
		h.handleSubmitButton(message)
	case buttonListAll:
		if h.service.IsAdmin(message.From.ID) {
			h.listSubmissions(message.Chat.ID, false)
		}
	case buttonUnreplied:
		if h.service.IsAdmin(message.From.ID) {
			h.listSubmissions(message.Chat.ID, true)
		}
	case buttonBack:
		msg := tgbotapi.NewMessage(message.Chat.ID, "Выберите действие:")
		msg.ReplyMarkup = startKeyboard()
		h.send(msg)
	default:
		h.routeMessage(message)
	}
}

func (h *BotHandler) handleStart(message *tgbotapi.Message) {
	log.Printf("User %d started the bot", message.From.ID)
	if err := h.service.RecordStart(message.From.ID); err != nil {
		log.Printf("Error registering start for user %d: %v", message.From.ID, err)
	}

	h.send(tgbotapi.NewMessage(message.Chat.ID, "Привет! Я бот для сбора файлов к выпускному!"))
	h.send(tgbotapi.NewMessage(message.Chat.ID, "📁 Отправить файл — тут вы можете отправить файлы для выпускного альбома или презентации."))
	h.send(tgbotapi.NewMessage(message.Chat.ID, "🟢 Поддерживаются фото, видео, аудио/видеосообщения, документы."))

	msg := tgbotapi.NewMessage(message.Chat.ID, "Нажмите кнопку ниже, чтобы отправить файл 👇")
	msg.ReplyMarkup = startKeyboard()
	h.send(msg)
}

func (h *BotHandler) handleAdmin(message *tgbotapi.Message) {
	if !h.service.IsAdmin(message.From.ID) {
		h.send(tgbotapi.NewMessage(message.Chat.ID,
			"У вас нет прав администратора!"+strconv.FormatInt(message.From.ID, 10)))
		return
	}

	stats, err := h.service.UsageStats()
	if err != nil {
		log.Printf("Error computing usage stats: %v", err)
		return
	}
	response := fmt.Sprintf("Статистика использования бота для выпускного:\nВсего запусков: %d\nИспользовали бота сегодня: %d\nВсего взаимодействий: %d\nВзаимодействий сегодня: %d",
		stats.TotalStarts, stats.TodayStarts, stats.TotalInteractions, stats.TodayInteractions)
	h.send(tgbotapi.NewMessage(message.Chat.ID, response))
}

// handleSubmitButton enters submission mode for ordinary users.
// Administrators get the moderation menu instead and never submit
// files through this path.
func (h *BotHandler) handleSubmitButton(message *tgbotapi.Message) {
	if h.service.IsAdmin(message.From.ID) {
		msg := tgbotapi.NewMessage(message.Chat.ID, "Выберите действие:")
		msg.ReplyMarkup = adminKeyboard()
		h.send(msg)
		return
	}

	h.service.BeginSubmission(message.From.ID)
	h.send(tgbotapi.NewMessage(message.Chat.ID,
		"Отправьте файл, который вы хотите поделиться для выпускного альбома или презентации."))
}

// routeMessage decides what an inbound non-command message is: an
// administrator's reply, a user's submission, or an unsolicited
// message. First match wins.
func (h *BotHandler) routeMessage(message *tgbotapi.Message) {
	fromID := message.From.ID

	// Administrator answering a specific submission
	if h.service.IsAdmin(fromID) {
		if _, ok := h.service.PendingReply(fromID); ok {
			h.relayReply(message)
			return
		}
	}

	// User in submission mode
	if h.service.AwaitingSubmission(fromID) {
		h.captureSubmission(message)
		return
	}

	if h.service.IsAdmin(fromID) {
		// Admin message with no correlation: announced but not stored.
		unread := h.service.NoteAdminActivity()
		h.notifyAdmins(unread)
		return
	}

	h.send(tgbotapi.NewMessage(message.Chat.ID,
		"Пожалуйста, сначала нажмите кнопку \"📁 Отправить файл\" для отправки файла организаторам выпускного!"))
}

func (h *BotHandler) relayReply(message *tgbotapi.Message) {
	content, ok := contentFrom(message)
	if !ok {
		h.send(tgbotapi.NewMessage(message.Chat.ID, "🟢 Поддерживаются фото, видео, аудио/видеосообщения, документы."))
		return
	}

	target, err := h.service.ResolveReply(message.From.ID)
	if err != nil {
		log.Printf("Error resolving reply for admin %d: %v", message.From.ID, err)
		return
	}

	h.send(tgbotapi.NewMessage(target.UserID, "На ваше сообщение получен ответ от организатора выпускного."))
	h.send(contentMessage(target.UserID, content))
	h.send(tgbotapi.NewMessage(message.Chat.ID, "Ответ направлен."))
}

func (h *BotHandler) captureSubmission(message *tgbotapi.Message) {
	content, ok := contentFrom(message)
	if !ok {
		h.send(tgbotapi.NewMessage(message.Chat.ID, "🟢 Поддерживаются фото, видео, аудио/видеосообщения, документы."))
		return
	}

	unread, err := h.service.CaptureSubmission(message.From.ID, message.From.FirstName, message.From.UserName, content)
	if err != nil {
		log.Printf("Error storing submission from user %d: %v", message.From.ID, err)
		return
	}

	h.send(tgbotapi.NewMessage(message.Chat.ID, "Ваш файл успешно отправлен организаторам выпускного."))
	h.notifyAdmins(unread)
}

// notifyAdmins fans the unread count out to every administrator. A
// failed send to one admin does not block the others.
func (h *BotHandler) notifyAdmins(unread int) {
	text := fmt.Sprintf("Получен новый файл для выпускного. Неотвеченных сообщений: %d", unread)
	for _, adminID := range h.service.Admins() {
		if _, err := h.bot.Send(tgbotapi.NewMessage(adminID, text)); err != nil {
			log.Printf("Error notifying admin %d: %v", adminID, err)
		}
	}
}

func (h *BotHandler) listSubmissions(chatID int64, onlyUnreplied bool) {
	subs, err := h.service.ListSubmissions(onlyUnreplied)
	if err != nil {
		log.Printf("Error listing submissions: %v", err)
		return
	}

	if len(subs) == 0 {
		if onlyUnreplied {
			h.send(tgbotapi.NewMessage(chatID, "Файлов без ответа нет."))
		} else {
			h.send(tgbotapi.NewMessage(chatID, "Файлов нет."))
		}
		return
	}

	for _, sub := range subs {
		h.sendSubmission(chatID, sub)
	}
}

// sendSubmission renders one submission into the admin chat with an
// inline "Ответить" button keyed by submission id.
func (h *BotHandler) sendSubmission(chatID int64, sub models.Submission) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Ответить", fmt.Sprintf("reply-%d", sub.ID)),
		),
	)
	userInfo := fmt.Sprintf("Файл от %s (@%s, ID: %d)", sub.FirstName, sub.Username, sub.UserID)

	content := sub.Content()
	switch content.Kind {
	case models.KindText:
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("%s: %s", userInfo, content.Text))
		msg.ReplyMarkup = keyboard
		h.send(msg)
	case models.KindPhoto:
		msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(content.FileID))
		msg.Caption = userInfo
		msg.ReplyMarkup = keyboard
		h.send(msg)
	case models.KindVideo:
		msg := tgbotapi.NewVideo(chatID, tgbotapi.FileID(content.FileID))
		msg.Caption = userInfo
		msg.ReplyMarkup = keyboard
		h.send(msg)
	case models.KindDocument:
		msg := tgbotapi.NewDocument(chatID, tgbotapi.FileID(content.FileID))
		msg.Caption = userInfo
		msg.ReplyMarkup = keyboard
		h.send(msg)
	case models.KindAudio:
		msg := tgbotapi.NewAudio(chatID, tgbotapi.FileID(content.FileID))
		msg.Caption = userInfo
		msg.ReplyMarkup = keyboard
		h.send(msg)
	case models.KindVoice:
		msg := tgbotapi.NewVoice(chatID, tgbotapi.FileID(content.FileID))
		msg.Caption = userInfo
		msg.ReplyMarkup = keyboard
		h.send(msg)
	case models.KindVideoNote:
		// Video notes carry no caption, so the user info goes first.
		h.send(tgbotapi.NewMessage(chatID, userInfo))
		msg := tgbotapi.NewVideoNote(chatID, 0, tgbotapi.FileID(content.FileID))
		msg.ReplyMarkup = keyboard
		h.send(msg)
	}
}

func (h *BotHandler) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	if !h.service.IsAdmin(query.From.ID) {
		return
	}

	idStr, ok := strings.CutPrefix(query.Data, "reply-")
	if !ok {
		return
	}
	submissionID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return
	}

	err = h.service.ActivateReply(query.From.ID, submissionID)
	if err == service.ErrSubmissionNotFound {
		h.answerCallback(tgbotapi.NewCallbackWithAlert(query.ID, "Сообщение не найдено."))
		return
	}
	if err != nil {
		log.Printf("Error activating reply on submission %d: %v", submissionID, err)
		return
	}
	h.answerCallback(tgbotapi.NewCallback(query.ID, "Вы можете ответить текстом, аудио, видео или фото."))
}

func (h *BotHandler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

func (h *BotHandler) answerCallback(callback tgbotapi.CallbackConfig) {
	if _, err := h.bot.Request(callback); err != nil {
		log.Printf("Error answering callback: %v", err)
	}
}

// contentFrom builds the tagged content union out of a Telegram
// message. The second return is false for unsupported payloads
// (stickers, locations and the like).
func contentFrom(message *tgbotapi.Message) (models.Content, bool) {
	switch {
	case message.Text != "":
		return models.Content{Kind: models.KindText, Text: message.Text}, true
	case len(message.Photo) > 0:
		// The last size is the largest one.
		photo := message.Photo[len(message.Photo)-1]
		return models.Content{Kind: models.KindPhoto, FileID: photo.FileID}, true
	case message.Video != nil:
		return models.Content{Kind: models.KindVideo, FileID: message.Video.FileID}, true
	case message.Document != nil:
		return models.Content{Kind: models.KindDocument, FileID: message.Document.FileID}, true
	case message.Audio != nil:
		return models.Content{Kind: models.KindAudio, FileID: message.Audio.FileID}, true
	case message.Voice != nil:
		return models.Content{Kind: models.KindVoice, FileID: message.Voice.FileID}, true
	case message.VideoNote != nil:
		return models.Content{Kind: models.KindVideoNote, FileID: message.VideoNote.FileID}, true
	}
	return models.Content{}, false
}

// contentMessage turns a content union into the matching outbound send.
func contentMessage(chatID int64, c models.Content) tgbotapi.Chattable {
	switch c.Kind {
	case models.KindPhoto:
		return tgbotapi.NewPhoto(chatID, tgbotapi.FileID(c.FileID))
	case models.KindVideo:
		return tgbotapi.NewVideo(chatID, tgbotapi.FileID(c.FileID))
	case models.KindDocument:
		return tgbotapi.NewDocument(chatID, tgbotapi.FileID(c.FileID))
	case models.KindAudio:
		return tgbotapi.NewAudio(chatID, tgbotapi.FileID(c.FileID))
	case models.KindVoice:
		return tgbotapi.NewVoice(chatID, tgbotapi.FileID(c.FileID))
	case models.KindVideoNote:
		return tgbotapi.NewVideoNote(chatID, 0, tgbotapi.FileID(c.FileID))
	default:
		return tgbotapi.NewMessage(chatID, c.Text)
	}
}

func startKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonSubmit),
		),
	)
}

func adminKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(buttonListAll)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(buttonUnreplied)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(buttonBack)),
	)
}
