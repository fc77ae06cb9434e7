package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"log"
	"os"
	"strings"

	"sekoly_go/models"

	"github.com/gofiber/fiber/v2"
	"github.com/line/line-bot-sdk-go/linebot"
	"gorm.io/gorm"
)

// LineWebhookHandler links guardian LINE accounts to student accounts. A
// guardian sends "LINK <username>" to the school's official account and the
// student row is tagged with their LINE user id, enabling receipts and
// arrears reminders.
type LineWebhookHandler struct {
	DB  *gorm.DB
	Bot *linebot.Client
}

func NewLineWebhookHandler(db *gorm.DB) *LineWebhookHandler {
	secret := os.Getenv("LINE_CHANNEL_SECRET")
	token := os.Getenv("LINE_CHANNEL_ACCESS_TOKEN")

	if secret == "" || token == "" {
		log.Println("LINE credentials missing: webhook disabled")
		return &LineWebhookHandler{DB: db, Bot: nil}
	}

	bot, err := linebot.New(secret, token)
	if err != nil {
		log.Fatalf("cannot create LINE bot client: %v", err)
	}
	return &LineWebhookHandler{DB: db, Bot: bot}
}

// Handle processes LINE webhook events
func (h *LineWebhookHandler) Handle(c *fiber.Ctx) error {
	if h.Bot == nil {
		return c.SendStatus(fiber.StatusOK)
	}

	signature := c.Get("X-Line-Signature")
	if signature == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	if !validateSignature(os.Getenv("LINE_CHANNEL_SECRET"), c.Body(), signature) {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	// Reply 200 immediately; LINE retries on anything else
	go func(body []byte) {
		var webhook struct {
			Events []*linebot.Event `json:"events"`
		}
		if err := json.Unmarshal(body, &webhook); err != nil {
			log.Printf("Failed to parse LINE event JSON: %v", err)
			return
		}

		for _, event := range webhook.Events {
			if event.Type != linebot.EventTypeMessage {
				continue
			}
			textMessage, ok := event.Message.(*linebot.TextMessage)
			if !ok {
				continue
			}
			h.handleTextMessage(event, textMessage.Text)
		}
	}(c.Body())

	return c.SendStatus(fiber.StatusOK)
}

func (h *LineWebhookHandler) handleTextMessage(event *linebot.Event, text string) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) != 2 || !strings.EqualFold(fields[0], "LINK") {
		return
	}
	username := fields[1]

	lineUserID := event.Source.UserID
	if lineUserID == "" {
		return
	}

	var student models.User
	if err := h.DB.Where("username = ? AND role = ?", username, "student").First(&student).Error; err != nil {
		h.reply(event.ReplyToken, "Compte introuvable: "+username)
		return
	}

	if err := h.DB.Model(&student).Update("line_user_id", lineUserID).Error; err != nil {
		log.Printf("Failed to link LINE account for %s: %v", username, err)
		return
	}

	log.Printf("Linked LINE account to student %s", username)
	h.reply(event.ReplyToken, "Compte lié. Vous recevrez les reçus et rappels d'écolage ici.")
}

func (h *LineWebhookHandler) reply(replyToken, text string) {
	if replyToken == "" {
		return
	}
	if _, err := h.Bot.ReplyMessage(replyToken, linebot.NewTextMessage(text)).Do(); err != nil {
		log.Printf("Failed to reply to LINE message: %v", err)
	}
}

// validateSignature checks the X-Line-Signature header against the body
func validateSignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
