// Package bot wires the Telegram transport: command replies, the private
// echo and the persona replies in the watched group.
package bot

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	tele "gopkg.in/telebot.v4"

	"github.com/kosmatov/palbot/config"
	"github.com/kosmatov/palbot/llm"
	"github.com/kosmatov/palbot/persona"
	"github.com/kosmatov/palbot/weather"
)

const generateTimeout = 45 * time.Second

type Handler struct {
	ctx     context.Context
	cfg     config.BotConfig
	ai      llm.Provider
	dialogs *DialogCache
	weather *weather.Client

	replies metric.Int64Counter
}

func NewHandler(ctx context.Context, cfg config.BotConfig, ai llm.Provider, dialogs *DialogCache, wc *weather.Client) *Handler {
	meter := otel.Meter("palbot.bot")
	replies, err := meter.Int64Counter(
		"palbot.bot.replies_total",
		metric.WithDescription("total number of persona replies sent"),
	)
	if err != nil {
		slog.Error("failed to create replies counter", "error", err)
	}
	return &Handler{
		ctx:     ctx,
		cfg:     cfg,
		ai:      ai,
		dialogs: dialogs,
		weather: wc,
		replies: replies,
	}
}

// Handle registers all bot routes.
func Handle(b *tele.Bot, h *Handler) {
	b.Handle("/start", h.Start)
	b.Handle("/chatid", h.ChatID)
	b.Handle("/whoami", h.WhoAmI)
	b.Handle("/weather", h.Weather)
	b.Handle("/image", h.Image)
	b.Handle(tele.OnText, h.Text)
}

func (h *Handler) Start(c tele.Context) error {
	if c.Chat().Type == tele.ChatPrivate {
		return c.Send(
			"Привет! Я бот-компаньон.\n" +
				"В группе я по расписанию спрашиваю, как дела, " +
				"формулировки разные и зависят от времени суток.\n" +
				"Ночью я молчу.\n" +
				"Ещё я отвечаю одному пользователю с лёгким сарказмом и поддерживаю другого.",
		)
	}
	return c.Send(
		"Я отправляю вопросы по расписанию с разными формулировками, кроме ночи. " +
			"Также шучу над одним пользователем и поддерживаю другого.",
	)
}

func (h *Handler) ChatID(c tele.Context) error {
	return c.Send(fmt.Sprintf("Chat ID for this chat: `%d`", c.Chat().ID), tele.ModeMarkdown)
}

func (h *Handler) WhoAmI(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	return c.Send(fmt.Sprintf("Your user id: `%d`", c.Sender().ID), tele.ModeMarkdown)
}

func (h *Handler) Weather(c tele.Context) error {
	ctx, cancel := context.WithTimeout(h.ctx, generateTimeout)
	defer cancel()

	rep, err := h.weather.Fetch(ctx)
	if err != nil {
		slog.Error("weather fetch failed", "error", err)
		return c.Send("Не получилось узнать погоду, попробуй позже.")
	}
	return c.Send("Погода: " + rep.DescribeRU())
}

func (h *Handler) Image(c tele.Context) error {
	gen, ok := h.ai.(llm.ImageGenerator)
	if !ok {
		return c.Send("Текущий провайдер не умеет рисовать картинки.")
	}
	prompt := c.Message().Payload
	if prompt == "" {
		return c.Send("Напиши, что нарисовать: /image закат над рекой")
	}

	ctx, cancel := context.WithTimeout(h.ctx, generateTimeout)
	defer cancel()

	b, err := gen.GenerateImage(ctx, persona.ImagePrompt(prompt))
	if err != nil {
		slog.Error("image generation failed", "error", err)
		return c.Send("Картинка не получилась, попробуй ещё раз.")
	}
	return c.Send(&tele.Photo{File: tele.FromReader(bytes.NewReader(b))})
}

// Text echoes in private chats and routes group messages to the personas.
func (h *Handler) Text(c tele.Context) error {
	if c.Chat().Type == tele.ChatPrivate {
		return c.Send("Ты написал: " + c.Text())
	}
	return h.groupMessage(c)
}

func (h *Handler) groupMessage(c tele.Context) error {
	if h.cfg.TargetChat != 0 && c.Chat().ID != h.cfg.TargetChat {
		return nil
	}
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	switch {
	case h.cfg.TargetUser != 0 && sender.ID == h.cfg.TargetUser:
		return h.personaReply(c, "sarcastic",
			persona.SarcasticPrompt(c.Text(), h.dialogs.History(sender.ID)),
			persona.FallbackSarcastic)
	case h.cfg.SupportUser != 0 && sender.ID == h.cfg.SupportUser:
		return h.personaReply(c, "supportive",
			persona.SupportivePrompt(c.Text(), h.dialogs.History(sender.ID)),
			persona.FallbackSupportive)
	default:
		return nil
	}
}

func (h *Handler) personaReply(c tele.Context, kind, prompt, fallback string) error {
	ctx, cancel := context.WithTimeout(h.ctx, generateTimeout)
	defer cancel()

	text, err := h.ai.Generate(ctx, persona.System, prompt)
	if err != nil {
		slog.Error("persona generation failed", "persona", kind, "error", err)
		text = fallback
	}

	if err := c.Reply(text); err != nil {
		slog.Error("persona reply failed", "persona", kind, "error", err)
		return nil
	}

	userID := c.Sender().ID
	h.dialogs.Append(userID, "пользователь", c.Text())
	h.dialogs.Append(userID, "бот", text)

	if h.replies != nil {
		h.replies.Add(ctx, 1, metric.WithAttributes(attribute.String("persona", kind)))
	}
	slog.Debug("persona reply sent", "persona", kind, "chat", c.Chat().ID)
	return nil
}
