// Package persona builds the Russian prompts and fallback texts for the
// bot's scripted characters and scheduled messages.
package persona

import (
	"fmt"
	"strings"
	"time"
)

var weekdayNamesRU = [...]string{
	time.Sunday:    "воскресенье",
	time.Monday:    "понедельник",
	time.Tuesday:   "вторник",
	time.Wednesday: "среда",
	time.Thursday:  "четверг",
	time.Friday:    "пятница",
	time.Saturday:  "суббота",
}

// WeekdayRU returns the Russian name of the weekday.
func WeekdayRU(d time.Weekday) string {
	return weekdayNamesRU[d]
}

// PartOfDayRU classifies the hour: утро 9-12, день 12-18, вечер 18-22,
// ночь otherwise.
func PartOfDayRU(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 9 && h < 12:
		return "утро"
	case h >= 12 && h < 18:
		return "день"
	case h >= 18 && h < 22:
		return "вечер"
	default:
		return "ночь"
	}
}

// QuietWindow is the nightly span during which the hourly check-in stays
// silent. From is inclusive, Until exclusive; the window may wrap midnight.
type QuietWindow struct {
	From  int
	Until int
}

func (w QuietWindow) Contains(t time.Time) bool {
	h := t.Hour()
	if w.From == w.Until {
		return false
	}
	if w.From < w.Until {
		return h >= w.From && h < w.Until
	}
	return h >= w.From || h < w.Until
}

const System = "Ты дружелюбный бот-компаньон в телеграм-чате. Пиши только по-русски, коротко, без смайликов и хэштегов."

// HourlyPrompt asks for the recurring "how are you doing" question,
// anchored to the current part of day and weekday so the phrasing varies.
func HourlyPrompt(now time.Time, name string) string {
	return fmt.Sprintf(
		"Сгенерируй ОДИН короткий вопрос по-русски для телеграм-чата, "+
			"обращаясь к %s по имени. "+
			"Смысл: узнать, как у него дела и чем он сейчас занимается. "+
			"Стиль: дружелюбный, чуть-чуть шутливый, но без грубостей. "+
			"Не пиши смайлики и не используй хэштеги. "+
			"Упомяни в формулировке, что сейчас %s и %s. "+
			"Максимум 20 слов. Только текст вопроса, без пояснений.",
		name, PartOfDayRU(now), WeekdayRU(now.Weekday()),
	)
}

// SarcasticPrompt asks for a lightly sarcastic reply to the target user.
func SarcasticPrompt(userText string, history []string) string {
	var b strings.Builder
	b.WriteString("Ты язвительный, но доброжелательный друг в телеграм-чате. ")
	b.WriteString("Ответь на сообщение короткой шутливой фразой по-русски. ")
	b.WriteString("Стиль: лёгкий сарказм, без оскорблений, без мата, максимум 25 слов. ")
	b.WriteString("Не используй смайлики и хэштеги. ")
	writeHistory(&b, history)
	fmt.Fprintf(&b, "Сообщение пользователя:\n\n%s\n\n", userText)
	b.WriteString("Теперь придумай один подходящий саркастический ответ. Только ответ, без пояснений.")
	return b.String()
}

// SupportivePrompt asks for a warm, encouraging reply to the support user.
func SupportivePrompt(userText string, history []string) string {
	var b strings.Builder
	b.WriteString("Ты очень поддерживающий и воодушевляющий друг в телеграм-чате. ")
	b.WriteString("Ответь на сообщение короткой фразой по-русски, которая поддерживает, ")
	b.WriteString("усиливает и хвалит собеседника. ")
	b.WriteString("Стиль: тёплый, мотивирующий, без пафоса, максимум 25 слов. ")
	b.WriteString("Не используй смайлики и хэштеги. ")
	writeHistory(&b, history)
	fmt.Fprintf(&b, "Сообщение пользователя:\n\n%s\n\n", userText)
	b.WriteString("Теперь придумай один подходящий поддерживающий ответ. Только ответ, без пояснений.")
	return b.String()
}

// MorningPrompt asks for the daily greeting.
func MorningPrompt(now time.Time, name string) string {
	return fmt.Sprintf(
		"Сгенерируй короткое доброе утреннее приветствие по-русски для %s. "+
			"Сегодня %s. Пожелай хорошего дня. "+
			"Без смайликов и хэштегов, максимум 25 слов. Только текст, без пояснений.",
		name, WeekdayRU(now.Weekday()),
	)
}

// EveningPrompt asks for the daily evening summary, folding in a weather
// line when one is available.
func EveningPrompt(now time.Time, name, weatherLine string) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		"Сгенерируй короткое вечернее сообщение по-русски для %s: "+
			"подведи итог дня (%s) и пожелай спокойной ночи. ",
		name, WeekdayRU(now.Weekday()),
	)
	if weatherLine != "" {
		fmt.Fprintf(&b, "Упомяни погоду: %s. ", weatherLine)
	}
	b.WriteString("Без смайликов и хэштегов, максимум 30 слов. Только текст, без пояснений.")
	return b.String()
}

// ImagePrompt styles a raw user request for the image generator.
func ImagePrompt(userText string) string {
	return "Нарисуй картинку в тёплом дружелюбном стиле: " + userText
}

func writeHistory(b *strings.Builder, history []string) {
	if len(history) == 0 {
		return
	}
	b.WriteString("Контекст последних реплик диалога:\n")
	for _, h := range history {
		b.WriteString("- ")
		b.WriteString(h)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// Fallback texts used when generation fails on an interactive reply.
const (
	FallbackHourly     = "Максим, как у тебя дела? Чем занимаешься сейчас?"
	FallbackSarcastic  = "Интересно, это ты сейчас серьёзно или опять шутишь?"
	FallbackSupportive = "Звучит очень круто, продолжай в том же духе, это реально впечатляет!"
)
