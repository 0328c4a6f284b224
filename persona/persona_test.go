package persona

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour int) time.Time {
	return time.Date(2024, 5, 1, hour, 30, 0, 0, time.UTC) // a Wednesday
}

func Test_part_of_day(t *testing.T) {
	assert.Equal(t, "ночь", PartOfDayRU(at(8)))
	assert.Equal(t, "утро", PartOfDayRU(at(9)))
	assert.Equal(t, "утро", PartOfDayRU(at(11)))
	assert.Equal(t, "день", PartOfDayRU(at(12)))
	assert.Equal(t, "день", PartOfDayRU(at(17)))
	assert.Equal(t, "вечер", PartOfDayRU(at(18)))
	assert.Equal(t, "вечер", PartOfDayRU(at(21)))
	assert.Equal(t, "ночь", PartOfDayRU(at(22)))
	assert.Equal(t, "ночь", PartOfDayRU(at(3)))
}

func Test_quiet_window(t *testing.T) {
	w := QuietWindow{From: 22, Until: 9}
	assert.True(t, w.Contains(at(22)))
	assert.True(t, w.Contains(at(23)))
	assert.True(t, w.Contains(at(0)))
	assert.True(t, w.Contains(at(8)))
	assert.False(t, w.Contains(at(9)))
	assert.False(t, w.Contains(at(21)))

	// non-wrapping window
	day := QuietWindow{From: 13, Until: 15}
	assert.True(t, day.Contains(at(13)))
	assert.False(t, day.Contains(at(15)))

	// degenerate window never matches
	assert.False(t, QuietWindow{From: 5, Until: 5}.Contains(at(5)))
}

func Test_hourly_prompt_mentions_context(t *testing.T) {
	p := HourlyPrompt(at(10), "Максиму")
	assert.Contains(t, p, "утро")
	assert.Contains(t, p, "среда")
	assert.Contains(t, p, "Максиму")
}

func Test_reply_prompts_carry_history(t *testing.T) {
	hist := []string{"пользователь: привет", "бот: и тебе привет"}

	p := SarcasticPrompt("я сегодня молодец", hist)
	assert.Contains(t, p, "я сегодня молодец")
	assert.Contains(t, p, "и тебе привет")

	p = SupportivePrompt("сдал экзамен", nil)
	assert.Contains(t, p, "сдал экзамен")
	assert.False(t, strings.Contains(p, "Контекст"))
}

func Test_evening_prompt_weather_optional(t *testing.T) {
	withWeather := EveningPrompt(at(21), "Максима", "завтра +7, дождь")
	assert.Contains(t, withWeather, "завтра +7, дождь")

	without := EveningPrompt(at(21), "Максима", "")
	assert.False(t, strings.Contains(without, "погоду"))
}
