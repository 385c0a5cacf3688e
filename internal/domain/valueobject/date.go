package valueobject

import (
	"fmt"
	"time"

	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
)

const DateLayout = "2006-01-02"

// Location - часовой пояс, в котором трактуются даты и слоты. Задаётся при старте.
var Location = time.UTC

// SetLocation загружает часовой пояс по имени IANA.
func SetLocation(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("valueobject: неизвестный часовой пояс %q: %w", name, err)
	}
	Location = loc
	return nil
}

// StartOfDay отбрасывает время суток в часовом поясе сервиса.
func StartOfDay(t time.Time) time.Time {
	t = t.In(Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Location)
}

func DateKey(t time.Time) string {
	return t.In(Location).Format(DateLayout)
}

func ParseDate(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, raw, Location)
	if err != nil {
		// допускаем полные метки времени от клиента
		full, ferr := time.Parse(time.RFC3339, raw)
		if ferr != nil {
			return time.Time{}, apperror.New(apperror.ErrCodeValidation, "некорректная дата: "+raw)
		}
		// календарная дата берётся в поясе клиента, а не после перевода в пояс сервиса
		return time.Date(full.Year(), full.Month(), full.Day(), 0, 0, 0, 0, Location), nil
	}
	return t, nil
}

// ParseClock разбирает время "HH:MM" в смещение от начала суток.
func ParseClock(raw string) (time.Duration, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, apperror.New(apperror.ErrCodeValidation, "некорректное время: "+raw)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// FormatClock записывает смещение от начала суток как "HH:MM". Конец суток (24:00) - "00:00".
func FormatClock(off time.Duration) string {
	off %= 24 * time.Hour
	return fmt.Sprintf("%02d:%02d", int(off/time.Hour), int(off%time.Hour/time.Minute))
}

// DatesBetween возвращает все даты отрезка [from, to] включительно.
func DatesBetween(from, to time.Time) []time.Time {
	from, to = StartOfDay(from), StartOfDay(to)
	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}
