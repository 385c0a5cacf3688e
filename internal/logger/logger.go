package logger

import (
	"github.com/sirupsen/logrus"
)

// Log до вызова Init пишет в stderr с уровнем info, чтобы пакеты и тесты могли логировать без инициализации.
var Log = logrus.New()

// Init инициализирует структурированный логгер.
func Init(level string) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// JSON для production, text для development
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter устанавливает текстовый формат логов (для development).
func SetTextFormatter() {
	if Log != nil {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}

// WithComponent возвращает логгер с полем component.
func WithComponent(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
