package utils

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

// serviceHook stamps every entry with the service name as the "app" field.
type serviceHook struct {
	app string
}

func (h serviceHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h serviceHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["app"]; !ok {
		entry.Data["app"] = h.app
	}
	return nil
}

// InitLogger configures Logger from LOG_LEVEL (default info) and LOG_FORMAT
// (text or json, default text) and writes to stdout.
func InitLogger(appName string) {
	configureLogger(Logger, appName, os.Stdout, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

func configureLogger(l *logrus.Logger, appName string, out io.Writer, levelName, format string) {
	l.SetOutput(out)

	levelName = strings.ToLower(strings.TrimSpace(levelName))
	if levelName == "" {
		levelName = "info"
	}
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		l.Warnf("Invalid LOG_LEVEL '%s', defaulting to INFO", levelName)
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	switch strings.ToLower(format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	l.ReplaceHooks(make(logrus.LevelHooks))
	l.AddHook(serviceHook{app: appName})
}
