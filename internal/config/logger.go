package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger. Lambda and production runs log JSON so
// CloudWatch can index the fields; local runs use the text formatter.
func NewLogger(cfg *Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.IsProduction() || IsServerlessMode() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}
