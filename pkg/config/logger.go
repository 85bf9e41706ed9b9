package config

import (
	"github.com/sirupsen/logrus"
)

// SetupLogger configures the standard logrus logger: text in development,
// JSON everywhere else.
func SetupLogger(cfg *Config) *logrus.Logger {
	log := logrus.StandardLogger()
	if cfg.IsDevelopment() {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}
