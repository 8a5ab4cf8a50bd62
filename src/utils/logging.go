package utils

import (
	log "github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otellogrus"
)

// SetLogLevel falls back to info when level is empty or unknown.
func SetLogLevel(level string) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		if level != "" {
			log.Warnf("unknown log level %q, using info", level)
		}

		log.SetLevel(log.InfoLevel)
		return
	}

	log.SetLevel(parsed)
}

// AddTelemetryHook records log entries on the span carried by the entry's context.
func AddTelemetryHook() {
	log.AddHook(otellogrus.NewHook(otellogrus.WithLevels(
		log.PanicLevel,
		log.FatalLevel,
		log.ErrorLevel,
		log.WarnLevel,
		log.InfoLevel,
	)))
}
