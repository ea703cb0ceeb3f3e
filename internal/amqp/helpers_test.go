package amqp

import (
	"io"
	"log/slog"

	applog "renewables/internal/log"
)

func testLogger() *applog.Logger {
	return applog.New(applog.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}
