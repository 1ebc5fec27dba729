package observability

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type scrapeErrorLog struct {
	logger zerolog.Logger
}

func (l scrapeErrorLog) Println(v ...interface{}) {
	l.logger.Warn().Msg(fmt.Sprint(v...))
}

// MetricsHandler serves the LUCT collectors for Prometheus scrapes. A collector
// that fails is logged and skipped so the rest of the scrape still succeeds.
func MetricsHandler(logger zerolog.Logger) fiber.Handler {
	RegisterMetrics()

	handler := promhttp.InstrumentMetricHandler(prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			ErrorLog:          scrapeErrorLog{logger: logger.With().Str("component", "metrics").Logger()},
			ErrorHandling:     promhttp.ContinueOnError,
			EnableOpenMetrics: true,
		}),
	)
	return adaptor.HTTPHandler(handler)
}
