package dispatcher

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Instruments are scoped to this package's import path.
const instrumentationName = "github.com/koo5/horizon/internal/dispatcher"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
