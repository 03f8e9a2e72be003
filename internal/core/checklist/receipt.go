package checklist

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/refund-checklist/internal/core/dates"
)

// ParseReceiptDate reads the request's receipt date. ISO dates, day-first
// numeric dates and written Spanish dates are accepted; anything else
// degrades to today with a warning.
func ParseReceiptDate(value string, extractor *dates.Extractor, logger *slog.Logger) dates.PointInTime {
	if logger == nil {
		logger = slog.Default()
	}
	if extractor == nil {
		extractor = dates.NewExtractor()
	}
	today := extractor.Today()

	value = strings.TrimSpace(value)
	if value == "" {
		return today
	}
	if p, err := dates.ParseISO(value); err == nil {
		return p
	}
	if p, ok := extractor.ParseFlexible(value); ok {
		return p
	}
	logger.Warn("unparseable receipt date, using today", "value", value, "today", today.String())
	return today
}
