package couriers

import (
	"strings"
	"time"

	"parcel-tracking-service/internal/domain"
)

// normalizeObservedAt parses a courier-supplied timestamp against the
// adapter's expected layouts and renders it in the fixed system layout.
// Greek meridiem markers are translated first (ACS prints them).
// Unparsable input collapses to domain.ObservedAtUnknown.
func normalizeObservedAt(raw string, layouts ...string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "π.μ.", "AM")
	s = strings.ReplaceAll(s, "μ.μ.", "PM")
	s = strings.Join(strings.Fields(s), " ")

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(domain.ObservedAtLayout)
		}
	}

	return domain.ObservedAtUnknown
}
