package domain

// ObservedAtLayout is the fixed calendar representation every courier
// timestamp is normalized to before it enters the system.
const ObservedAtLayout = "02/01/2006, 15:04"

// ObservedAtUnknown is the fallback for courier timestamps that could not be
// parsed. All unparsable timestamps collapse to this one value, so two
// consecutive statuses with broken timestamps compare as "unchanged" even when
// the underlying events differ.
const ObservedAtUnknown = "unknown"

// TrackingStatus is the state of a shipment as reported by one courier source
// at one point in time. Values are immutable; a fresh fetch produces a new
// value and never mutates a prior one.
type TrackingStatus struct {
	Location    string
	Description string
	ObservedAt  string // ObservedAtLayout, or ObservedAtUnknown
	Delivered   bool
}

// SameObservation reports whether two statuses describe the same courier
// observation. The comparison is value equality on the observed-at field, not
// ordering: courier timelines are adapter-defined and not assumed monotonic.
func (s TrackingStatus) SameObservation(o TrackingStatus) bool {
	return s.ObservedAt == o.ObservedAt
}
