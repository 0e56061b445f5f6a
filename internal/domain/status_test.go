package domain

import "testing"

func TestSameObservation(t *testing.T) {
	a := TrackingStatus{Location: "Athens", Description: "In transit", ObservedAt: "21/05/2021, 14:33"}
	b := TrackingStatus{Location: "Piraeus", Description: "Out for delivery", ObservedAt: "21/05/2021, 14:33"}
	c := TrackingStatus{Location: "Athens", Description: "In transit", ObservedAt: "21/05/2021, 15:10"}

	if !a.SameObservation(b) {
		t.Fatalf("statuses with equal observed-at should compare as same observation")
	}
	if a.SameObservation(c) {
		t.Fatalf("statuses with different observed-at should not compare as same observation")
	}
}

func TestSameObservationUnknownCollapses(t *testing.T) {
	a := TrackingStatus{Description: "Scan A", ObservedAt: ObservedAtUnknown}
	b := TrackingStatus{Description: "Scan B", ObservedAt: ObservedAtUnknown}

	if !a.SameObservation(b) {
		t.Fatalf("two unparsable timestamps should compare as the same observation")
	}
}
