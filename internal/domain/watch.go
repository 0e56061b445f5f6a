package domain

// WatchKey identifies one watched shipment. Identity is unique within an
// organization's watch-list.
type WatchKey struct {
	OrgID      string
	Courier    string
	TrackingID string
}

// A shipment on an organization's watch-list. The tracking id is opaque to
// the engine; only the owning courier adapter can interpret it.
type WatchedPackage struct {
	TrackingID string
	Courier    string
	Label      string
	LastStatus *TrackingStatus // nil if never successfully fetched
}

// An organization that owns a watch-list. An empty NotifyTarget suppresses
// notifications; the watch-list is still polled and kept current.
type Organization struct {
	OrgID        string
	NotifyTarget string
}
