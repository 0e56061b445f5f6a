package dto

type AddWatchRequest struct {
	OrgID      string `json:"org_id"`
	Courier    string `json:"courier"`
	TrackingID string `json:"tracking_id"`
	Label      string `json:"label"`
}

type EditWatchRequest struct {
	OrgID      string `json:"org_id"`
	Courier    string `json:"courier"`
	TrackingID string `json:"tracking_id"`
	Label      string `json:"label"`
}

type RemoveWatchRequest struct {
	OrgID       string   `json:"org_id"`
	Courier     string   `json:"courier"`
	TrackingIDs []string `json:"tracking_ids"`
}

type WatchResponse struct {
	Courier    string          `json:"courier"`
	TrackingID string          `json:"tracking_id"`
	Label      string          `json:"label"`
	Status     *StatusResponse `json:"status,omitempty"`
}

type ListWatchesResponse struct {
	Watches []WatchResponse `json:"watches"`
}

type AddWatchResponse struct {
	Courier    string         `json:"courier"`
	TrackingID string         `json:"tracking_id"`
	Label      string         `json:"label"`
	Status     StatusResponse `json:"status"`
}

type RemoveResultResponse struct {
	TrackingID string `json:"tracking_id"`
	Removed    bool   `json:"removed"`
	Label      string `json:"label,omitempty"`
	Error      string `json:"error,omitempty"`
}

type RemoveWatchResponse struct {
	Results []RemoveResultResponse `json:"results"`
}

type SetTargetRequest struct {
	OrgID  string `json:"org_id"`
	Target string `json:"target"`
}

type DeleteOrgRequest struct {
	OrgID string `json:"org_id"`
}
