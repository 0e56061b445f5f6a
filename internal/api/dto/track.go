package dto

type TrackRequest struct {
	IDs []string `json:"ids"`
}

type TrackResultResponse struct {
	Courier     string          `json:"courier"`
	TrackingURL string          `json:"tracking_url,omitempty"`
	Status      *StatusResponse `json:"status,omitempty"`
	NotFound    bool            `json:"not_found,omitempty"`
	Error       string          `json:"error,omitempty"`
}

type TrackQueryResponse struct {
	TrackingID string                `json:"tracking_id"`
	Results    []TrackResultResponse `json:"results"`
}

type TrackResponse struct {
	Queries []TrackQueryResponse `json:"queries"`
}
