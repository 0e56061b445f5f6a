package dto

type StatusResponse struct {
	Location    string `json:"location"`
	Description string `json:"description"`
	ObservedAt  string `json:"observed_at"`
	Delivered   bool   `json:"delivered"`
}
