package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"parcel-tracking-service/internal/api/dto"
	"parcel-tracking-service/internal/domain"
	"parcel-tracking-service/internal/services"
)

const maxTrackIDs = 20

// TrackHandler answers one-off lookups for bare tracking ids.
type TrackHandler struct {
	Tracker *services.Tracker
}

func (h *TrackHandler) Track(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.TrackRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	ids := make([]string, 0, len(req.IDs))
	for _, id := range req.IDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		writeError(w, r, http.StatusBadRequest, "ids is required")
		return
	}
	if len(ids) > maxTrackIDs {
		writeError(w, r, http.StatusBadRequest, "too many ids in one request")
		return
	}

	res := dto.TrackResponse{Queries: make([]dto.TrackQueryResponse, 0, len(ids))}
	for _, id := range ids {
		results := h.Tracker.TrackOnce(r.Context(), id)

		query := dto.TrackQueryResponse{
			TrackingID: id,
			Results:    make([]dto.TrackResultResponse, 0, len(results)),
		}
		for _, tr := range results {
			query.Results = append(query.Results, toTrackResult(tr))
		}
		res.Queries = append(res.Queries, query)
	}

	writeJSON(w, r, http.StatusOK, res)
}

func toTrackResult(tr services.TrackResult) dto.TrackResultResponse {
	out := dto.TrackResultResponse{
		Courier:     tr.Courier,
		TrackingURL: tr.TrackingURL,
		NotFound:    tr.NotFound,
	}
	if tr.Err != nil {
		out.Error = "courier unavailable"
	}
	if tr.Status != nil {
		out.Status = toStatus(*tr.Status)
	}
	return out
}

func toStatus(s domain.TrackingStatus) *dto.StatusResponse {
	return &dto.StatusResponse{
		Location:    s.Location,
		Description: s.Description,
		ObservedAt:  s.ObservedAt,
		Delivered:   s.Delivered,
	}
}
