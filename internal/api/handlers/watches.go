package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"parcel-tracking-service/internal/api/dto"
	"parcel-tracking-service/internal/domain"
	"parcel-tracking-service/internal/services"
)

// WatchHandler exposes the watch-list commands on a single resource path.
type WatchHandler struct {
	Watches *services.WatchList
}

func (h *WatchHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.add(w, r)
	case http.MethodPut:
		h.edit(w, r)
	case http.MethodDelete:
		h.remove(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, PUT, DELETE")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *WatchHandler) list(w http.ResponseWriter, r *http.Request) {
	orgID := strings.TrimSpace(r.URL.Query().Get("org"))
	if orgID == "" {
		writeError(w, r, http.StatusBadRequest, "org is required")
		return
	}
	courier := strings.TrimSpace(r.URL.Query().Get("courier"))

	watches, err := h.Watches.List(r.Context(), orgID, courier)
	if err != nil {
		log.Printf("list watches failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListWatchesResponse{Watches: make([]dto.WatchResponse, 0, len(watches))}
	for _, pkg := range watches {
		item := dto.WatchResponse{
			Courier:    pkg.Courier,
			TrackingID: pkg.TrackingID,
			Label:      pkg.Label,
		}
		if pkg.LastStatus != nil {
			item.Status = toStatus(*pkg.LastStatus)
		}
		res.Watches = append(res.Watches, item)
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *WatchHandler) add(w http.ResponseWriter, r *http.Request) {
	var req dto.AddWatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireWatchFields(w, r, req.OrgID, req.Courier, req.TrackingID) {
		return
	}

	status, err := h.Watches.Add(r.Context(), req.OrgID, req.Courier, req.TrackingID, req.Label)
	if err != nil {
		writeWatchError(w, r, err)
		return
	}

	label := strings.TrimSpace(req.Label)
	if label == "" {
		label = req.TrackingID
	}

	writeJSON(w, r, http.StatusCreated, dto.AddWatchResponse{
		Courier:    req.Courier,
		TrackingID: req.TrackingID,
		Label:      label,
		Status:     *toStatus(status),
	})
}

func (h *WatchHandler) edit(w http.ResponseWriter, r *http.Request) {
	var req dto.EditWatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireWatchFields(w, r, req.OrgID, req.Courier, req.TrackingID) {
		return
	}

	status, err := h.Watches.Edit(r.Context(), req.OrgID, req.Courier, req.TrackingID, req.Label)
	if err != nil {
		writeWatchError(w, r, err)
		return
	}

	label := strings.TrimSpace(req.Label)
	if label == "" {
		label = req.TrackingID
	}

	writeJSON(w, r, http.StatusOK, dto.AddWatchResponse{
		Courier:    req.Courier,
		TrackingID: req.TrackingID,
		Label:      label,
		Status:     *toStatus(status),
	})
}

func (h *WatchHandler) remove(w http.ResponseWriter, r *http.Request) {
	var req dto.RemoveWatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.OrgID) == "" || strings.TrimSpace(req.Courier) == "" {
		writeError(w, r, http.StatusBadRequest, "org_id and courier are required")
		return
	}
	if len(req.TrackingIDs) == 0 {
		writeError(w, r, http.StatusBadRequest, "tracking_ids is required")
		return
	}

	res := dto.RemoveWatchResponse{Results: make([]dto.RemoveResultResponse, 0, len(req.TrackingIDs))}
	for _, id := range req.TrackingIDs {
		item := dto.RemoveResultResponse{TrackingID: id}

		pkg, err := h.Watches.Remove(r.Context(), req.OrgID, req.Courier, id)
		switch {
		case errors.Is(err, domain.ErrNotWatched):
			item.Error = "not watched"
		case err != nil:
			log.Printf("remove watch failed: %v", err)
			item.Error = "internal error"
		default:
			item.Removed = true
			item.Label = pkg.Label
		}

		res.Results = append(res.Results, item)
	}

	writeJSON(w, r, http.StatusOK, res)
}

func requireWatchFields(w http.ResponseWriter, r *http.Request, orgID, courier, trackingID string) bool {
	if strings.TrimSpace(orgID) == "" || strings.TrimSpace(courier) == "" || strings.TrimSpace(trackingID) == "" {
		writeError(w, r, http.StatusBadRequest, "org_id, courier and tracking_id are required")
		return false
	}
	return true
}

// writeWatchError maps the watch-list error taxonomy onto HTTP statuses.
func writeWatchError(w http.ResponseWriter, r *http.Request, err error) {
	var delivered *domain.AlreadyDeliveredError
	var fetchErr *domain.FetchError

	switch {
	case errors.As(err, &delivered):
		// Report the live status instead of persisting a terminal shipment.
		writeJSON(w, r, http.StatusConflict, map[string]any{
			"error":  "package already delivered",
			"status": toStatus(delivered.Status),
		})
	case errors.Is(err, domain.ErrAlreadyWatched):
		writeError(w, r, http.StatusConflict, "package already watched")
	case errors.Is(err, domain.ErrNotWatched):
		writeError(w, r, http.StatusNotFound, "package not watched")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "tracking id not found at courier")
	case errors.Is(err, domain.ErrUnknownCourier):
		writeError(w, r, http.StatusBadRequest, "unknown courier")
	case errors.As(err, &fetchErr):
		log.Printf("courier fetch failed: %v", err)
		writeError(w, r, http.StatusBadGateway, "courier unavailable")
	default:
		log.Printf("watch operation failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// decodeBody parses a single-object JSON body, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}
