package handlers

import (
	"log"
	"net/http"
	"strings"

	"parcel-tracking-service/internal/api/dto"
	"parcel-tracking-service/internal/services"
)

// OrgHandler exposes organization-level settings.
type OrgHandler struct {
	Watches *services.WatchList
}

// SetTarget sets or clears where an organization's update events are posted.
// An empty target means silent polling only.
func (h *OrgHandler) SetTarget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.Header().Set("Allow", http.MethodPut)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.SetTargetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.OrgID) == "" {
		writeError(w, r, http.StatusBadRequest, "org_id is required")
		return
	}

	if err := h.Watches.SetNotificationTarget(r.Context(), req.OrgID, strings.TrimSpace(req.Target)); err != nil {
		log.Printf("set notification target failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Delete removes an organization together with its whole watch-list.
func (h *OrgHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", http.MethodDelete)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.DeleteOrgRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.OrgID) == "" {
		writeError(w, r, http.StatusBadRequest, "org_id is required")
		return
	}

	if err := h.Watches.DeleteOrganization(r.Context(), req.OrgID); err != nil {
		log.Printf("delete organization failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
