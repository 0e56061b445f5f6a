package couriers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"parcel-tracking-service/internal/domain"
)

func TestParseCourierCenterStatusInTransit(t *testing.T) {
	root := parseHTML(t, `
	<div class="track-table">
	  <div class="head">
	    <div>Ημερομηνία</div><div>Ώρα</div><div>Ενέργεια</div><div>Περιοχή</div>
	  </div>
	  <div class="row">
	    <div id="date">21/05/2021</div>
	    <div id="time">14:33</div>
	    <div id="action">ΑΦΙΞΗ ΣΕ ΚΕΝΤΡΟ ΔΙΑΛΟΓΗΣ</div>
	    <div id="area">ΑΘΗΝΑ</div>
	  </div>
	  <div class="row">
	    <div id="date">20/05/2021</div>
	    <div id="time">09:05</div>
	    <div id="action">ΠΑΡΑΛΑΒΗ</div>
	    <div id="area">ΛΑΡΙΣΑ</div>
	  </div>
	</div>`)

	status, err := parseCourierCenterStatus(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if status.Location != "Αθηνα" {
		t.Fatalf("location = %q, want the row after the header", status.Location)
	}
	if status.Description != "Αφιξη σε κεντρο διαλογησ" {
		t.Fatalf("description = %q", status.Description)
	}
	if status.ObservedAt != "21/05/2021, 14:33" {
		t.Fatalf("observed at = %q", status.ObservedAt)
	}
	if status.Delivered {
		t.Fatalf("status without the delivery code should not be delivered")
	}
}

func TestParseCourierCenterStatusDelivered(t *testing.T) {
	root := parseHTML(t, `
	<div class="status">
	  <span>Κατάσταση</span>
	  <span>(29) DeliveryCompleted</span>
	</div>
	<div class="track-table">
	  <div class="head"><div>Ημερομηνία</div></div>
	  <div class="row">
	    <div id="date">22/05/2021</div>
	    <div id="time">11:00</div>
	    <div id="action">ΠΑΡΑΔΟΣΗ</div>
	    <div id="area">ΑΘΗΝΑ</div>
	  </div>
	</div>`)

	status, err := parseCourierCenterStatus(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.Delivered {
		t.Fatalf("the (29) DeliveryCompleted code should mark the status delivered")
	}
	if status.ObservedAt != "22/05/2021, 11:00" {
		t.Fatalf("observed at = %q", status.ObservedAt)
	}
}

func TestParseCourierCenterStatusNotFound(t *testing.T) {
	root := parseHTML(t, `<h4 class="error">Δεν βρέθηκε η αποστολή</h4>`)

	_, err := parseCourierCenterStatus(root)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error heading should report ErrNotFound, got %v", err)
	}
}

func TestParseCourierCenterStatusHeaderOnlyTable(t *testing.T) {
	root := parseHTML(t, `
	<div class="track-table">
	  <div class="head"><div>Ημερομηνία</div></div>
	</div>`)

	_, err := parseCourierCenterStatus(root)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("table without checkpoint rows should report ErrNotFound, got %v", err)
	}
}

func TestParseCourierCenterStatusMissingTable(t *testing.T) {
	root := parseHTML(t, `<div>loading</div>`)

	_, err := parseCourierCenterStatus(root)
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("markup without the track table should fail hard, got %v", err)
	}
}

func TestCourierCenterFetchTranslates400ToNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewCourierCenter(NewFetchClient(time.Second))
	c.baseURL = server.URL

	_, err := c.FetchStatus(context.Background(), "012345678901")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("HTTP 400 should report ErrNotFound, got %v", err)
	}
}
