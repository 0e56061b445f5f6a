package couriers

import (
	"errors"
	"testing"

	"parcel-tracking-service/internal/domain"
)

func TestParseEasyMailStatusInTransit(t *testing.T) {
	root := parseHTML(t, `
	<table><tbody>
	  <tr><td>21/05/2021 14:33</td><td>Σε μεταφορά</td><td>ΑΘΗΝΑ</td></tr>
	  <tr><td>20/05/2021 09:05</td><td>Παραλαβή</td><td>ΛΑΡΙΣΑ</td></tr>
	</tbody></table>`)

	status, err := parseEasyMailStatus(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if status.Location != "Αθηνα" {
		t.Fatalf("location = %q, want newest checkpoint location", status.Location)
	}
	if status.Description != "Σε μεταφορά" {
		t.Fatalf("description = %q", status.Description)
	}
	if status.ObservedAt != "21/05/2021, 14:33" {
		t.Fatalf("observed at = %q", status.ObservedAt)
	}
	if status.Delivered {
		t.Fatalf("in-transit checkpoint should not be delivered")
	}
}

func TestParseEasyMailStatusDelivered(t *testing.T) {
	root := parseHTML(t, `
	<table><tbody>
	  <tr><td>22/05/2021 11:00</td><td>Παραδόθηκε</td><td>ΑΘΗΝΑ</td></tr>
	</tbody></table>`)

	status, err := parseEasyMailStatus(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.Delivered {
		t.Fatalf("delivery checkpoint should be delivered")
	}
}

func TestParseEasyMailStatusNotFound(t *testing.T) {
	root := parseHTML(t, `<div class="cus-alert">Δεν βρέθηκε αποστολή</div>`)

	_, err := parseEasyMailStatus(root)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("alert box should report ErrNotFound, got %v", err)
	}
}
