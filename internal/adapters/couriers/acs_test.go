package couriers

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"parcel-tracking-service/internal/domain"
)

func parseHTML(t *testing.T, markup string) *html.Node {
	t.Helper()

	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parse test markup: %v", err)
	}
	return root
}

func TestParseACSStatusInTransit(t *testing.T) {
	root := parseHTML(t, `
	<app-parcels-search-results>
	  <table><tbody>
	    <tr><td>voucher summary</td></tr>
	  </tbody></table>
	  <table><tbody>
	    <tr><td>ΛΑΡΙΣΑ</td><td>20/05/21, 9:05 π.μ.</td><td>ΠΑΡΑΛΑΒΗ ΑΠΟΣΤΟΛΗΣ</td></tr>
	    <tr><td>ΑΘΗΝΑ</td><td>21/05/21, 2:33 μ.μ.</td><td>ΑΦΙΞΗ ΣΕ ΚΕΝΤΡΟ ΔΙΑΛΟΓΗΣ</td></tr>
	  </tbody></table>
	</app-parcels-search-results>`)

	status, err := parseACSStatus(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if status.Location != "Αθηνα" {
		t.Fatalf("location = %q, want %q", status.Location, "Αθηνα")
	}
	if status.Description != "Αφιξη σε κεντρο διαλογησ" {
		t.Fatalf("description = %q", status.Description)
	}
	if status.ObservedAt != "21/05/2021, 14:33" {
		t.Fatalf("observed at = %q, want %q", status.ObservedAt, "21/05/2021, 14:33")
	}
	if status.Delivered {
		t.Fatalf("shipment without a delivered summary row should not be delivered")
	}
}

func TestParseACSStatusDelivered(t *testing.T) {
	root := parseHTML(t, `
	<table><tbody>
	  <tr class="delivered"><td>voucher summary</td></tr>
	</tbody></table>
	<table><tbody>
	  <tr><td>ΑΘΗΝΑ</td><td>22/05/21, 11:00 π.μ.</td><td>ΠΑΡΑΔΟΣΗ</td></tr>
	</tbody></table>`)

	status, err := parseACSStatus(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.Delivered {
		t.Fatalf("summary row with delivered class should mark the status delivered")
	}
	if status.ObservedAt != "22/05/2021, 11:00" {
		t.Fatalf("observed at = %q", status.ObservedAt)
	}
}

func TestParseACSStatusNotFound(t *testing.T) {
	root := parseHTML(t, `
	<table><tbody>
	  <tr><td>voucher summary</td></tr>
	</tbody></table>
	<table><tbody></tbody></table>`)

	_, err := parseACSStatus(root)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("empty history should report ErrNotFound, got %v", err)
	}
}

func TestParseACSStatusMissingTables(t *testing.T) {
	root := parseHTML(t, `<div>loading</div>`)

	_, err := parseACSStatus(root)
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("markup without result tables should fail hard, got %v", err)
	}
}
