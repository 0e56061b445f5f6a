package couriers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"parcel-tracking-service/internal/domain"
)

// Geniki tracks shipments on taxydromiki.com (Geniki Taxydromiki).
type Geniki struct {
	client  *FetchClient
	baseURL string
}

func NewGeniki(client *FetchClient) *Geniki {
	return &Geniki{client: client, baseURL: "https://www.taxydromiki.com"}
}

func (g *Geniki) TrackingURL(trackingID string) string {
	return g.baseURL + "/track/" + trackingID
}

// Matches reports whether a bare id has the shape of a Geniki voucher.
// Geniki and ACS share the 10-character shape; routing queries both.
func (g *Geniki) Matches(trackingID string) bool { return len(trackingID) == 10 }

func (g *Geniki) FetchStatus(ctx context.Context, trackingID string) (domain.TrackingStatus, error) {
	resp, err := g.client.Get(ctx, g.TrackingURL(trackingID))
	if err != nil {
		return domain.TrackingStatus{}, fmt.Errorf("geniki: fetch %q: %w", trackingID, err)
	}
	defer resp.Body.Close()

	root, err := html.Parse(resp.Body)
	if err != nil {
		return domain.TrackingStatus{}, fmt.Errorf("geniki: parse markup for %q: %w", trackingID, err)
	}

	return parseGenikiStatus(root)
}

// parseGenikiStatus reads the checkpoint list, newest checkpoint last.
func parseGenikiStatus(root *html.Node) (domain.TrackingStatus, error) {
	checkpoints := findAll(root, "div", "tracking-checkpoint")
	if len(checkpoints) == 0 {
		return domain.TrackingStatus{}, domain.ErrNotFound
	}
	newest := checkpoints[len(checkpoints)-1]

	status := find(newest, "div", "checkpoint-status")
	if status == nil {
		return domain.TrackingStatus{}, errors.New("geniki: checkpoint status missing from markup")
	}
	description := strings.TrimPrefix(nodeText(status), "Κατάσταση ")

	date := strings.TrimPrefix(nodeText(find(newest, "div", "checkpoint-date")), "Ημερομηνία ")
	clock := strings.TrimPrefix(nodeText(find(newest, "div", "checkpoint-time")), "Ώρα ")

	return domain.TrackingStatus{
		Location:    capitalize(nodeText(find(newest, "div", "checkpoint-location"))),
		Description: capitalize(description),
		ObservedAt:  normalizeObservedAt(date+" "+clock, "02/01/2006 15:04", "Monday, 02/01/2006 15:04"),
		Delivered:   strings.Contains(description, "Παράδοση"),
	}, nil
}
