package couriers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"parcel-tracking-service/internal/domain"
)

// ELTA tracks shipments on elta-courier.gr.
type ELTA struct {
	client  *FetchClient
	baseURL string
}

func NewELTA(client *FetchClient) *ELTA {
	return &ELTA{client: client, baseURL: "https://www.elta-courier.gr"}
}

func (e *ELTA) TrackingURL(trackingID string) string {
	return e.baseURL + "/search?br=" + trackingID
}

// Matches reports whether a bare id has the shape of an ELTA voucher.
func (e *ELTA) Matches(trackingID string) bool { return len(trackingID) == 13 }

func (e *ELTA) FetchStatus(ctx context.Context, trackingID string) (domain.TrackingStatus, error) {
	resp, err := e.client.Get(ctx, e.TrackingURL(trackingID))
	if err != nil {
		return domain.TrackingStatus{}, fmt.Errorf("elta: fetch %q: %w", trackingID, err)
	}
	defer resp.Body.Close()

	root, err := html.Parse(resp.Body)
	if err != nil {
		return domain.TrackingStatus{}, fmt.Errorf("elta: parse markup for %q: %w", trackingID, err)
	}

	return parseELTAStatus(root)
}

// parseELTAStatus reads the result table, newest checkpoint last.
func parseELTAStatus(root *html.Node) (domain.TrackingStatus, error) {
	if find(root, "div", "search-error") != nil {
		return domain.TrackingStatus{}, domain.ErrNotFound
	}

	bodies := findAll(root, "tbody", "")
	if len(bodies) == 0 {
		return domain.TrackingStatus{}, errors.New("elta: result table missing from markup")
	}

	rows := findAll(bodies[len(bodies)-1], "tr", "")
	if len(rows) == 0 {
		return domain.TrackingStatus{}, domain.ErrNotFound
	}
	newest := rows[len(rows)-1]

	cells := findAll(newest, "td", "")
	if len(cells) < 4 {
		return domain.TrackingStatus{}, errors.New("elta: unexpected checkpoint row shape")
	}

	description := nodeText(cells[3])
	delivered := strings.Contains(description, "Παραδόθηκε") ||
		strings.Contains(description, "ΠΑΡΑΔΟΘΗΚΕ")

	return domain.TrackingStatus{
		Location:    capitalize(nodeText(cells[2])),
		Description: capitalize(description),
		ObservedAt:  normalizeObservedAt(nodeText(cells[0])+" "+nodeText(cells[1]), "02/01/2006 15:04"),
		Delivered:   delivered,
	}, nil
}
