package couriers

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/net/html"

	"parcel-tracking-service/internal/domain"
)

// EasyMail tracks shipments via the trackntrace.easymail.gr status page.
type EasyMail struct {
	client  *FetchClient
	baseURL string
}

func NewEasyMail(client *FetchClient) *EasyMail {
	return &EasyMail{client: client, baseURL: "https://trackntrace.easymail.gr"}
}

func (e *EasyMail) TrackingURL(trackingID string) string {
	return e.baseURL + "/" + trackingID
}

// Matches reports whether a bare id has the shape of an EasyMail voucher.
func (e *EasyMail) Matches(trackingID string) bool { return len(trackingID) == 11 }

func (e *EasyMail) FetchStatus(ctx context.Context, trackingID string) (domain.TrackingStatus, error) {
	resp, err := e.client.Get(ctx, e.TrackingURL(trackingID))
	if err != nil {
		return domain.TrackingStatus{}, fmt.Errorf("easymail: fetch %q: %w", trackingID, err)
	}
	defer resp.Body.Close()

	root, err := html.Parse(resp.Body)
	if err != nil {
		return domain.TrackingStatus{}, fmt.Errorf("easymail: parse markup for %q: %w", trackingID, err)
	}

	return parseEasyMailStatus(root)
}

// parseEasyMailStatus reads the checkpoint table; the newest checkpoint is the
// first row. An alert box replaces the table when the id is unknown.
func parseEasyMailStatus(root *html.Node) (domain.TrackingStatus, error) {
	if find(root, "div", "cus-alert") != nil {
		return domain.TrackingStatus{}, domain.ErrNotFound
	}

	bodies := findAll(root, "tbody", "")
	if len(bodies) == 0 {
		return domain.TrackingStatus{}, errors.New("easymail: status table missing from markup")
	}

	rows := findAll(bodies[len(bodies)-1], "tr", "")
	if len(rows) == 0 {
		return domain.TrackingStatus{}, domain.ErrNotFound
	}
	newest := rows[0]

	cells := findAll(newest, "td", "")
	if len(cells) < 3 {
		return domain.TrackingStatus{}, errors.New("easymail: unexpected checkpoint row shape")
	}

	description := nodeText(cells[1])

	return domain.TrackingStatus{
		Location:    capitalize(nodeText(cells[2])),
		Description: capitalize(description),
		ObservedAt:  normalizeObservedAt(nodeText(cells[0]), "02/01/2006 15:04", "02/01/2006, 15:04"),
		Delivered:   description == "Παραδόθηκε",
	}, nil
}
