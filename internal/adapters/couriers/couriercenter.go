package couriers

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/net/html"

	"parcel-tracking-service/internal/domain"
)

// CourierCenter tracks shipments on courier.gr. The site answers an unknown
// voucher with HTTP 400, which is translated to not-found here.
type CourierCenter struct {
	client  *FetchClient
	baseURL string
}

func NewCourierCenter(client *FetchClient) *CourierCenter {
	return &CourierCenter{client: client, baseURL: "https://courier.gr"}
}

func (c *CourierCenter) TrackingURL(trackingID string) string {
	return fmt.Sprintf("%s/track/result?tracknr=%s", c.baseURL, trackingID)
}

// Matches reports whether a bare id has the shape of a CourierCenter voucher.
func (c *CourierCenter) Matches(trackingID string) bool { return len(trackingID) == 12 }

func (c *CourierCenter) FetchStatus(ctx context.Context, trackingID string) (domain.TrackingStatus, error) {
	resp, err := c.client.Get(ctx, c.TrackingURL(trackingID))
	if err != nil {
		if statusCode(err) == 400 {
			return domain.TrackingStatus{}, domain.ErrNotFound
		}
		return domain.TrackingStatus{}, fmt.Errorf("couriercenter: fetch %q: %w", trackingID, err)
	}
	defer resp.Body.Close()

	root, err := html.Parse(resp.Body)
	if err != nil {
		return domain.TrackingStatus{}, fmt.Errorf("couriercenter: parse markup for %q: %w", trackingID, err)
	}

	return parseCourierCenterStatus(root)
}

// parseCourierCenterStatus reads the track table; the row after the header is
// the newest checkpoint. Delivery is flagged by a status code block, not by
// the checkpoint text.
func parseCourierCenterStatus(root *html.Node) (domain.TrackingStatus, error) {
	if find(root, "h4", "error") != nil {
		return domain.TrackingStatus{}, domain.ErrNotFound
	}

	table := find(root, "div", "track-table")
	if table == nil {
		return domain.TrackingStatus{}, errors.New("couriercenter: track table missing from markup")
	}

	rows := elementChildren(table)
	if len(rows) < 2 {
		return domain.TrackingStatus{}, domain.ErrNotFound
	}
	newest := rows[1]

	date := nodeText(findByID(newest, "div", "date"))
	clock := nodeText(findByID(newest, "div", "time"))

	delivered := false
	if status := find(root, "div", "status"); status != nil {
		kids := elementChildren(status)
		if len(kids) > 1 && nodeText(kids[1]) == "(29) DeliveryCompleted" {
			delivered = true
		}
	}

	return domain.TrackingStatus{
		Location:    capitalize(nodeText(findByID(newest, "div", "area"))),
		Description: capitalize(nodeText(findByID(newest, "div", "action"))),
		ObservedAt:  normalizeObservedAt(date+", "+clock, "02/01/2006, 15:04"),
		Delivered:   delivered,
	}, nil
}
