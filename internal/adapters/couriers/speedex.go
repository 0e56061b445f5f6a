package couriers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"parcel-tracking-service/internal/domain"
)

var speedexLayouts = []string{
	"02/01/2006 στις 15:04",
	"02/01/2006 15:04",
	"02/01/2006, 15:04",
}

// Speedex tracks shipments on speedex.gr. The site answers an unknown voucher
// with HTTP 400, which is translated to not-found here.
type Speedex struct {
	client  *FetchClient
	baseURL string
}

func NewSpeedex(client *FetchClient) *Speedex {
	return &Speedex{client: client, baseURL: "http://www.speedex.gr"}
}

func (s *Speedex) TrackingURL(trackingID string) string {
	return fmt.Sprintf("%s/isapohi.asp?voucher_code=%s&searcggo=Submit", s.baseURL, trackingID)
}

// Matches reports whether a bare id has the shape of a Speedex voucher.
func (s *Speedex) Matches(trackingID string) bool { return len(trackingID) == 12 }

func (s *Speedex) FetchStatus(ctx context.Context, trackingID string) (domain.TrackingStatus, error) {
	url := fmt.Sprintf("%s/speedex/NewTrackAndTrace.aspx?number=%s", s.baseURL, trackingID)

	resp, err := s.client.Get(ctx, url)
	if err != nil {
		if statusCode(err) == 400 {
			return domain.TrackingStatus{}, domain.ErrNotFound
		}
		return domain.TrackingStatus{}, fmt.Errorf("speedex: fetch %q: %w", trackingID, err)
	}
	defer resp.Body.Close()

	root, err := html.Parse(resp.Body)
	if err != nil {
		return domain.TrackingStatus{}, fmt.Errorf("speedex: parse markup for %q: %w", trackingID, err)
	}

	return parseSpeedexStatus(root)
}

// parseSpeedexStatus reads the timeline section. A delivered shipment gets a
// banner card instead of a final timeline item; both carry a
// "location, date" span.
func parseSpeedexStatus(root *html.Node) (domain.TrackingStatus, error) {
	timeline := findByID(root, "section", "timeline")
	if timeline == nil {
		return domain.TrackingStatus{}, errors.New("speedex: timeline section missing from markup")
	}

	text := nodeText(timeline)
	if strings.Contains(text, "Δεν βρέθηκαν αποτελέσματα") {
		return domain.TrackingStatus{}, domain.ErrNotFound
	}

	if strings.Contains(text, "Η ΑΠΟΣΤΟΛΗ ΠΑΡΑΔΟΘΗΚΕ") {
		header := find(timeline, "div", "delivered-speedex")
		if header == nil {
			return domain.TrackingStatus{}, errors.New("speedex: delivered banner missing its header card")
		}

		location, date := splitLocationDate(nodeText(find(header, "span", "font-small-3")))

		return domain.TrackingStatus{
			Location:    capitalize(location),
			Description: "Η Αποστολή Παραδόθηκε",
			ObservedAt:  normalizeObservedAt(date, speedexLayouts...),
			Delivered:   true,
		}, nil
	}

	lists := findAll(timeline, "ul", "timeline")
	if len(lists) < 2 {
		return domain.TrackingStatus{}, errors.New("speedex: checkpoint timeline missing from markup")
	}

	items := findAll(lists[1], "li", "timeline-item")
	if len(items) == 0 {
		return domain.TrackingStatus{}, domain.ErrNotFound
	}
	last := items[len(items)-1]

	location, date := splitLocationDate(nodeText(find(last, "span", "font-small-3")))

	return domain.TrackingStatus{
		Location:    capitalize(location),
		Description: capitalize(nodeText(find(last, "h4", "card-title"))),
		ObservedAt:  normalizeObservedAt(date, speedexLayouts...),
		Delivered:   false,
	}, nil
}

// splitLocationDate splits the "ΑΘΗΝΑ, 21/05/2021 στις 14:33" span contents.
func splitLocationDate(s string) (location, date string) {
	i := strings.Index(s, ", ")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+2:]
}
