package couriers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/net/html"

	"parcel-tracking-service/internal/domain"
)

// ACS tracks shipments on acscourier.net. The tracking page is a client-side
// application, so statuses are read from a headless browser render instead of
// a plain GET.
type ACS struct {
	browser *rod.Browser
	baseURL string
}

func NewACS(browser *rod.Browser) *ACS {
	return &ACS{
		browser: browser,
		baseURL: "https://www.acscourier.net/el/web/greece/track-and-trace?action=getTracking3&generalCode=",
	}
}

func (a *ACS) TrackingURL(trackingID string) string { return a.baseURL + trackingID }

// Matches reports whether a bare id has the shape of an ACS voucher.
func (a *ACS) Matches(trackingID string) bool { return len(trackingID) == 10 }

func (a *ACS) FetchStatus(ctx context.Context, trackingID string) (domain.TrackingStatus, error) {
	page, err := a.browser.Page(proto.TargetCreateTarget{URL: a.TrackingURL(trackingID)})
	if err != nil {
		return domain.TrackingStatus{}, fmt.Errorf("acs: open page for %q: %w", trackingID, err)
	}
	defer page.Close()

	page = page.Context(ctx)

	// The results component renders only after the in-page search completes.
	if err := page.WaitElementsMoreThan("app-parcels-search-results", 0); err != nil {
		return domain.TrackingStatus{}, fmt.Errorf("acs: wait for results of %q: %w", trackingID, err)
	}

	content, err := page.HTML()
	if err != nil {
		return domain.TrackingStatus{}, fmt.Errorf("acs: read rendered page for %q: %w", trackingID, err)
	}

	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return domain.TrackingStatus{}, fmt.Errorf("acs: parse markup for %q: %w", trackingID, err)
	}

	return parseACSStatus(root)
}

// parseACSStatus reads the last two result tables: the summary table flags a
// delivered shipment with a row class, the history table lists checkpoints
// oldest first.
func parseACSStatus(root *html.Node) (domain.TrackingStatus, error) {
	tables := findAll(root, "tbody", "")
	if len(tables) < 2 {
		return domain.TrackingStatus{}, errors.New("acs: results tables missing from markup")
	}
	summary := tables[len(tables)-2]
	history := tables[len(tables)-1]

	rows := findAll(history, "tr", "")
	if len(rows) == 0 {
		return domain.TrackingStatus{}, domain.ErrNotFound
	}
	last := rows[len(rows)-1]

	cells := findAll(last, "td", "")
	if len(cells) < 3 {
		return domain.TrackingStatus{}, errors.New("acs: unexpected checkpoint row shape")
	}

	delivered := false
	for _, tr := range findAll(summary, "tr", "") {
		if hasClass(tr, "delivered") {
			delivered = true
			break
		}
	}

	return domain.TrackingStatus{
		Location:    capitalize(nodeText(cells[0])),
		Description: capitalize(nodeText(cells[2])),
		ObservedAt:  normalizeObservedAt(nodeText(cells[1]), "02/01/06, 3:04 PM"),
		Delivered:   delivered,
	}, nil
}
