package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"parcel-tracking-service/internal/domain"
	"parcel-tracking-service/internal/ports"
)

type WatchSeed struct {
	Courier    string `json:"courier"`
	TrackingID string `json:"tracking_id"`
	Label      string `json:"label"`
}

type OrganizationSeed struct {
	OrgID        string      `json:"org_id"`
	NotifyTarget string      `json:"notify_target"`
	Watches      []WatchSeed `json:"watches"`
}

// Populate the store with organizations and watches from a JSON file.
// Seeded watches carry no last status; the first sweep fills it in.
// Identities that already exist are left alone.
func SeedFromJSON(ctx context.Context, repo ports.WatchRepository, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed watches: read %q: %w", jsonPath, err)
	}

	var data []OrganizationSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed watches: parse json: %w", err)
	}

	for i, org := range data {
		orgID := strings.TrimSpace(org.OrgID)
		if orgID == "" {
			return fmt.Errorf("seed watches: organization at index %d: org_id cannot be empty", i+1)
		}

		if err := repo.EnsureOrganization(ctx, orgID); err != nil {
			return fmt.Errorf("seed watches: %w", err)
		}

		if org.NotifyTarget != "" {
			if err := repo.SetNotificationTarget(ctx, orgID, org.NotifyTarget); err != nil {
				return fmt.Errorf("seed watches: %w", err)
			}
		}

		for j, watch := range org.Watches {
			courier := strings.TrimSpace(watch.Courier)
			trackingID := strings.TrimSpace(watch.TrackingID)
			if courier == "" || trackingID == "" {
				return fmt.Errorf(
					"seed watches: org %q watch at index %d: courier and tracking_id cannot be empty",
					orgID, j+1,
				)
			}

			label := strings.TrimSpace(watch.Label)
			if label == "" {
				label = trackingID
			}

			err := repo.InsertWatch(ctx, orgID, domain.WatchedPackage{
				Courier:    courier,
				TrackingID: trackingID,
				Label:      label,
			})
			if err != nil && !errors.Is(err, domain.ErrAlreadyWatched) {
				return fmt.Errorf("seed watches: %w", err)
			}
		}
	}

	return nil
}
