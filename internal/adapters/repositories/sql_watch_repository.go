package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"parcel-tracking-service/internal/domain"
	"parcel-tracking-service/internal/platform/obs"
)

// Postgres-backed implementation of the WatchRepository port.
// Same contract as the SQLite variant; deployments pick one at startup.
type SQLWatchRepository struct{ DB *sql.DB }

func NewSQLWatchRepository(db *sql.DB) *SQLWatchRepository {
	return &SQLWatchRepository{DB: db}
}

func (s *SQLWatchRepository) EnsureOrganization(ctx context.Context, orgID string) (err error) {
	defer obs.Time(ctx, "watches.EnsureOrganization")(&err)

	if s.DB == nil {
		return errors.New("watch repository: DB is nil")
	}

	query := `
	INSERT INTO organizations (org_id, notify_target)
	VALUES ($1, '')
	ON CONFLICT (org_id) DO NOTHING;
	`
	if _, err := s.DB.ExecContext(ctx, query, orgID); err != nil {
		return fmt.Errorf("ensure organization %q: %w", orgID, err)
	}

	return nil
}

func (s *SQLWatchRepository) DeleteOrganization(ctx context.Context, orgID string) (err error) {
	defer obs.Time(ctx, "watches.DeleteOrganization")(&err)

	if s.DB == nil {
		return errors.New("watch repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete organization: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM watches WHERE org_id = $1;`, orgID); err != nil {
		return fmt.Errorf("delete organization %q: clear watches: %w", orgID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM organizations WHERE org_id = $1;`, orgID); err != nil {
		return fmt.Errorf("delete organization %q: %w", orgID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete organization %q: commit tx: %w", orgID, err)
	}

	return nil
}

func (s *SQLWatchRepository) ListOrganizations(ctx context.Context) (_ []domain.Organization, err error) {
	defer obs.Time(ctx, "watches.ListOrganizations")(&err)

	if s.DB == nil {
		return nil, errors.New("watch repository: DB is nil")
	}

	query := `
	SELECT org_id, notify_target
	FROM organizations
	ORDER BY org_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list organizations: query: %w", err)
	}
	defer rows.Close()

	orgs := make([]domain.Organization, 0, 16)
	for rows.Next() {
		var o domain.Organization
		if err := rows.Scan(&o.OrgID, &o.NotifyTarget); err != nil {
			return nil, fmt.Errorf("list organizations: scan row: %w", err)
		}
		orgs = append(orgs, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list organizations: row iteration: %w", err)
	}

	return orgs, nil
}

func (s *SQLWatchRepository) SetNotificationTarget(ctx context.Context, orgID, target string) (err error) {
	defer obs.Time(ctx, "watches.SetNotificationTarget")(&err)

	if s.DB == nil {
		return errors.New("watch repository: DB is nil")
	}

	query := `
	INSERT INTO organizations (org_id, notify_target)
	VALUES ($1, $2)
	ON CONFLICT (org_id) DO UPDATE
	SET notify_target = EXCLUDED.notify_target;
	`
	if _, err := s.DB.ExecContext(ctx, query, orgID, target); err != nil {
		return fmt.Errorf("set notification target for %q: %w", orgID, err)
	}

	return nil
}

func (s *SQLWatchRepository) ListWatches(ctx context.Context, orgID, courier string) (_ []domain.WatchedPackage, err error) {
	defer obs.Time(ctx, "watches.ListWatches")(&err)

	if s.DB == nil {
		return nil, errors.New("watch repository: DB is nil")
	}

	query := `
	SELECT courier, tracking_id, label, last_location, last_description, last_observed_at, last_delivered
	FROM watches
	WHERE org_id = $1
		AND ($2 = '' OR courier = $2)
	ORDER BY position;
	`
	rows, err := s.DB.QueryContext(ctx, query, orgID, courier)
	if err != nil {
		return nil, fmt.Errorf("list watches: query: %w", err)
	}
	defer rows.Close()

	watches := make([]domain.WatchedPackage, 0, 16)
	for rows.Next() {
		pkg, err := scanWatch(rows)
		if err != nil {
			return nil, fmt.Errorf("list watches: %w", err)
		}
		watches = append(watches, pkg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list watches: row iteration: %w", err)
	}

	return watches, nil
}

func (s *SQLWatchRepository) InsertWatch(ctx context.Context, orgID string, pkg domain.WatchedPackage) (err error) {
	defer obs.Time(ctx, "watches.InsertWatch")(&err)

	if s.DB == nil {
		return errors.New("watch repository: DB is nil")
	}

	location, description, observedAt, delivered := statusColumns(pkg.LastStatus)

	query := `
	INSERT INTO watches (org_id, courier, tracking_id, label, last_location, last_description, last_observed_at, last_delivered)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (org_id, courier, tracking_id) DO NOTHING;
	`
	res, err := s.DB.ExecContext(ctx, query,
		orgID, pkg.Courier, pkg.TrackingID, pkg.Label,
		location, description, observedAt, delivered,
	)
	if err != nil {
		return fmt.Errorf("insert watch %s/%s: %w", pkg.Courier, pkg.TrackingID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert watch: rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrAlreadyWatched
	}

	return nil
}

func (s *SQLWatchRepository) DeleteWatch(ctx context.Context, key domain.WatchKey) (_ *domain.WatchedPackage, err error) {
	defer obs.Time(ctx, "watches.DeleteWatch")(&err)

	if s.DB == nil {
		return nil, errors.New("watch repository: DB is nil")
	}

	query := `
	DELETE FROM watches
	WHERE org_id = $1 AND courier = $2 AND tracking_id = $3
	RETURNING courier, tracking_id, label, last_location, last_description, last_observed_at, last_delivered;
	`
	row := s.DB.QueryRowContext(ctx, query, key.OrgID, key.Courier, key.TrackingID)
	pkg, err := scanWatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotWatched
	}
	if err != nil {
		return nil, fmt.Errorf("delete watch %s/%s: %w", key.Courier, key.TrackingID, err)
	}

	return &pkg, nil
}

func (s *SQLWatchRepository) ApplyStatus(ctx context.Context, key domain.WatchKey, status domain.TrackingStatus) (err error) {
	defer obs.Time(ctx, "watches.ApplyStatus")(&err)

	if s.DB == nil {
		return errors.New("watch repository: DB is nil")
	}

	var res sql.Result
	if status.Delivered {
		// Delivered is terminal: the row is gone the moment the status lands.
		del := `
		DELETE FROM watches
		WHERE org_id = $1 AND courier = $2 AND tracking_id = $3;
		`
		res, err = s.DB.ExecContext(ctx, del, key.OrgID, key.Courier, key.TrackingID)
	} else {
		update := `
		UPDATE watches
		SET last_location = $1, last_description = $2, last_observed_at = $3, last_delivered = $4
		WHERE org_id = $5 AND courier = $6 AND tracking_id = $7;
		`
		res, err = s.DB.ExecContext(ctx, update,
			status.Location, status.Description, status.ObservedAt, status.Delivered,
			key.OrgID, key.Courier, key.TrackingID,
		)
	}
	if err != nil {
		return fmt.Errorf("apply status %s/%s: %w", key.Courier, key.TrackingID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("apply status: rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotWatched
	}

	return nil
}
