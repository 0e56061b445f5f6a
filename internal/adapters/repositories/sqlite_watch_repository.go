package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"parcel-tracking-service/internal/domain"
)

// SQLite-backed implementation of the WatchRepository port.
//
// Mutations run in transactions so a commit is the only point a change
// becomes observable; callers never see an acknowledged-but-unpersisted write.
type SqliteWatchRepository struct{ DB *sql.DB }

func NewSqliteWatchRepository(db *sql.DB) *SqliteWatchRepository {
	return &SqliteWatchRepository{DB: db}
}

func (s *SqliteWatchRepository) EnsureOrganization(ctx context.Context, orgID string) error {
	if s.DB == nil {
		return errors.New("watch repository: DB is nil")
	}

	query := `
	INSERT OR IGNORE INTO organizations (org_id, notify_target)
	VALUES (?, '');
	`
	if _, err := s.DB.ExecContext(ctx, query, orgID); err != nil {
		return fmt.Errorf("ensure organization %q: %w", orgID, err)
	}

	return nil
}

func (s *SqliteWatchRepository) DeleteOrganization(ctx context.Context, orgID string) error {
	if s.DB == nil {
		return errors.New("watch repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete organization: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM watches WHERE org_id = ?;`, orgID); err != nil {
		return fmt.Errorf("delete organization %q: clear watches: %w", orgID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM organizations WHERE org_id = ?;`, orgID); err != nil {
		return fmt.Errorf("delete organization %q: %w", orgID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete organization %q: commit tx: %w", orgID, err)
	}

	return nil
}

func (s *SqliteWatchRepository) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
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

func (s *SqliteWatchRepository) SetNotificationTarget(ctx context.Context, orgID, target string) error {
	if s.DB == nil {
		return errors.New("watch repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set notification target: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ensure := `
	INSERT OR IGNORE INTO organizations (org_id, notify_target)
	VALUES (?, '');
	`
	if _, err := tx.ExecContext(ctx, ensure, orgID); err != nil {
		return fmt.Errorf("set notification target: ensure organization %q: %w", orgID, err)
	}

	update := `
	UPDATE organizations
	SET notify_target = ?
	WHERE org_id = ?;
	`
	if _, err := tx.ExecContext(ctx, update, target, orgID); err != nil {
		return fmt.Errorf("set notification target for %q: %w", orgID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set notification target: commit tx: %w", err)
	}

	return nil
}

func (s *SqliteWatchRepository) ListWatches(ctx context.Context, orgID, courier string) ([]domain.WatchedPackage, error) {
	if s.DB == nil {
		return nil, errors.New("watch repository: DB is nil")
	}

	query := `
	SELECT courier, tracking_id, label, last_location, last_description, last_observed_at, last_delivered
	FROM watches
	WHERE org_id = ?
	`
	args := []any{orgID}
	if courier != "" {
		query += ` AND courier = ?`
		args = append(args, courier)
	}
	query += ` ORDER BY position;`

	rows, err := s.DB.QueryContext(ctx, query, args...)
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

func (s *SqliteWatchRepository) InsertWatch(ctx context.Context, orgID string, pkg domain.WatchedPackage) error {
	if s.DB == nil {
		return errors.New("watch repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert watch: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	check := `
	SELECT 1 FROM watches
	WHERE org_id = ? AND courier = ? AND tracking_id = ?;
	`
	err = tx.QueryRowContext(ctx, check, orgID, pkg.Courier, pkg.TrackingID).Scan(&exists)
	switch {
	case err == nil:
		return domain.ErrAlreadyWatched
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("insert watch: check identity: %w", err)
	}

	location, description, observedAt, delivered := statusColumns(pkg.LastStatus)

	insert := `
	INSERT INTO watches (org_id, courier, tracking_id, label, last_location, last_description, last_observed_at, last_delivered)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`
	if _, err := tx.ExecContext(ctx, insert,
		orgID, pkg.Courier, pkg.TrackingID, pkg.Label,
		location, description, observedAt, delivered,
	); err != nil {
		return fmt.Errorf("insert watch %s/%s: %w", pkg.Courier, pkg.TrackingID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert watch: commit tx: %w", err)
	}

	return nil
}

func (s *SqliteWatchRepository) DeleteWatch(ctx context.Context, key domain.WatchKey) (*domain.WatchedPackage, error) {
	if s.DB == nil {
		return nil, errors.New("watch repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("delete watch: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	SELECT courier, tracking_id, label, last_location, last_description, last_observed_at, last_delivered
	FROM watches
	WHERE org_id = ? AND courier = ? AND tracking_id = ?;
	`
	row := tx.QueryRowContext(ctx, query, key.OrgID, key.Courier, key.TrackingID)
	pkg, err := scanWatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotWatched
	}
	if err != nil {
		return nil, fmt.Errorf("delete watch: %w", err)
	}

	del := `
	DELETE FROM watches
	WHERE org_id = ? AND courier = ? AND tracking_id = ?;
	`
	if _, err := tx.ExecContext(ctx, del, key.OrgID, key.Courier, key.TrackingID); err != nil {
		return nil, fmt.Errorf("delete watch %s/%s: %w", key.Courier, key.TrackingID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("delete watch: commit tx: %w", err)
	}

	return &pkg, nil
}

func (s *SqliteWatchRepository) ApplyStatus(ctx context.Context, key domain.WatchKey, status domain.TrackingStatus) error {
	if s.DB == nil {
		return errors.New("watch repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply status: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var res sql.Result
	if status.Delivered {
		// Delivered is terminal: evict in the same transaction so no
		// delivered entry is ever visible in the store.
		del := `
		DELETE FROM watches
		WHERE org_id = ? AND courier = ? AND tracking_id = ?;
		`
		res, err = tx.ExecContext(ctx, del, key.OrgID, key.Courier, key.TrackingID)
	} else {
		update := `
		UPDATE watches
		SET last_location = ?, last_description = ?, last_observed_at = ?, last_delivered = ?
		WHERE org_id = ? AND courier = ? AND tracking_id = ?;
		`
		res, err = tx.ExecContext(ctx, update,
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

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply status: commit tx: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWatch(row rowScanner) (domain.WatchedPackage, error) {
	var pkg domain.WatchedPackage
	var location, description, observedAt sql.NullString
	var delivered bool

	err := row.Scan(&pkg.Courier, &pkg.TrackingID, &pkg.Label,
		&location, &description, &observedAt, &delivered)
	if err != nil {
		return domain.WatchedPackage{}, err
	}

	// A watch without an observed-at has never been successfully fetched.
	if observedAt.Valid {
		pkg.LastStatus = &domain.TrackingStatus{
			Location:    location.String,
			Description: description.String,
			ObservedAt:  observedAt.String,
			Delivered:   delivered,
		}
	}

	return pkg, nil
}

func statusColumns(status *domain.TrackingStatus) (location, description, observedAt any, delivered bool) {
	if status == nil {
		return nil, nil, nil, false
	}
	return status.Location, status.Description, status.ObservedAt, status.Delivered
}
