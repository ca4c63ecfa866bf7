package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bikeflow-data/pkg/bikeshare/models"
)

// ErrNoActiveSnapshot is returned when bikeshare.snapshots has no active row
var ErrNoActiveSnapshot = errors.New("no active snapshot")

const activeSnapshotQuery = `
	SELECT snapshot_id, snapshot_name, updated_at
	FROM bikeshare.snapshots
	WHERE is_active = true
	ORDER BY updated_at DESC
	LIMIT 1
`

// SnapshotVersions looks up which imported snapshot is active
type SnapshotVersions struct {
	db *DB
}

func NewSnapshotVersions(db *DB) *SnapshotVersions {
	return &SnapshotVersions{db: db}
}

// GetActive returns the active snapshot
func (sv *SnapshotVersions) GetActive(ctx context.Context) (*models.SnapshotInfo, error) {
	var info models.SnapshotInfo
	err := sv.db.conn.QueryRowContext(ctx, activeSnapshotQuery).Scan(
		&info.VersionID,
		&info.VersionName,
		&info.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("querying active snapshot: %w", err)
	}

	info.Source = "postgres"
	sv.db.logger.Debug("Found active snapshot",
		"snapshot_id", info.VersionID,
		"snapshot_name", info.VersionName,
		"updated_at", info.UpdatedAt)

	return &info, nil
}
