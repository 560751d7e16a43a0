package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/allisson/envsecrets/internal/database"
	dynamicDomain "github.com/allisson/envsecrets/internal/dynamicsecrets/domain"
	apperrors "github.com/allisson/envsecrets/internal/errors"
)

// LeaseEventRepository appends lease audit events.
type LeaseEventRepository struct {
	db     *sql.DB
	driver string
}

func (r *LeaseEventRepository) Create(ctx context.Context, event *dynamicDomain.LeaseEvent) error {
	querier := database.GetTx(ctx, r.db)

	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal lease event metadata")
	}

	query := database.Rebind(r.driver, `INSERT INTO lease_events
		(id, lease_id, event_type, actor_type, actor_id, ip, user_agent, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err = querier.ExecContext(
		ctx,
		query,
		event.ID,
		event.LeaseID,
		string(event.EventType),
		event.ActorType,
		event.ActorID,
		event.IP,
		event.UserAgent,
		string(metadata),
		event.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create lease event")
	}
	return nil
}

// NewLeaseEventRepository creates a LeaseEventRepository for the given driver.
func NewLeaseEventRepository(db *sql.DB, driver string) *LeaseEventRepository {
	return &LeaseEventRepository{db: db, driver: driver}
}
