package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	portsrepo "github.com/smallbooks/smallbooks_backend/internal/core/ports/repositories"
)

// PgxAuditRepository appends events to the append-only audit log.
type PgxAuditRepository struct {
	BaseRepository
}

func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditWriter {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditWriter = (*PgxAuditRepository)(nil)

// AppendEvent inserts one audit record. There is no update or delete.
func (r *PgxAuditRepository) AppendEvent(ctx context.Context, event domain.AuditEvent) error {
	query := `
		INSERT INTO audit_events (event_id, user_id, timestamp, action, details)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.db(ctx).Exec(ctx, query, event.EventID, event.UserID, event.Timestamp, event.Action, event.Details)
	if err != nil {
		return fmt.Errorf("failed to append audit event %s: %w", event.EventID, err)
	}
	return nil
}
