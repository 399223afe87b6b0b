package repositories

import (
	"context"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
)

// AuditWriter appends events to the audit log. The core never reads the log back; it is
// consumed only by the audit UI.
type AuditWriter interface {
	AppendEvent(ctx context.Context, event domain.AuditEvent) error
}
