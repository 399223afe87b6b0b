package services

import (
	"context"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	"github.com/smallbooks/smallbooks_backend/internal/dto"
)

// AdjustmentSvc implements the append-only correction workflow for posted entries.
type AdjustmentSvc interface {
	// EditPostedEntry replaces a posted entry's economic effect without touching the
	// original record: it posts a reversal and a corrected replacement, both flagged
	// as adjusting entries carrying the caller's reason. Returns the pair.
	EditPostedEntry(ctx context.Context, userID string, entryID string, req dto.EditPostedEntryRequest) (reversal *domain.JournalEntry, replacement *domain.JournalEntry, err error)
}
