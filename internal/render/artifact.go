package render

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/eddiefleurent/paper_tickets/internal/config"
)

// Artifact is the JSON envelope written by --json runs. Position IDs inside
// are deterministic; RunID identifies the run itself.
type Artifact struct {
	GeneratedAt time.Time           `json:"generated_at"`
	RunID       string              `json:"run_id"`
	Market      *config.MarketState `json:"market,omitempty"`
	Count       int                 `json:"count"`
	Tickets     []*Ticket           `json:"tickets"`
}

// NewArtifact wraps tickets in an envelope stamped with a fresh run ID.
func NewArtifact(tickets []*Ticket, market *config.MarketState, now time.Time) *Artifact {
	return &Artifact{
		GeneratedAt: now.UTC(),
		RunID:       uuid.NewString(),
		Market:      market,
		Count:       len(tickets),
		Tickets:     tickets,
	}
}

// WriteJSON marshals the artifact with indentation for diff-friendly output.
func (a *Artifact) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	return nil
}
