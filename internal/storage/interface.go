package storage

import (
	"time"

	"github.com/eddiefleurent/paper_tickets/internal/config"
)

// Fill is one recorded execution for a position, keyed by its deterministic
// ID. Fills refine GTC targets: once a real fill exists, tiers are computed
// from it instead of the parsed mark.
type Fill struct {
	Price float64   `yaml:"price" json:"price"`
	At    time.Time `yaml:"at" json:"at"`
}

// Interface is the persistence contract for account state and recorded
// fills.
//
// Implementations must be safe for concurrent use - callers can assume all
// methods are goroutine-safe and can safely call these methods from multiple
// goroutines.
type Interface interface {
	// Account state
	AccountState() (config.AccountState, error)
	SaveAccountState(state config.AccountState) error

	// Recorded fills, keyed by deterministic position ID
	RecordFill(positionID string, price float64, at time.Time) error
	Fills(positionID string) []Fill
	LatestFill(positionID string) *Fill
}

// NewStore creates a store rooted at dir (currently YAML-based).
func NewStore(dir string) (Interface, error) {
	return NewYAMLStore(dir)
}

// Ensure YAMLStore implements Interface
var _ Interface = (*YAMLStore)(nil)
