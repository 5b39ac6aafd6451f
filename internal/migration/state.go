package migration

import (
	"encoding/json"
	"fmt"
	"time"
)

// Local cache keys owned by the engine.
const (
	FlagKey  = "sitekeep_migration_completed"
	LeaseKey = "sitekeep_migration_state"
)

// flagValue is the only flag value that means "migrated".
const flagValue = "true"

// DefaultLeaseTTL is how long a run may hold the lease before another run
// treats it as abandoned.
const DefaultLeaseTTL = 5 * time.Minute

// State is the position of this cache in the migration lifecycle.
type State string

const (
	StateNotMigrated State = "not_migrated"
	StateMigrating   State = "migrating"
	StateMigrated    State = "migrated"
)

func (s State) String() string { return string(s) }

// Lease marks a run in progress.
type Lease struct {
	State     State     `json:"state"`
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
}

// Expired reports whether the lease is older than ttl at now.
func (l *Lease) Expired(now time.Time, ttl time.Duration) bool {
	return !now.Before(l.StartedAt.Add(ttl))
}

func encodeLease(l Lease) (string, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return "", fmt.Errorf("encode lease: %w", err)
	}
	return string(data), nil
}

func decodeLease(raw string) (*Lease, error) {
	var l Lease
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		return nil, fmt.Errorf("decode lease: %w", err)
	}
	if l.State != StateMigrating || l.RunID == "" {
		return nil, fmt.Errorf("decode lease: unexpected contents %q", raw)
	}
	return &l, nil
}
