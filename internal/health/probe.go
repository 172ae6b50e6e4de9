package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Connectivity states.
const (
	StateOnline  = "online"
	StateOffline = "offline"
	StateUnknown = "unknown"
)

const (
	stateKey     = "health:db"
	stateTTL     = 2 * time.Minute
	probeTimeout = 3 * time.Second
)

// Status is the recorded outcome of the last probe.
type Status struct {
	State     string    `json:"state"`
	CheckedAt time.Time `json:"checked_at"`
	Detail    string    `json:"detail,omitempty"`
}

// Probe runs a count-only query against the database and keeps the outcome in
// redis so the API can report connectivity without touching postgres itself.
type Probe struct {
	pool   *pgxpool.Pool
	client *redis.Client
	logger *slog.Logger
}

// NewProbe constructs the connectivity probe.
func NewProbe(pool *pgxpool.Pool, client *redis.Client, logger *slog.Logger) *Probe {
	if logger == nil {
		logger = slog.Default()
	}
	return &Probe{pool: pool, client: client, logger: logger}
}

// Check probes the database with a short timeout and records the result. The
// query counts a small table rather than pinging so it exercises the same path
// reads use.
func (p *Probe) Check(ctx context.Context) Status {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	status := Status{State: StateOnline, CheckedAt: time.Now()}
	var n int
	if err := p.pool.QueryRow(probeCtx, "SELECT COUNT(*) FROM customers").Scan(&n); err != nil {
		status.State = StateOffline
		status.Detail = err.Error()
		p.logger.Warn("database probe failed", slog.Any("error", err))
	}

	if raw, err := json.Marshal(status); err == nil {
		if err := p.client.Set(ctx, stateKey, raw, stateTTL).Err(); err != nil {
			p.logger.Warn("probe state write failed", slog.Any("error", err))
		}
	}
	return status
}

// Last returns the most recently recorded probe outcome. A missing or expired
// key reads as unknown, which callers should treat as a fresh-probe trigger.
func (p *Probe) Last(ctx context.Context) Status {
	raw, err := p.client.Get(ctx, stateKey).Bytes()
	if err != nil {
		return Status{State: StateUnknown, CheckedAt: time.Now()}
	}
	var status Status
	if err := json.Unmarshal(raw, &status); err != nil {
		return Status{State: StateUnknown, CheckedAt: time.Now()}
	}
	return status
}
