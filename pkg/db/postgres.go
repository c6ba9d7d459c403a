package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jpillora/backoff"
	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq"
)

// Connect opens a Postgres connection and pings it, retrying with
// exponential backoff while the database comes up.
func Connect(url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}

	b := &backoff.Backoff{
		Min:    250 * time.Millisecond,
		Max:    5 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	var pingErr error
	for attempt := 0; attempt < 8; attempt++ {
		pingErr = db.Ping()
		if pingErr == nil {
			return db, nil
		}
		d := b.Duration()
		log.Warn().Err(pingErr).Dur("retry_in", d).Msg("database ping failed")
		time.Sleep(d)
	}

	return nil, fmt.Errorf("failed to ping database: %w", pingErr)
}
