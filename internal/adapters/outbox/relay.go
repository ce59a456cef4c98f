// Package outbox publishes rows written to outbox_events by the record store.
package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/lib/pq"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/config"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/ports"
)

const (
	// PostgreSQL NOTIFY/LISTEN configuration
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute
	outboxChannelName            = "outbox_channel"

	// Event processing timeouts
	eventProcessTimeout     = 30 * time.Second
	batchProcessTimeout     = 60 * time.Second
	periodicProcessInterval = 90 * time.Second

	// Health check configuration
	healthCheckStaleThreshold = 5 * time.Minute

	// Batch processing limits
	maxEventsPerBatch = 100
)

const (
	selectEventByIDQuery = `SELECT id, event_type, payload FROM outbox_events
		WHERE id = $1 AND processed_at IS NULL FOR UPDATE SKIP LOCKED`
	selectPendingEventsQuery = `SELECT id, event_type, payload FROM outbox_events
		WHERE processed_at IS NULL ORDER BY created_at LIMIT $1 FOR UPDATE SKIP LOCKED`
	markProcessedQuery = `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`
)

// Relay listens for PostgreSQL NOTIFY signals on outbox_channel and publishes
// status change events to the message broker.
type Relay struct {
	db            *sql.DB
	publisher     ports.LifecycleEventPublisher
	listener      *pq.Listener
	dbURL         string
	dbCB          *gobreaker.CircuitBreaker
	logger        *zap.Logger
	lastProcessed atomic.Int64
	healthy       atomic.Bool
}

func NewRelay(db *sql.DB, dbURL string, publisher ports.LifecycleEventPublisher, logger *zap.Logger) *Relay {
	logger = logger.Named("relay")
	r := &Relay{
		db:        db,
		dbURL:     dbURL,
		publisher: publisher,
		dbCB:      config.NewCircuitBreaker("Relay-PostgreSQL", logger),
		logger:    logger,
	}
	r.markProcessed()
	r.healthy.Store(true)
	return r
}

func (r *Relay) markProcessed() {
	r.lastProcessed.Store(time.Now().UnixNano())
}

// IsHealthy reports whether the relay process is alive. An open circuit is
// degraded but recoverable, so it does not fail liveness.
func (r *Relay) IsHealthy() bool {
	return r.healthy.Load()
}

// IsReady reports whether the relay can process events.
func (r *Relay) IsReady() bool {
	if r.dbCB.State() == gobreaker.StateOpen {
		return false
	}
	if time.Since(time.Unix(0, r.lastProcessed.Load())) > healthCheckStaleThreshold {
		return false
	}
	return r.healthy.Load()
}

// Start listens for outbox notifications until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			r.logger.Warn("listener error", zap.Error(err))
		}
	}

	r.listener = pq.NewListener(r.dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval, reportProblem)
	defer r.listener.Close()

	if err := r.listener.Listen(outboxChannelName); err != nil {
		return err
	}

	r.logger.Info("listening for notifications", zap.String("channel", outboxChannelName))

	// Catch up on anything written while the relay was down
	if err := r.ProcessPending(ctx); err != nil {
		r.logger.Error("startup backlog failed", zap.Error(err))
	}

	ticker := time.NewTicker(periodicProcessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("shutting down")
			return ctx.Err()

		case notification := <-r.listener.Notify:
			if notification == nil {
				r.logger.Warn("nil notification, listener reconnecting")
				r.healthy.Store(false)
				continue
			}

			if err := r.ProcessEvent(ctx, notification.Extra); err != nil {
				r.logger.Error("event processing failed", zap.String("event_id", notification.Extra), zap.Error(err))
			} else {
				r.markProcessed()
				r.healthy.Store(true)
			}

		case <-ticker.C:
			go r.listener.Ping()

			// Safety net for missed notifications
			if err := r.ProcessPending(ctx); err != nil {
				r.logger.Error("periodic processing failed", zap.Error(err))
			} else {
				r.markProcessed()
			}
		}
	}
}

// ProcessEvent publishes and marks a single outbox row. Rows already
// processed or locked by another relay are skipped.
func (r *Relay) ProcessEvent(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, eventProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		var rec record
		err = tx.QueryRowContext(ctx, selectEventByIDQuery, eventID).Scan(&rec.ID, &rec.EventType, &rec.Payload)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		if err := r.publish(ctx, rec); err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, markProcessedQuery, rec.ID); err != nil {
			return nil, err
		}
		return nil, tx.Commit()
	})
	return err
}

// ProcessPending publishes up to maxEventsPerBatch unprocessed rows in
// creation order. A row that fails to publish stays pending for the next run.
func (r *Relay) ProcessPending(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, batchProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		rows, err := tx.QueryContext(ctx, selectPendingEventsQuery, maxEventsPerBatch)
		if err != nil {
			return nil, err
		}

		var records []record
		for rows.Next() {
			var rec record
			if err := rows.Scan(&rec.ID, &rec.EventType, &rec.Payload); err != nil {
				rows.Close()
				return nil, err
			}
			records = append(records, rec)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}

		for _, rec := range records {
			if err := r.publish(ctx, rec); err != nil {
				r.logger.Warn("publish failed", zap.String("event_id", rec.ID), zap.Error(err))
				continue
			}
			if _, err := tx.ExecContext(ctx, markProcessedQuery, rec.ID); err != nil {
				return nil, err
			}
			r.logger.Debug("processed event", zap.String("event_id", rec.ID))
		}

		return nil, tx.Commit()
	})
	return err
}

type record struct {
	ID        string
	EventType string
	Payload   []byte
}

// publish sends a status change row. Unknown types and undecodable payloads
// are logged and treated as done so they are not retried forever.
func (r *Relay) publish(ctx context.Context, rec record) error {
	switch rec.EventType {
	case ports.DonorStatusChanged, ports.RequestStatusChanged:
	default:
		r.logger.Warn("skipping unknown event type", zap.String("event_id", rec.ID), zap.String("event_type", rec.EventType))
		return nil
	}

	var evt ports.StatusChangedEvent
	if err := json.Unmarshal(rec.Payload, &evt); err != nil {
		r.logger.Error("invalid payload", zap.String("event_id", rec.ID), zap.Error(err))
		return nil
	}
	return r.publisher.PublishStatusChanged(ctx, evt)
}
