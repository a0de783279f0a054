package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/natserract/forcekit/contactsync/schema/postgres"
	"github.com/natserract/forcekit/pkg/entity"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// SyncMetrics tracks the overall sync operation metrics
type SyncMetrics struct {
	RunID             uuid.UUID
	ContactsSucceeded int
	ContactsFailed    int
	mu                sync.Mutex
}

// AddContactSuccess increments the contacts succeeded count
func (m *SyncMetrics) AddContactSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ContactsSucceeded++
}

// AddContactFailure increments the contacts failed count
func (m *SyncMetrics) AddContactFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ContactsFailed++
}

// Totals returns the succeeded and failed counts.
func (m *SyncMetrics) Totals() (succeeded, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ContactsSucceeded, m.ContactsFailed
}

// SyncService pulls contacts from the platform through the generated entity
// type and mirrors them into Postgres, tracking each invocation as a sync run.
type SyncService struct {
	contacts   *entity.Type
	contactSvc *ContactService
	db         *postgres.DB
	logger     *zap.Logger
}

// NewSyncService creates a new sync service
func NewSyncService(contacts *entity.Type, contactSvc *ContactService, db *postgres.DB, logger *zap.Logger) *SyncService {
	return &SyncService{
		contacts:   contacts,
		contactSvc: contactSvc,
		db:         db,
		logger:     logger,
	}
}

// SyncAll fetches every contact matching the entity type's filter and upserts
// them concurrently. Individual save failures are counted, not fatal.
func (s *SyncService) SyncAll(ctx context.Context) (*SyncMetrics, error) {
	startTime := time.Now()
	metrics := &SyncMetrics{RunID: uuid.New()}

	s.logger.Info("Starting contact sync", zap.String("run_id", metrics.RunID.String()))

	if err := s.beginRun(ctx, metrics.RunID, startTime); err != nil {
		return metrics, err
	}

	records, err := s.contacts.Query(ctx)
	if err != nil {
		return metrics, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	s.logger.Info("Fetched contacts", zap.Int("count", len(records)))

	savePool := pool.New().WithMaxGoroutines(10)
	for _, rec := range records {
		rec := rec // capture loop variable
		savePool.Go(func() {
			if err := s.contactSvc.SaveContact(ctx, metrics.RunID, rec); err != nil {
				metrics.AddContactFailure()
				s.logger.Error("Failed to save contact",
					zap.String("contact_id", rec.ID()),
					zap.Error(err))
				return
			}
			metrics.AddContactSuccess()
		})
	}
	savePool.Wait()

	if err := s.finishRun(ctx, metrics); err != nil {
		return metrics, err
	}

	succeeded, failed := metrics.Totals()
	s.logger.Info("Completed contact sync",
		zap.String("run_id", metrics.RunID.String()),
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed))

	return metrics, nil
}

func (s *SyncService) beginRun(ctx context.Context, runID uuid.UUID, startedAt time.Time) error {
	_, err := s.db.Pool().Exec(ctx,
		`INSERT INTO sync_runs (id, started_at) VALUES ($1, $2)`,
		runID, startedAt)
	if err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}
	return nil
}

func (s *SyncService) finishRun(ctx context.Context, metrics *SyncMetrics) error {
	succeeded, failed := metrics.Totals()
	_, err := s.db.Pool().Exec(ctx,
		`UPDATE sync_runs SET finished_at = now(), succeeded = $2, failed = $3 WHERE id = $1`,
		metrics.RunID, succeeded, failed)
	if err != nil {
		return fmt.Errorf("failed to finalize sync run: %w", err)
	}
	return nil
}
