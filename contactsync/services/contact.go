package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/natserract/forcekit/contactsync/schema/postgres"
	"github.com/natserract/forcekit/pkg/entity"
	"go.uber.org/zap"
)

// ContactFields is the column list the Contact entity type is defined with.
var ContactFields = []string{"Id", "FirstName", "LastName", "Email", "Phone", "AccountId"}

// ContactService handles contact persistence operations
type ContactService struct {
	db     *postgres.DB
	logger *zap.Logger
}

// NewContactService creates a new contact service
func NewContactService(db *postgres.DB, logger *zap.Logger) *ContactService {
	return &ContactService{
		db:     db,
		logger: logger,
	}
}

// SaveContact saves or updates a contact in the database, stamping it with the
// sync run that fetched it.
func (c *ContactService) SaveContact(ctx context.Context, runID uuid.UUID, rec *entity.Record) error {
	id := rec.ID()
	if id == "" {
		return fmt.Errorf("contact record has no Id")
	}

	_, err := c.db.Pool().Exec(ctx, `
		INSERT INTO contacts (id, first_name, last_name, email, phone, account_id, last_sync_run, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (id) DO UPDATE SET
			first_name    = EXCLUDED.first_name,
			last_name     = EXCLUDED.last_name,
			email         = EXCLUDED.email,
			phone         = EXCLUDED.phone,
			account_id    = EXCLUDED.account_id,
			last_sync_run = EXCLUDED.last_sync_run,
			synced_at     = now()`,
		id,
		rec.GetString("FirstName"),
		rec.GetString("LastName"),
		rec.GetString("Email"),
		rec.GetString("Phone"),
		rec.GetString("AccountId"),
		runID,
	)
	if err != nil {
		c.logger.Error("Failed to save contact",
			zap.String("contact_id", id),
			zap.Error(err))
		return fmt.Errorf("failed to save contact %s: %w", id, err)
	}

	c.logger.Debug("Saved contact", zap.String("contact_id", id))
	return nil
}

// CountContacts returns the number of contacts currently stored.
func (c *ContactService) CountContacts(ctx context.Context) (int64, error) {
	var count int64
	if err := c.db.Pool().QueryRow(ctx, `SELECT count(*) FROM contacts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count contacts: %w", err)
	}
	return count, nil
}
