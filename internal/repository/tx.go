package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles every repository bound to the same database handle.
// Inside a transaction the bundle is rebound to the transaction handle so that
// cross-entity mutations commit or roll back as one unit.
type Repositories struct {
	Users         UserRepository
	Activities    ActivityRepository
	Submissions   SubmissionRepository
	Ledger        LedgerRepository
	Audit         AuditLogRepository
	WebhookEvents WebhookEventRepository
	TagGrants     TagGrantRepository
	Badges        BadgeRepository
}

// NewRepositories constructs the repository bundle for a database handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(db),
		Activities:    NewActivityRepository(db),
		Submissions:   NewSubmissionRepository(db),
		Ledger:        NewLedgerRepository(db),
		Audit:         NewAuditLogRepository(db),
		WebhookEvents: NewWebhookEventRepository(db),
		TagGrants:     NewTagGrantRepository(db),
		Badges:        NewBadgeRepository(db),
	}
}

// TxManager runs a function against a transaction-bound repository bundle.
type TxManager interface {
	InTx(ctx context.Context, fn func(r *Repositories) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager wraps the database handle in a transaction runner.
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) InTx(ctx context.Context, fn func(r *Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
