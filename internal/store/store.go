package store

import "context"

// Transactor runs fn inside a single transaction. The transaction is carried on
// the context passed to fn, so any store method called with that context joins
// it. If fn returns an error every change made through the context is rolled back.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Stores groups the identity stores backed by the same database.
type Stores struct {
	Organizations OrganizationStore
	Users         UserStore
	AuditLogs     AuditLogStore
	Tx            Transactor
}
