package drug

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=drug

// Repository defines the contract for drug data storage.
type Repository interface {
	// List returns drugs matching q ordered by launch date, newest first.
	List(ctx context.Context, q Query) ([]Drug, error)
	// Count returns the number of drugs matching q's filter, ignoring its window.
	Count(ctx context.Context, q Query) (int, error)
	GetByCode(ctx context.Context, code string) (Drug, error)
	// Replace deletes every drug and inserts drugs atomically, returning the inserted count.
	Replace(ctx context.Context, drugs []Drug) (int, error)
}

// SeedObserver is notified after every reseed attempt.
type SeedObserver interface {
	ObserveSeed(count int, err error)
}
