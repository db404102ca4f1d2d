package contact

import (
	"context"

	"wc-unleashed-sync/internal/domain"
)

// Repository is the append-only contact cache keyed by email.
type Repository interface {
	// Insert returns domain.ErrAlreadyExists when the email is already cached.
	Insert(ctx context.Context, c domain.Contact) error
	// Find returns domain.ErrNotFound when the email is not cached.
	Find(ctx context.Context, email string) (*domain.Contact, error)
}
