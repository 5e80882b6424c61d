package service

import (
	"context"

	"github.com/spendwise-platform/internal/domain/user"
)

// subjectResolver maps the external authenticated subject to the local user.
// Shared by every service so the unauthorized/unknown-subject rules are
// identical across operations.
type subjectResolver struct {
	userRepo user.Repository
}

func (r *subjectResolver) resolve(ctx context.Context, subject string) (*user.User, error) {
	if subject == "" {
		return nil, user.ErrUnauthorized
	}
	return r.userRepo.GetByExternalID(ctx, subject)
}
