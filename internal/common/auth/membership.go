// internal/common/auth/membership.go
package auth

import (
	"context"
	"database/sql"

	apperrors "startup-scoring/internal/common/errors"
)

const membershipQuery = `
	SELECT EXISTS (
		SELECT 1 FROM startup_members WHERE startup_id = $1 AND user_id = $2
	)`

// MembershipChecker answers whether a user belongs to a startup.
type MembershipChecker struct {
	db *sql.DB
}

func NewMembershipChecker(db *sql.DB) *MembershipChecker {
	return &MembershipChecker{db: db}
}

func (m *MembershipChecker) IsMember(ctx context.Context, startupID, userID string) (bool, error) {
	var exists bool
	if err := m.db.QueryRowContext(ctx, membershipQuery, startupID, userID).Scan(&exists); err != nil {
		return false, apperrors.NewQueryExecutionFailedError("startup_membership", err)
	}
	return exists, nil
}

// Authorize returns a FORBIDDEN error unless the principal may act on the startup.
func (m *MembershipChecker) Authorize(ctx context.Context, p *Principal, startupID string) error {
	if p != nil && p.Service {
		return nil
	}
	if p == nil {
		return apperrors.NewAuthenticationError("no principal")
	}
	ok, err := m.IsMember(ctx, startupID, p.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewForbiddenError("user is not a member of startup " + startupID)
	}
	return nil
}
