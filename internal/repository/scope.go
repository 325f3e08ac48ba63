package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/meridianpay/backoffice/internal/domain"
)

// ScopeRepo resolves caller identities to their merchant access scope.
type ScopeRepo struct {
	db *sql.DB
}

func NewScopeRepo(db *sql.DB) *ScopeRepo {
	return &ScopeRepo{db: db}
}

// ResolveAccessScope looks up the caller and its merchant grants. An
// unknown caller is ErrAccessDenied; a known caller with no grants gets
// a valid empty scope (which every query then short-circuits on).
func (r *ScopeRepo) ResolveAccessScope(ctx context.Context, callerID string) (domain.AccessScope, error) {
	var scope domain.AccessScope

	err := r.db.QueryRowContext(ctx,
		"SELECT customer_id, full_access FROM users WHERE id = ?", callerID,
	).Scan(&scope.CustomerID, &scope.FullAccess)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AccessScope{}, domain.ErrAccessDenied
	}
	if err != nil {
		return domain.AccessScope{}, fmt.Errorf("resolve scope: %w", err)
	}

	if scope.FullAccess {
		return scope, nil
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT merchant_id FROM user_merchants WHERE user_id = ? ORDER BY merchant_id", callerID,
	)
	if err != nil {
		return domain.AccessScope{}, fmt.Errorf("resolve merchant grants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return domain.AccessScope{}, fmt.Errorf("scan merchant grant: %w", err)
		}
		scope.MerchantIDs = append(scope.MerchantIDs, id)
	}
	if err := rows.Err(); err != nil {
		return domain.AccessScope{}, fmt.Errorf("resolve merchant grants: %w", err)
	}

	return scope, nil
}
