package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianpay/backoffice/internal/domain"
)

func TestResolveAccessScopeUnknownCaller(t *testing.T) {
	db := newTestDB(t)
	loadFixture(t, db, baseFixture())

	_, err := NewScopeRepo(db).ResolveAccessScope(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestResolveAccessScopeFullAccess(t *testing.T) {
	db := newTestDB(t)
	loadFixture(t, db, baseFixture())

	scope, err := NewScopeRepo(db).ResolveAccessScope(context.Background(), "u-admin")
	require.NoError(t, err)
	assert.True(t, scope.FullAccess)
	assert.Equal(t, "cust-1", scope.CustomerID)
	assert.Empty(t, scope.MerchantIDs)
	assert.False(t, scope.Empty())
}

func TestResolveAccessScopeGrantedMerchants(t *testing.T) {
	db := newTestDB(t)
	loadFixture(t, db, baseFixture())

	scope, err := NewScopeRepo(db).ResolveAccessScope(context.Background(), "u-acme")
	require.NoError(t, err)
	assert.False(t, scope.FullAccess)
	assert.Equal(t, []string{"m-1"}, scope.MerchantIDs)
}

func TestResolveAccessScopeNoGrantsIsEmptyNotError(t *testing.T) {
	db := newTestDB(t)
	loadFixture(t, db, baseFixture())

	scope, err := NewScopeRepo(db).ResolveAccessScope(context.Background(), "u-none")
	require.NoError(t, err)
	assert.True(t, scope.Empty())
}
