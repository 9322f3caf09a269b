package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/model"
)

func newTestOAuthStateRepository(t *testing.T) (OAuthStateRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewOAuthStateRedisRepository(rdb), mr
}

func TestOAuthStateRepository_FlowStateIsSingleUse(t *testing.T) {
	repo, _ := newTestOAuthStateRepository(t)
	ctx := context.Background()

	flow := model.OAuthFlowState{Intent: model.IntentSignupInstructor, CodeVerifier: "verifier"}
	require.NoError(t, repo.SaveFlowState(ctx, "state-1", flow, time.Minute))

	got, err := repo.ConsumeFlowState(ctx, "state-1")
	require.NoError(t, err)
	assert.Equal(t, flow, *got)

	_, err = repo.ConsumeFlowState(ctx, "state-1")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestOAuthStateRepository_FlowStateExpires(t *testing.T) {
	repo, mr := newTestOAuthStateRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveFlowState(ctx, "state-2", model.OAuthFlowState{Intent: model.IntentLogin}, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := repo.ConsumeFlowState(ctx, "state-2")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestOAuthStateRepository_SessionGrant(t *testing.T) {
	repo, mr := newTestOAuthStateRepository(t)
	ctx := context.Background()

	grant := model.SessionGrant{UserID: "64b7f0c2a1b2c3d4e5f60718", Role: model.RoleStudent}
	require.NoError(t, repo.SaveSessionGrant(ctx, "code-1", grant, 30*time.Second))
	assert.Equal(t, 30*time.Second, mr.TTL(oauthGrantPrefix+"code-1"))

	got, err := repo.ConsumeSessionGrant(ctx, "code-1")
	require.NoError(t, err)
	assert.Equal(t, grant, *got)

	_, err = repo.ConsumeSessionGrant(ctx, "code-1")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	_, err = repo.ConsumeSessionGrant(ctx, "unknown")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
