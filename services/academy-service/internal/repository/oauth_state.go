package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/model"
)

// ErrKeyNotFound is returned when a one-time value is missing, expired or already consumed.
var ErrKeyNotFound = errors.New("key not found")

const (
	oauthStatePrefix = "zacademy:oauth:state:"
	oauthGrantPrefix = "zacademy:oauth:grant:"
)

// OAuthStateRepository keeps the short-lived values of the federated sign-in flow. Every
// value can be consumed exactly once.
type OAuthStateRepository interface {
	SaveFlowState(ctx context.Context, state string, flow model.OAuthFlowState, ttl time.Duration) error
	ConsumeFlowState(ctx context.Context, state string) (*model.OAuthFlowState, error)
	SaveSessionGrant(ctx context.Context, code string, grant model.SessionGrant, ttl time.Duration) error
	ConsumeSessionGrant(ctx context.Context, code string) (*model.SessionGrant, error)
}

type oauthStateRedisRepository struct {
	rdb *redis.Client
}

func NewOAuthStateRedisRepository(rdb *redis.Client) OAuthStateRepository {
	return &oauthStateRedisRepository{rdb: rdb}
}

func (r *oauthStateRedisRepository) SaveFlowState(
	ctx context.Context,
	state string,
	flow model.OAuthFlowState,
	ttl time.Duration,
) error {
	return r.set(ctx, oauthStatePrefix+state, flow, ttl)
}

func (r *oauthStateRedisRepository) ConsumeFlowState(ctx context.Context, state string) (*model.OAuthFlowState, error) {
	var flow model.OAuthFlowState
	if err := r.getDel(ctx, oauthStatePrefix+state, &flow); err != nil {
		return nil, err
	}
	return &flow, nil
}

func (r *oauthStateRedisRepository) SaveSessionGrant(
	ctx context.Context,
	code string,
	grant model.SessionGrant,
	ttl time.Duration,
) error {
	return r.set(ctx, oauthGrantPrefix+code, grant, ttl)
}

func (r *oauthStateRedisRepository) ConsumeSessionGrant(ctx context.Context, code string) (*model.SessionGrant, error) {
	var grant model.SessionGrant
	if err := r.getDel(ctx, oauthGrantPrefix+code, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

func (r *oauthStateRedisRepository) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	return r.rdb.Set(ctx, key, data, ttl).Err()
}

func (r *oauthStateRedisRepository) getDel(ctx context.Context, key string, dest any) error {
	data, err := r.rdb.GetDel(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrKeyNotFound
		}
		return err
	}

	return json.Unmarshal(data, dest)
}
