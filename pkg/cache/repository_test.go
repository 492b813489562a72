package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
)

func TestRepositoryWithoutClient(t *testing.T) {
	repo := NewRepository(nil, nil)
	ctx := context.Background()

	assert.False(t, repo.Available())
	assert.NoError(t, repo.Set(ctx, "report:4", map[string]int{"a": 1}, time.Minute))

	var dest map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "report:4", &dest), appErrors.ErrCacheMiss)

	n, err := repo.DeleteByPattern(ctx, "report:*")
	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
}

func TestNilRepositoryIsUnavailable(t *testing.T) {
	var repo *Repository
	assert.False(t, repo.Available())
}
