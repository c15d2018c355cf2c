package profile

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"balanceboard/internal/artifact"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	assert.Nil(t, merge(nil))
	assert.Nil(t, merge([]string{" ", ""}))

	p := merge([]string{"Nurse.", "  ", "Two kids and a mortgage."})
	require.NotNil(t, p)
	assert.Equal(t, "Nurse.\n\nTwo kids and a mortgage.", p.OccupationOrBio)
	assert.Equal(t, artifact.RiskMedium, p.RiskTolerance)
}

func TestMemoryProvider(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryProvider()
	p, err := m.FetchContext(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, p)

	require.NoError(t, m.AddChunk(ctx, "u1", "Software engineer"))
	require.NoError(t, m.AddChunk(ctx, "u1", "Hates commuting"))
	p, err = m.FetchContext(ctx, " u1 ")
	require.NoError(t, err)
	assert.Equal(t, "Software engineer\n\nHates commuting", p.OccupationOrBio)
}

type countingProvider struct {
	calls int
	p     *artifact.PersonalizationContext
	err   error
}

func (c *countingProvider) FetchContext(context.Context, string) (*artifact.PersonalizationContext, error) {
	c.calls++
	return c.p, c.err
}

func TestCachedProvider(t *testing.T) {
	ctx := context.Background()
	inner := &countingProvider{p: &artifact.PersonalizationContext{OccupationOrBio: "bio"}}
	c, err := NewCachedProvider(inner, 2)
	require.NoError(t, err)

	for range 3 {
		p, err := c.FetchContext(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "bio", p.OccupationOrBio)
	}
	assert.Equal(t, 1, inner.calls)

	c.Invalidate("u1")
	_, _ = c.FetchContext(ctx, "u1")
	assert.Equal(t, 2, inner.calls)

	p, err := c.FetchContext(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, 2, inner.calls)

	failing := &countingProvider{err: errors.New("db down")}
	c, err = NewCachedProvider(failing, 0)
	require.NoError(t, err)
	_, err = c.FetchContext(ctx, "u1")
	assert.Error(t, err)
	_, err = c.FetchContext(ctx, "u1")
	assert.Error(t, err)
	assert.Equal(t, 2, failing.calls)
}

func TestPostgresProvider(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	p := NewPostgresProvider(db)
	user := uuid.NewString()
	require.NoError(t, p.AddChunk(ctx, user, "Nurse"))
	require.NoError(t, p.AddChunk(ctx, user, "Saving for a house"))

	got, err := p.FetchContext(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "Nurse\n\nSaving for a house", got.OccupationOrBio)

	got, err = p.FetchContext(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, got)
}
