package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"balanceboard/internal/artifact"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(user string, at time.Time) artifact.DecisionRecord {
	return artifact.DecisionRecord{
		ID:             uuid.NewString(),
		SessionID:      uuid.NewString(),
		UserID:         user,
		Problem:        "Quit or stay?",
		ChosenDecision: "Stay at job",
		ChosenOutcome:  "Stable but bored.",
		Score:          180,
		QueryCount:     1,
		Tracks: []artifact.TrackSummary{{
			DecisionLabel: "Stay at job",
			Questions:     artifact.SWOT{Strength: "s?", Weakness: "w?", Opportunity: "o?", Threat: "t?"},
			Answers:       artifact.SWOT{Strength: "pay", Weakness: "boredom", Opportunity: "promotion", Threat: "layoffs"},
			Outcome:       &artifact.Simulation{DecisionID: "Stay at job", PredictedOutcome: "Stable but bored.", Probability: 75, KeyRisks: []string{"stagnation"}},
		}},
		CreatedAt: at,
	}
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000).UTC()

	older := sampleRecord("u1", base)
	newer := sampleRecord("u1", base.Add(time.Hour))
	other := sampleRecord("u2", base)
	for _, r := range []artifact.DecisionRecord{older, newer, other} {
		require.NoError(t, s.Save(ctx, r))
	}

	got, err := s.Get(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, older.ChosenDecision, got.ChosenDecision)
	assert.True(t, older.CreatedAt.Equal(got.CreatedAt))
	require.Len(t, got.Tracks, 1)
	assert.Equal(t, 75, got.Tracks[0].Outcome.Probability)
	assert.Equal(t, "layoffs", got.Tracks[0].Answers.Threat)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := s.ListByUser(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)

	list, err = s.ListByUser(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.ListByUser(ctx, " ", 5)
	assert.Error(t, err)
	assert.Error(t, s.Save(ctx, artifact.DecisionRecord{}))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "history", "decisions.db"))
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)

	rec := sampleRecord("u3", time.Now())
	require.NoError(t, s.Save(context.Background(), rec))
	rec.Score = 0
	require.NoError(t, s.Save(context.Background(), rec))
	got, err := s.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Score)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	s, err := OpenPostgres(dsn)
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestS3Archive(t *testing.T) {
	endpoint := os.Getenv("TEST_S3_ENDPOINT")
	if endpoint == "" {
		t.Skip("TEST_S3_ENDPOINT not set")
	}
	a, err := NewS3Archive(NewMemoryStore(), S3Config{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("TEST_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("TEST_S3_SECRET_KEY"),
		Bucket:    "balanceboard-test",
	})
	require.NoError(t, err)
	exerciseStore(t, a)

	rec := sampleRecord("u9", time.Now().UTC())
	require.NoError(t, a.Save(context.Background(), rec))
	got, err := a.Report(context.Background(), "u9", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ChosenOutcome, got.ChosenOutcome)
}

func TestNewS3Archive_Validation(t *testing.T) {
	_, err := NewS3Archive(nil, S3Config{})
	assert.Error(t, err)
	_, err = NewS3Archive(NewMemoryStore(), S3Config{Endpoint: "localhost:9000"})
	assert.ErrorContains(t, err, "access key")
	_, err = NewS3Archive(NewMemoryStore(), S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	assert.ErrorContains(t, err, "bucket")
}

func TestBindRewritesPlaceholders(t *testing.T) {
	s := &SQLStore{dialect: dialectSQLite}
	assert.Equal(t, "a = ? AND b = ? LIMIT ?", s.bind("a = $1 AND b = $2 LIMIT $10"))
	assert.Equal(t, "cost $ 5", s.bind("cost $ 5"))
	pg := &SQLStore{dialect: dialectPostgres}
	assert.Equal(t, "a = $1", pg.bind("a = $1"))
}

func TestReportKey(t *testing.T) {
	assert.Equal(t, "anonymous/r1.json", reportKey("", "r1"))
	assert.Equal(t, "u1/r1.json", reportKey("/u1/", "r1"))
}
