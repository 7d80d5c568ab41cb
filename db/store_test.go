package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/u16-io/FindPangram/model"
	"go.uber.org/zap"
)

// exerciseStore checks the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))

	ps, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ps)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	first := &model.Pangram{ID: uuid.NewString(), Line1: "a", Line2: "b", Line3: "c", CreatedAt: base}
	second := &model.Pangram{ID: uuid.NewString(), Line1: "d", Line2: "e", Line3: "f", CreatedAt: base.Add(time.Minute)}
	require.NoError(t, s.Create(ctx, first))
	require.NoError(t, s.Create(ctx, second))

	ps, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, second.ID, ps[0].ID)
	assert.Equal(t, first.ID, ps[1].ID)
	assert.Equal(t, "d", ps[0].Line1)
	assert.Equal(t, "f", ps[0].Line3)
	assert.True(t, ps[0].CreatedAt.Equal(second.CreatedAt))

	// same timestamp: the later insert still comes first
	third := &model.Pangram{ID: uuid.NewString(), Line1: "g", Line2: "h", Line3: "i", CreatedAt: second.CreatedAt}
	require.NoError(t, s.Create(ctx, third))

	ps, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 3)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, []string{ps[0].ID, ps[1].ID, ps[2].ID})
}

func TestNextSeq_Increases(t *testing.T) {
	prev := nextSeq()
	for i := 0; i < 1000; i++ {
		next := nextSeq()
		require.Greater(t, next, prev)
		prev = next
	}
}

func TestGormStore(t *testing.T) {
	s, err := OpenSQLite(":memory:", zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestGormStore_File(t *testing.T) {
	path := t.TempDir() + "/pangrams.db"
	s, err := OpenSQLite(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Create(context.Background(), &model.Pangram{
		ID: uuid.NewString(), Line1: "x", Line2: "y", Line3: "z", CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()
	ps, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, ps, 1)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	database := "findpangram_test_" + uuid.NewString()[:8]

	s, err := OpenMongo(ctx, uri, database, zap.NewNop())
	require.NoError(t, err)
	defer func() {
		s.client.Database(database).Drop(ctx)
		s.Close()
	}()

	exerciseStore(t, s)
}
