package drafts

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.Get(ctx, WizardContact, "u1")
	require.ErrorIs(t, err, ErrNotFound)

	saved, err := s.Save(ctx, Draft{Wizard: WizardContact, OwnerID: "u1", Step: 2, Data: map[string]any{"full_name": "Ana", "email": "ana@x.com"}})
	require.NoError(t, err)
	assert.False(t, saved.UpdatedAt.IsZero())

	// whole-record upsert: fields missing from the second save are gone
	_, err = s.Save(ctx, Draft{Wizard: WizardContact, OwnerID: "u1", Step: 3, Data: map[string]any{"full_name": "Ana Souza"}})
	require.NoError(t, err)

	got, err := s.Get(ctx, WizardContact, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Step)
	assert.Equal(t, map[string]any{"full_name": "Ana Souza"}, got.Data)

	_, err = s.Save(ctx, Draft{Wizard: WizardCompany, OwnerID: "u1", Data: map[string]any{"cnpj": "11222333000181"}})
	require.NoError(t, err)
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.Delete(ctx, WizardContact, "u1"))
	_, err = s.Get(ctx, WizardContact, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Save(ctx, Draft{Wizard: "boat", OwnerID: "u1"})
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	s.now = func() time.Time { return time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC) }
	exerciseStore(t, s)
}

func TestMemoryStore_CallerCannotMutateStoredData(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	data := map[string]any{"city": "Curitiba"}
	_, err := s.Save(ctx, Draft{Wizard: WizardVehicle, OwnerID: "u2", Data: data})
	require.NoError(t, err)

	data["city"] = "Londrina"
	got, err := s.Get(ctx, WizardVehicle, "u2")
	require.NoError(t, err)
	assert.Equal(t, "Curitiba", got.Data["city"])
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.Save(ctx, Draft{Wizard: WizardContact, OwnerID: "shared", Step: i})
			_, _ = s.Get(ctx, WizardContact, "shared")
		}(i)
	}
	wg.Wait()
	n, _ := s.Count(ctx)
	assert.Equal(t, 1, n)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, url, time.Minute)
	require.NoError(t, err)
	defer s.Close()

	const unrelated = "fleet-crm-test:keep"
	require.NoError(t, s.client.Set(ctx, unrelated, "1", time.Minute).Err())
	defer s.client.Del(ctx, unrelated)

	clearDrafts(t, s)
	exerciseStore(t, s)
	clearDrafts(t, s)

	// only draft keys are touched
	v, err := s.client.Get(ctx, unrelated).Result()
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

// clearDrafts removes the drafts:* keys and nothing else from the shared test database.
func clearDrafts(t *testing.T, s *RedisStore) {
	t.Helper()
	ctx := context.Background()
	iter := s.client.Scan(ctx, 0, "drafts:*", 100).Iterator()
	for iter.Next(ctx) {
		require.NoError(t, s.client.Del(ctx, iter.Val()).Err())
	}
	require.NoError(t, iter.Err())
}
