package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type cachedDoctor struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func TestRedisIntegration(t *testing.T) {
	t.Parallel()

	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.PortEndpoint(ctx, "6379/tcp", "redis")
	require.NoError(t, err)

	client, err := Open(ctx, endpoint)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	c := NewRedis[cachedDoctor](client, "doctors", time.Minute)

	_, err = c.Get(ctx, "dr-john-smith")
	require.ErrorIs(t, err, ErrMiss)

	want := cachedDoctor{Name: "Dr. John Smith", Slug: "dr-john-smith"}
	require.NoError(t, c.Set(ctx, "dr-john-smith", want, 0))

	got, err := c.Get(ctx, "dr-john-smith")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	ttl, err := client.TTL(ctx, "doctors:dr-john-smith").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Delete(ctx, "dr-john-smith"))
	_, err = c.Get(ctx, "dr-john-smith")
	assert.ErrorIs(t, err, ErrMiss)
}
