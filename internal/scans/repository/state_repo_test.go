package repository

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sentinel-red/sentinel-backend/internal/scans/domain"
	"github.com/sentinel-red/sentinel-backend/internal/scans/simulator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func sampleState() *domain.ScanState {
	return &domain.ScanState{
		ScanID:    "scan-1",
		ProjectID: "proj-1",
		Status:    domain.StatusRunning,
		Progress:  10,
		Logs:      []string{simulator.LogInitializing, simulator.LogLoading},
		StartedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 1, 0, 0, 5, 0, time.UTC),
	}
}

func TestStateRepository_SaveAndGet(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewStateRepository(client)
	ctx := context.Background()

	state := sampleState()
	require.NoError(t, repo.Save(ctx, state, state.Logs))
	require.NoError(t, repo.Save(ctx, state, []string{"Reconnaissance started..."}))

	got, err := repo.Get(ctx, "scan-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, got.Status)
	assert.Equal(t, 10, got.Progress)
	assert.Equal(t, []string{simulator.LogInitializing, simulator.LogLoading, "Reconnaissance started..."}, got.Logs)

	t.Run("snapshot key excludes logs and carries ttl", func(t *testing.T) {
		raw, err := mr.Get("scan:state:scan-1")
		require.NoError(t, err)
		assert.NotContains(t, raw, simulator.LogInitializing)
		assert.Greater(t, mr.TTL("scan:state:scan-1"), time.Duration(0))
		assert.Greater(t, mr.TTL("scan:logs:scan-1"), time.Duration(0))
	})
}

func TestStateRepository_GetMissing(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewStateRepository(client)

	_, err := repo.Get(context.Background(), "scan-missing")
	assert.ErrorIs(t, err, domain.ErrScanNotFound)

	logs, err := repo.Logs(context.Background(), "scan-missing")
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestStateRepository_Delete(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewStateRepository(client)
	ctx := context.Background()

	state := sampleState()
	require.NoError(t, repo.Save(ctx, state, state.Logs))
	require.NoError(t, repo.Delete(ctx, "scan-1"))

	assert.False(t, mr.Exists("scan:state:scan-1"))
	assert.False(t, mr.Exists("scan:logs:scan-1"))

	assert.ErrorIs(t, repo.Delete(ctx, "scan-1"), domain.ErrScanNotFound)
}

func TestStateRepository_HandleScanEventPublishes(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewStateRepository(client)
	ctx := context.Background()

	sub := client.Subscribe(ctx, "scan:events:scan-1")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	state := sampleState()
	repo.HandleScanEvent(ctx, simulator.Event{Type: simulator.EventStarted, Scan: state, NewLogs: state.Logs})

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var ev ScanEvent
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
	assert.Equal(t, simulator.EventStarted, ev.Type)
	assert.Equal(t, "scan-1", ev.ScanID)
	assert.Equal(t, state.Logs, ev.NewLogs)

	got, err := repo.Get(ctx, "scan-1")
	require.NoError(t, err)
	assert.Equal(t, state.Logs, got.Logs)
}

func TestStateRepository_HandleScanEventSurvivesRedisErrors(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewStateRepository(client)
	ctx := context.Background()

	state := sampleState()
	mr.SetError("LOADING redis is loading the dataset in memory")
	repo.HandleScanEvent(ctx, simulator.Event{Type: simulator.EventStarted, Scan: state, NewLogs: state.Logs})
	mr.SetError("")

	_, err := repo.Get(ctx, "scan-1")
	assert.ErrorIs(t, err, domain.ErrScanNotFound, "failed write leaves nothing behind")

	state.Progress = 15
	repo.HandleScanEvent(ctx, simulator.Event{Type: simulator.EventProgress, Scan: state})
	got, err := repo.Get(ctx, "scan-1")
	require.NoError(t, err)
	assert.Equal(t, 15, got.Progress)
}

// stalledRedis accepts connections and never answers.
func stalledRedis(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var mu sync.Mutex
	var conns []net.Conn
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			c.Close()
		}
	})
	return ln.Addr().String()
}

func TestStateRepository_HandleScanEventIsBounded(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:                  stalledRedis(t),
		ContextTimeoutEnabled: true,
		MaxRetries:            -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	repo := NewStateRepository(client)
	repo.writeTimeout = 50 * time.Millisecond

	state := sampleState()
	done := make(chan struct{})
	start := time.Now()
	go func() {
		repo.HandleScanEvent(context.Background(), simulator.Event{Type: simulator.EventStarted, Scan: state, NewLogs: state.Logs})
		close(done)
	}()

	select {
	case <-done:
		assert.Less(t, time.Since(start), 2*time.Second)
	case <-time.After(5 * time.Second):
		t.Fatal("mirror write did not honour its timeout")
	}
}
