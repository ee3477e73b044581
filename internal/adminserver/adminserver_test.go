package adminserver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/beaversched/corosched/pkg/coro"
)

func TestStatsReportsWorkerCount(t *testing.T) {
	sched := coro.New(3)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = sched.Shutdown(ctx)
	}()

	srv := New(sched, nil)
	st, err := srv.Stats(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)

	fields := st.GetFields()
	assert.Equal(t, float64(3), fields["worker_count"].GetNumberValue())
	assert.GreaterOrEqual(t, fields["free_workers"].GetNumberValue(), float64(0))
	assert.GreaterOrEqual(t, fields["queue_depth"].GetNumberValue(), float64(0))
}

func TestShutdownStopsScheduler(t *testing.T) {
	sched := coro.New(1)
	srv := New(sched, nil)

	_, err := srv.Shutdown(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		return sched.Shutdown(ctx) == nil
	}, 2*time.Second, 10*time.Millisecond)
}
