package workers

import (
	"bank-lab/domain"
	"bank-lab/mocks"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixedDepth int

func (f fixedDepth) Len() int { return int(f) }

func TestHeartbeatWorker_Beat(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIRegistry(ctrl)
	registry.EXPECT().Stats().Return(domain.ConnectionStats{TotalConnections: 3, UsersConnected: 2})

	worker := NewHeartbeatWorker(logs.GetLoggerFromLevel(slog.LevelDebug), registry, fixedDepth(4), time.Second)
	beat := worker.beat()

	req.Equal(3, beat.Connections.TotalConnections)
	req.Equal(2, beat.Connections.UsersConnected)
	req.Equal(4, beat.Pending)
	req.NotNil(beat.Process)
}

func TestHeartbeatWorker_Stops_On_Cancel(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIRegistry(ctrl)
	registry.EXPECT().Stats().Return(domain.ConnectionStats{}).AnyTimes()

	worker := NewHeartbeatWorker(logs.GetLoggerFromLevel(slog.LevelDebug), registry, fixedDepth(0), 5*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	req.ErrorIs(worker.Run(ctx), context.DeadlineExceeded)
}
