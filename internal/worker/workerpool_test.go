package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/juancollazo-ch/monoparts-service/internal/events"
	"github.com/juancollazo-ch/monoparts-service/internal/logging"
	"github.com/juancollazo-ch/monoparts-service/internal/models"
)

type chanSink struct {
	events.Nop
	got   chan string
	panic bool
}

func (c *chanSink) CallbackValidated(ctx context.Context, info models.OrderStateInfo) {
	if c.panic {
		panic("sink exploded")
	}
	c.got <- logging.TraceID(ctx) + "/" + *info.OrderID
}

func ptr(s string) *string { return &s }

func TestWorkerPool_DeliversWithDetachedContext(t *testing.T) {
	sink := &chanSink{got: make(chan string, 1)}
	wp := NewWorkerPool(sink, 2, 10, nil)

	ctx, cancel := context.WithCancel(context.Background())
	wp.Start(ctx)

	reqCtx, reqCancel := context.WithCancel(logging.WithTraceID(context.Background(), "t-1"))
	wp.CallbackValidated(reqCtx, models.OrderStateInfo{OrderID: ptr("o-1")})
	reqCancel()

	select {
	case got := <-sink.got:
		assert.Equal(t, "t-1/o-1", got)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	cancel()
	wp.Wait()
}

func TestWorkerPool_DrainsOnShutdown(t *testing.T) {
	sink := &chanSink{got: make(chan string, 3)}
	wp := NewWorkerPool(sink, 1, 3, nil)

	for _, id := range []string{"a", "b", "c"} {
		wp.CallbackValidated(context.Background(), models.OrderStateInfo{OrderID: ptr(id)})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	wp.Start(ctx)
	wp.Wait()

	assert.Len(t, sink.got, 3)
}

func TestWorkerPool_DropsWhenFull(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	wp := NewWorkerPool(&chanSink{got: make(chan string, 1)}, 1, 1, zap.New(core))

	wp.CallbackValidated(context.Background(), models.OrderStateInfo{OrderID: ptr("a")})
	wp.CallbackValidated(context.Background(), models.OrderStateInfo{OrderID: ptr("b")})

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "monoparts.dispatch.queue_full", logs.All()[0].Message)
}

func TestWorkerPool_RecoversSinkPanic(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	wp := NewWorkerPool(&chanSink{panic: true}, 1, 1, zap.New(core))

	wp.CallbackValidated(context.Background(), models.OrderStateInfo{OrderID: ptr("a")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	wp.Start(ctx)
	wp.Wait()

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "monoparts.dispatch.panic", logs.All()[0].Message)
}
