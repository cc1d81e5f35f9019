package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"qa-board-go/internal/config"
	"qa-board-go/pkg/tasks"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProcessor struct {
	err   error
	calls int
}

func (s *stubProcessor) Process(_ context.Context, _ tasks.QuestionIndexTask) error {
	s.calls++
	return s.err
}

func newTestConsumer(t *testing.T, processor TaskProcessor) (*Consumer, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return &Consumer{processor: processor, rdb: rdb, backoff: time.Millisecond}, mr
}

func taskBytes(t *testing.T, id uint) []byte {
	t.Helper()
	b, err := json.Marshal(tasks.QuestionIndexTask{QuestionID: id})
	require.NoError(t, err)
	return b
}

func TestHandle_CommitsOnSuccess(t *testing.T) {
	proc := &stubProcessor{}
	c, mr := newTestConsumer(t, proc)
	mr.Set("kafka:attempts:question:1", "2")

	assert.True(t, c.handle(context.Background(), taskBytes(t, 1)))
	assert.Equal(t, 1, proc.calls)
	assert.False(t, mr.Exists("kafka:attempts:question:1"))
}

func TestHandle_RetriesThenGivesUp(t *testing.T) {
	proc := &stubProcessor{err: errors.New("es down")}
	c, mr := newTestConsumer(t, proc)
	ctx := context.Background()

	assert.False(t, c.handle(ctx, taskBytes(t, 5)))
	assert.False(t, c.handle(ctx, taskBytes(t, 5)))
	assert.True(t, c.handle(ctx, taskBytes(t, 5)))
	assert.Equal(t, 3, proc.calls)

	v, err := mr.Get("kafka:attempts:question:5")
	require.NoError(t, err)
	assert.Equal(t, "3", v)
}

// flakyProcessor 前 failures 次调用返回错误。
type flakyProcessor struct {
	failures int
	calls    int
}

func (f *flakyProcessor) Process(_ context.Context, _ tasks.QuestionIndexTask) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("es unavailable")
	}
	return nil
}

func TestProcessWithRetry_RecoversInProcess(t *testing.T) {
	proc := &flakyProcessor{failures: 2}
	c, mr := newTestConsumer(t, proc)

	assert.True(t, c.processWithRetry(context.Background(), taskBytes(t, 7)))
	assert.Equal(t, 3, proc.calls)
	assert.False(t, mr.Exists("kafka:attempts:question:7"))
}

func TestProcessWithRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	proc := &stubProcessor{err: errors.New("es down")}
	c, _ := newTestConsumer(t, proc)

	assert.True(t, c.processWithRetry(context.Background(), taskBytes(t, 8)))
	assert.Equal(t, maxAttempts, proc.calls)
}

func TestProcessWithRetry_StopsWithContext(t *testing.T) {
	proc := &stubProcessor{err: errors.New("es down")}
	c, _ := newTestConsumer(t, proc)
	c.backoff = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, c.processWithRetry(ctx, taskBytes(t, 9)))
	assert.Equal(t, 1, proc.calls)
}

func TestHandle_MalformedMessageIsCommitted(t *testing.T) {
	proc := &stubProcessor{}
	c, _ := newTestConsumer(t, proc)
	assert.True(t, c.handle(context.Background(), []byte("{not json")))
	assert.Zero(t, proc.calls)
}

func TestNewProducer_DisabledWithoutBrokers(t *testing.T) {
	assert.Nil(t, NewProducer(config.KafkaConfig{}))
	assert.Nil(t, NewConsumer(config.KafkaConfig{Brokers: " , "}, &stubProcessor{}, nil))
	assert.Equal(t, []string{"a:9092", "b:9092"}, splitBrokers("a:9092, b:9092,"))
}
