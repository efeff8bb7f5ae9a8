package bot

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"branikbot/internal"
	"branikbot/internal/config"
	"branikbot/internal/storage"
)

type queueReader struct {
	batches [][]internal.Comment
	calls   int
}

func (q *queueReader) ReadNew(ctx context.Context) ([]internal.Comment, error) {
	q.calls++
	if len(q.batches) == 0 {
		return nil, nil
	}
	b := q.batches[0]
	q.batches = q.batches[1:]
	return b, nil
}

type recordingSink struct {
	replies map[string]string
	failFor string
}

func (r *recordingSink) Reply(ctx context.Context, parent, text string) error {
	if parent == r.failFor {
		return errors.New("reddit down")
	}
	if r.replies == nil {
		r.replies = map[string]string{}
	}
	r.replies[parent] = text
	return nil
}

type stepPrices struct {
	prices []float64
	calls  int
}

func (s *stepPrices) LoadOrDefault(ctx context.Context) float64 {
	p := s.prices[s.calls%len(s.prices)]
	s.calls++
	return p
}

func newTestService(t *testing.T, cfg config.Config, reader CommentReader, sink ReplySink, prices PriceSource) (*Service, *storage.DB) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewService(cfg, db, reader, sink, prices, zap.NewNop()), db
}

func baseConfig() config.Config {
	return config.Config{
		RedditUsername:     "branikbot",
		PriceDefault:       39.9,
		PriceRefreshCycles: 12,
		BotRepliesPerPost:  2,
		BotPostResponse:    true,
		BotMaxCycles:       1,
	}
}

func TestRunCycleRepliesAndSkips(t *testing.T) {
	reader := &queueReader{batches: [][]internal.Comment{{
		{ID: "c1", FullName: "t1_c1", Author: "pepa", Body: "Za 100kc?", PostID: "t3_p1"},
		{ID: "c2", FullName: "t1_c2", Author: "BranikBot", Body: "500 kc", PostID: "t3_p1"},
		{ID: "c3", FullName: "t1_c3", Author: "jana", Body: "nic tu neni, rok 2024", PostID: "t3_p1"},
		{ID: "c4", FullName: "t1_c4", Author: "jana", Body: "kde je branik", PostID: "t3_p2"},
		{ID: "c5", Author: "karel", Body: "a co 20k", PostID: "t3_p1"},
		{ID: "c6", FullName: "t1_c6", Author: "eva", Body: "1,5k", PostID: "t3_p1"},
	}}}
	sink := &recordingSink{}
	svc, db := newTestService(t, baseConfig(), reader, sink, &stepPrices{prices: []float64{39.9}})

	counts, err := svc.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, counts["comments"])
	assert.Equal(t, 3, counts["posted"])
	assert.Equal(t, 1, counts[resultOwn])
	assert.Equal(t, 1, counts[resultNothing])
	assert.Equal(t, 1, counts[resultLimit])

	assert.Equal(t, "> 100kc\n\nTo je dost na 2 2L Braniky ve sleve!", strings.SplitN(sink.replies["t1_c1"], "\n\n^(", 2)[0])
	assert.True(t, strings.HasPrefix(sink.replies["t1_c4"], "Aktualni cena 2L Branika ve sleve je 39,90 Kc"))
	assert.Contains(t, sink.replies["t1_c5"], "vic jak 1 paletu (83 baliku)")
	assert.NotContains(t, sink.replies, "t1_c6")

	n, err := db.CountRepliesForPost("t3_p1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	r, err := db.GetReplyByCommentID("c1")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, []string{"100kc"}, r.Mentions)
	assert.Equal(t, internal.ReplyPosted, r.Status)

	runs, err := db.ListRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Len(t, runs[0].TraceID, 36)
}

func TestRunCycleFailedReplyDoesNotStopBatch(t *testing.T) {
	reader := &queueReader{batches: [][]internal.Comment{{
		{ID: "c1", FullName: "t1_c1", Author: "pepa", Body: "100kc", PostID: "t3_p1"},
		{ID: "c2", FullName: "t1_c2", Author: "jana", Body: "200kc", PostID: "t3_p2"},
	}}}
	sink := &recordingSink{failFor: "t1_c1"}
	svc, db := newTestService(t, baseConfig(), reader, sink, &stepPrices{prices: []float64{39.9}})

	counts, err := svc.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counts["failed"])
	assert.Equal(t, 1, counts["posted"])

	r, err := db.GetReplyByCommentID("c1")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, internal.ReplyFailed, r.Status)

	n, err := db.CountRepliesForPost("t3_p1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRunCycleSaveOnlyAndDryRun(t *testing.T) {
	cfg := baseConfig()
	cfg.BotPostResponse = false
	cfg.BotSaveResponse = true
	reader := &queueReader{batches: [][]internal.Comment{{{ID: "c1", Author: "pepa", Body: "60 kc", PostID: "t3_p1"}}}}
	sink := &recordingSink{}
	svc, db := newTestService(t, cfg, reader, sink, &stepPrices{prices: []float64{39.9}})

	counts, err := svc.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counts["saved"])
	assert.Empty(t, sink.replies)

	r, err := db.GetReplyByCommentID("c1")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Contains(t, r.Message, "To je dost na 1 2L Branika ve sleve!")

	cfg.BotSaveResponse = false
	reader = &queueReader{batches: [][]internal.Comment{{{ID: "c2", Author: "pepa", Body: "60 kc", PostID: "t3_p1"}}}}
	svc, db = newTestService(t, cfg, reader, sink, &stepPrices{prices: []float64{39.9}})
	counts, err = svc.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counts[resultDryRun])
	r, err = db.GetReplyByCommentID("c2")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestRunRefreshesPriceOnSchedule(t *testing.T) {
	cfg := baseConfig()
	cfg.BotMaxCycles = 5
	cfg.PriceRefreshCycles = 2
	chatter := func(id string) []internal.Comment {
		return []internal.Comment{{ID: id, Author: "pepa", Body: "ahoj", PostID: "t3_p1"}}
	}
	reader := &queueReader{batches: [][]internal.Comment{
		chatter("c1"), nil, chatter("c2"), chatter("c3"), nil, nil, chatter("c4"), chatter("c5"),
	}}
	prices := &stepPrices{prices: []float64{30, 0, 45}}
	svc, _ := newTestService(t, cfg, reader, &recordingSink{}, prices)

	require.NoError(t, svc.Run(context.Background()))
	assert.Equal(t, 8, reader.calls)
	assert.Equal(t, 3, prices.calls)
	assert.Equal(t, 45.0, svc.Price())
}

func TestRunIdleCyclesDoNotCount(t *testing.T) {
	cfg := baseConfig()
	cfg.BotMaxCycles = 1
	cfg.PriceRefreshCycles = 1
	reader := &queueReader{batches: [][]internal.Comment{
		nil, nil, nil, {{ID: "c1", Author: "pepa", Body: "ahoj", PostID: "t3_p1"}},
	}}
	prices := &stepPrices{prices: []float64{39.9}}
	svc, _ := newTestService(t, cfg, reader, &recordingSink{}, prices)

	require.NoError(t, svc.Run(context.Background()))
	assert.Equal(t, 4, reader.calls)
	assert.Equal(t, 1, prices.calls)
}

func TestRunFallsBackToDefaultOnBadPrice(t *testing.T) {
	svc, _ := newTestService(t, baseConfig(), &queueReader{}, &recordingSink{}, &stepPrices{prices: []float64{0}})
	svc.RefreshPrice(context.Background())
	assert.Equal(t, 39.9, svc.Price())
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := baseConfig()
	cfg.BotMaxCycles = 0
	cfg.BotInterval = 1 << 40
	ctx, cancel := context.WithCancel(context.Background())
	reader := &cancelReader{cancel: cancel}
	svc, _ := newTestService(t, cfg, reader, &recordingSink{}, &stepPrices{prices: []float64{39.9}})

	require.NoError(t, svc.Run(ctx))
	assert.Equal(t, 1, reader.calls)
}

type cancelReader struct {
	cancel context.CancelFunc
	calls  int
}

func (c *cancelReader) ReadNew(ctx context.Context) ([]internal.Comment, error) {
	c.calls++
	c.cancel()
	return nil, errors.New("feed unavailable")
}
