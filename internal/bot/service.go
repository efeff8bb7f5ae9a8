// Package bot runs the polling loop: read new comments, extract amounts,
// compose a reply and deliver it.
package bot

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"branikbot/internal"
	"branikbot/internal/config"
	"branikbot/internal/metrics"
	"branikbot/internal/money"
)

type CommentReader interface {
	ReadNew(ctx context.Context) ([]internal.Comment, error)
}

type ReplySink interface {
	Reply(ctx context.Context, parentFullName, text string) error
}

type PriceSource interface {
	LoadOrDefault(ctx context.Context) float64
}

type Store interface {
	CountRepliesForPost(postID string) (int, error)
	UpsertReply(r internal.ReplyRecord) error
	InsertRun(traceID string, timings map[string]float64, counts map[string]int) error
}

// Comment handling results, also used as run count keys.
const (
	resultOwn     = "own"
	resultLimit   = "limit"
	resultNothing = "nothing"
	resultDryRun  = "dry_run"
	resultError   = "error"
)

type Service struct {
	cfg      config.Config
	store    Store
	comments CommentReader
	sink     ReplySink
	prices   PriceSource
	logger   *zap.Logger

	price float64
}

func NewService(cfg config.Config, store Store, comments CommentReader, sink ReplySink, prices PriceSource, logger *zap.Logger) *Service {
	return &Service{
		cfg:      cfg,
		store:    store,
		comments: comments,
		sink:     sink,
		prices:   prices,
		logger:   logger,
		price:    cfg.PriceDefault,
	}
}

// Price is the unit price the next cycle classifies with.
func (s *Service) Price() float64 {
	return s.price
}

// Run polls until ctx is cancelled or BotMaxCycles cycles are done. Only
// cycles that read new comments count toward BotMaxCycles and the price
// refresh schedule; idle or failed reads just wait for the next poll.
func (s *Service) Run(ctx context.Context) error {
	needsPrice := true
	for cycle := 0; s.cfg.BotMaxCycles <= 0 || cycle < s.cfg.BotMaxCycles; {
		if needsPrice {
			s.RefreshPrice(ctx)
			needsPrice = false
		}

		counts, err := s.RunCycle(ctx)
		switch {
		case err != nil:
			s.logger.Error("cycle failed", zap.Int("cycle", cycle), zap.Error(err))
		case counts["comments"] == 0:
			s.logger.Debug("no new comments", zap.Int("cycle", cycle))
		default:
			cycle++
			needsPrice = s.cfg.PriceRefreshCycles > 0 && cycle%s.cfg.PriceRefreshCycles == 0
			s.logger.Info("cycle done", zap.Int("cycle", cycle), zap.Any("counts", counts))
			if cycle == s.cfg.BotMaxCycles {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.cfg.BotInterval):
		}
	}
	return nil
}

// RefreshPrice reloads the unit price, keeping the default on failure.
func (s *Service) RefreshPrice(ctx context.Context) {
	p := s.prices.LoadOrDefault(ctx)
	if p <= 0 {
		p = s.cfg.PriceDefault
	}
	s.price = p
	metrics.UnitPrice.Set(p)
}

// RunCycle handles one batch of new comments and records the run.
func (s *Service) RunCycle(ctx context.Context) (map[string]int, error) {
	start := time.Now()
	defer func() { metrics.CycleDuration.Observe(time.Since(start).Seconds()) }()

	comments, err := s.comments.ReadNew(ctx)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{"comments": len(comments)}
	for _, c := range comments {
		counts[s.handleComment(ctx, c)]++
	}

	traceID := uuid.NewString()
	if err := s.store.InsertRun(traceID, map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}, counts); err != nil {
		s.logger.Warn("record run", zap.String("traceId", traceID), zap.Error(err))
	}
	return counts, nil
}

func (s *Service) handleComment(ctx context.Context, c internal.Comment) string {
	log := s.logger.With(zap.String("commentId", c.ID), zap.String("postId", c.PostID))

	if strings.EqualFold(c.Author, s.cfg.RedditUsername) {
		return resultOwn
	}

	replied, err := s.store.CountRepliesForPost(c.PostID)
	if err != nil {
		log.Error("count replies", zap.Error(err))
		return resultError
	}
	if replied >= s.cfg.BotRepliesPerPost {
		log.Debug("reply limit reached", zap.Int("replies", replied), zap.Int("limit", s.cfg.BotRepliesPerPost))
		return resultLimit
	}

	metrics.CommentsScanned.Inc()
	outcome, ok := money.Extract(c.Body)
	if !ok {
		return resultNothing
	}
	message := money.Compose(outcome, s.price)

	status := s.deliver(ctx, c, message)
	if status == "" {
		log.Info("reply composed, delivery disabled", zap.String("message", message))
		return resultDryRun
	}
	metrics.Replies.WithLabelValues(string(status)).Inc()

	record := internal.ReplyRecord{
		CommentID: c.ID,
		PostID:    c.PostID,
		Author:    c.Author,
		Mentions:  mentionSpans(outcome),
		Message:   message,
		Status:    status,
	}
	if err := s.store.UpsertReply(record); err != nil {
		log.Error("save reply", zap.Error(err))
	}
	return string(status)
}

// deliver posts and/or saves the reply. An empty status means neither is
// enabled.
func (s *Service) deliver(ctx context.Context, c internal.Comment, message string) internal.ReplyStatus {
	if s.cfg.BotPostResponse {
		target := c.FullName
		if target == "" {
			target = "t1_" + c.ID
		}
		if err := s.sink.Reply(ctx, target, message); err != nil {
			s.logger.Warn("reply failed", zap.String("commentId", c.ID), zap.Error(err))
			return internal.ReplyFailed
		}
		s.logger.Info("reply posted", zap.String("commentId", c.ID), zap.String("postUrl", c.PostURL))
		return internal.ReplyPosted
	}
	if s.cfg.BotSaveResponse {
		return internal.ReplySaved
	}
	return ""
}

func mentionSpans(out money.Outcome) []string {
	switch o := out.(type) {
	case money.Values:
		spans := make([]string, 0, len(o.Mentions))
		for _, m := range o.Mentions {
			spans = append(spans, m.Span)
		}
		return spans
	case money.Keyword:
		return nil
	default:
		return nil
	}
}
