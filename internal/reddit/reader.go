package reddit

import (
	"context"

	"branikbot/internal"
)

// CheckpointKey is the metadata key holding the newest comment id seen.
const CheckpointKey = "reddit.last_comment"

type CommentSource interface {
	LatestComments(ctx context.Context, subreddit string, limit int) ([]internal.Comment, error)
}

type CheckpointStore interface {
	GetMetadata(key string) (*string, error)
	SetMetadata(key, value string) error
}

// CommentReader returns only comments that arrived since the last read.
type CommentReader struct {
	source    CommentSource
	store     CheckpointStore
	subreddit string
	limit     int
}

func NewCommentReader(source CommentSource, store CheckpointStore, subreddit string, limit int) *CommentReader {
	if limit <= 0 {
		limit = 20
	}
	return &CommentReader{source: source, store: store, subreddit: subreddit, limit: limit}
}

// ReadNew walks the feed newest first up to the checkpoint and moves the
// checkpoint to the newest comment returned.
func (r *CommentReader) ReadNew(ctx context.Context) ([]internal.Comment, error) {
	comments, err := r.source.LatestComments(ctx, r.subreddit, r.limit)
	if err != nil {
		return nil, err
	}

	lastSeen := ""
	if v, err := r.store.GetMetadata(CheckpointKey); err != nil {
		return nil, err
	} else if v != nil {
		lastSeen = *v
	}

	var fresh []internal.Comment
	for _, c := range comments {
		if c.ID == lastSeen {
			break
		}
		fresh = append(fresh, c)
	}
	if len(fresh) == 0 {
		return nil, nil
	}

	if err := r.store.SetMetadata(CheckpointKey, fresh[0].ID); err != nil {
		return nil, err
	}
	return fresh, nil
}
