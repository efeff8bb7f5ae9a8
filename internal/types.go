package internal

// Comment is one comment read from the subreddit feed.
type Comment struct {
	ID       string
	FullName string
	Author   string
	Body     string
	PostID   string
	PostURL  string
}

type ReplyStatus string

const (
	ReplyPosted ReplyStatus = "posted"
	ReplySaved  ReplyStatus = "saved"
	ReplyFailed ReplyStatus = "failed"
)

// ReplyRecord is a composed reply kept in the reply log.
type ReplyRecord struct {
	ID        int
	CommentID string
	PostID    string
	Author    string
	Mentions  []string
	Message   string
	Status    ReplyStatus
	CreatedAt string
}

type RunRow struct {
	ID        int
	TraceID   string
	Counts    map[string]int
	Timings   map[string]float64
	CreatedAt string
}
