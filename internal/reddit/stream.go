package reddit

import (
	"context"
	"log/slog"
	"sort"
	"time"
)

const (
	streamPollInterval = 5 * time.Second
	streamFetchLimit   = 100

	// seenCapacity bounds the dedup window. New items arrive far slower than
	// the fetch limit, so a window a few times the limit is enough to never
	// re-emit.
	seenCapacity = 301
)

type postLister interface {
	ListNewPosts(ctx context.Context, subreddit string, limit int) ([]Post, error)
}

type commentLister interface {
	ListNewComments(ctx context.Context, subreddit string, limit int) ([]Comment, error)
}

// StreamPosts emits every new submission in the subreddit as it appears,
// oldest first. Items present at startup are recorded but not emitted.
// Fetch failures are logged and retried; the dedup window survives them, so
// a recovered stream never replays items it already delivered. The channel
// closes when ctx is done.
func StreamPosts(ctx context.Context, source postLister, subreddit string) <-chan Post {
	out := make(chan Post)

	go func() {
		defer close(out)

		seen := newSeenSet(seenCapacity)
		first := true

		ticker := time.NewTicker(streamPollInterval)
		defer ticker.Stop()

		for {
			posts, err := source.ListNewPosts(ctx, subreddit, streamFetchLimit)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.ErrorContext(ctx, "fetching posts for stream failed", "error", err)
			} else {
				sort.Slice(posts, func(i, j int) bool {
					return posts[i].Created.Before(posts[j].Created)
				})
				for _, post := range posts {
					if !seen.Add(post.ID) {
						continue
					}
					if first {
						continue
					}
					select {
					case out <- post:
					case <-ctx.Done():
						return
					}
				}
				first = false
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// StreamPosts starts a submission stream backed by this client.
func (c *Client) StreamPosts(ctx context.Context, subreddit string) <-chan Post {
	return StreamPosts(ctx, c, subreddit)
}

// StreamComments starts a comment stream backed by this client.
func (c *Client) StreamComments(ctx context.Context, subreddit string) <-chan Comment {
	return StreamComments(ctx, c, subreddit)
}

// StreamComments is StreamPosts for subreddit comments.
func StreamComments(ctx context.Context, source commentLister, subreddit string) <-chan Comment {
	out := make(chan Comment)

	go func() {
		defer close(out)

		seen := newSeenSet(seenCapacity)
		first := true

		ticker := time.NewTicker(streamPollInterval)
		defer ticker.Stop()

		for {
			comments, err := source.ListNewComments(ctx, subreddit, streamFetchLimit)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.ErrorContext(ctx, "fetching comments for stream failed", "error", err)
			} else {
				sort.Slice(comments, func(i, j int) bool {
					return comments[i].Created.Before(comments[j].Created)
				})
				for _, comment := range comments {
					if !seen.Add(comment.ID) {
						continue
					}
					if first {
						continue
					}
					select {
					case out <- comment:
					case <-ctx.Done():
						return
					}
				}
				first = false
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// seenSet is a bounded insertion-ordered set; the oldest entry is evicted
// when capacity is exceeded.
type seenSet struct {
	capacity int
	order    []string
	members  map[string]struct{}
}

func newSeenSet(capacity int) *seenSet {
	return &seenSet{
		capacity: capacity,
		members:  make(map[string]struct{}, capacity),
	}
}

// Add records the id and reports whether it was newly added.
func (s *seenSet) Add(id string) bool {
	if _, ok := s.members[id]; ok {
		return false
	}
	s.members[id] = struct{}{}
	s.order = append(s.order, id)
	if len(s.order) > s.capacity {
		delete(s.members, s.order[0])
		s.order = s.order[1:]
	}
	return true
}
