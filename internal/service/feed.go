package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/msomdec/recipe-community/internal/domain"
)

const (
	// FreshWindow is how long a post counts as fresh.
	FreshWindow = 24 * time.Hour
	// PopularThreshold is the engagement (likes + comments) at which a post is popular.
	PopularThreshold = 5

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Bucket is a feed section a post is classified into.
type Bucket int

const (
	BucketFreshPopular Bucket = iota
	BucketFresh
	BucketPopular
	BucketOlder
	bucketCount
)

func (b Bucket) String() string {
	switch b {
	case BucketFreshPopular:
		return "fresh-popular"
	case BucketFresh:
		return "fresh"
	case BucketPopular:
		return "popular"
	case BucketOlder:
		return "older"
	default:
		return fmt.Sprintf("Bucket(%d)", int(b))
	}
}

// Buckets holds the classified posts, indexed by Bucket.
type Buckets [bucketCount][]domain.Post

// BucketOf reports which bucket a post belongs to at time now.
func BucketOf(p *domain.Post, now time.Time) Bucket {
	fresh := now.Sub(p.CreatedAt) < FreshWindow
	popular := p.Engagement() >= PopularThreshold
	switch {
	case fresh && popular:
		return BucketFreshPopular
	case fresh:
		return BucketFresh
	case popular:
		return BucketPopular
	default:
		return BucketOlder
	}
}

// Classify places every post in exactly one bucket in a single pass, then
// orders each bucket by engagement, newest first on ties.
func Classify(posts []domain.Post, now time.Time) Buckets {
	var b Buckets
	for i := range posts {
		k := BucketOf(&posts[i], now)
		b[k] = append(b[k], posts[i])
	}
	for i := range b {
		slices.SortStableFunc(b[i], byEngagement)
	}
	return b
}

// Rank returns the posts in feed order: each bucket in turn.
func Rank(posts []domain.Post, now time.Time) []domain.Post {
	buckets := Classify(posts, now)
	ranked := make([]domain.Post, 0, len(posts))
	for _, b := range buckets {
		ranked = append(ranked, b...)
	}
	return ranked
}

func byEngagement(a, b domain.Post) int {
	if c := cmp.Compare(b.Engagement(), a.Engagement()); c != 0 {
		return c
	}
	return byNewest(a, b)
}

func byNewest(a, b domain.Post) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

func byOldest(a, b domain.Post) int {
	return byNewest(b, a)
}

// FeedSort selects the order of a feed page.
type FeedSort string

const (
	SortRanked  FeedSort = "ranked"
	SortNewest  FeedSort = "newest"
	SortOldest  FeedSort = "oldest"
	SortPopular FeedSort = "popular"
)

// FeedFilter narrows the set of posts in a feed page.
type FeedFilter string

const (
	FilterAll       FeedFilter = "all"
	FilterFollowing FeedFilter = "following"
	FilterMine      FeedFilter = "mine"
	FilterLiked     FeedFilter = "liked"
	FilterPhotos    FeedFilter = "photos"
)

// ParseFeedSort maps a query value to a FeedSort. Empty means ranked.
func ParseFeedSort(s string) (FeedSort, error) {
	switch v := FeedSort(s); v {
	case "":
		return SortRanked, nil
	case SortRanked, SortNewest, SortOldest, SortPopular:
		return v, nil
	}
	return "", fmt.Errorf("%w: unknown sort %q", domain.ErrInvalidInput, s)
}

// ParseFeedFilter maps a query value to a FeedFilter. Empty means all.
func ParseFeedFilter(s string) (FeedFilter, error) {
	switch v := FeedFilter(s); v {
	case "":
		return FilterAll, nil
	case FilterAll, FilterFollowing, FilterMine, FilterLiked, FilterPhotos:
		return v, nil
	}
	return "", fmt.Errorf("%w: unknown filter %q", domain.ErrInvalidInput, s)
}

// FeedOptions describes one feed read.
type FeedOptions struct {
	ViewerID int64
	Sort     FeedSort
	Filter   FeedFilter
	Search   string
	Limit    int
	Offset   int
}

// FeedPage is one window of a sorted, filtered feed.
type FeedPage struct {
	Posts  []domain.Post
	Total  int
	Limit  int
	Offset int
}

// FeedService assembles the community feed.
type FeedService struct {
	posts domain.PostRepository
	now   func() time.Time
}

// NewFeedService creates a new FeedService.
func NewFeedService(posts domain.PostRepository) *FeedService {
	return &FeedService{posts: posts, now: time.Now}
}

// List returns a page of the feed. Filters other than all and photos need a
// signed-in viewer.
func (s *FeedService) List(ctx context.Context, opts FeedOptions) (*FeedPage, error) {
	q := domain.PostQuery{ViewerID: opts.ViewerID, Search: opts.Search}
	switch opts.Filter {
	case FilterAll, "":
	case FilterPhotos:
		q.WithPhotoOnly = true
	case FilterFollowing, FilterMine, FilterLiked:
		if opts.ViewerID == 0 {
			return nil, fmt.Errorf("%w: sign in to filter by %s", domain.ErrUnauthorized, opts.Filter)
		}
		switch opts.Filter {
		case FilterFollowing:
			q.FollowedBy = opts.ViewerID
		case FilterMine:
			q.AuthorID = opts.ViewerID
		case FilterLiked:
			q.LikedBy = opts.ViewerID
		}
	default:
		return nil, fmt.Errorf("%w: unknown filter %q", domain.ErrInvalidInput, opts.Filter)
	}

	posts, err := s.posts.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	switch opts.Sort {
	case SortRanked, "":
		posts = Rank(posts, s.now())
	case SortNewest:
		slices.SortStableFunc(posts, byNewest)
	case SortOldest:
		slices.SortStableFunc(posts, byOldest)
	case SortPopular:
		slices.SortStableFunc(posts, byEngagement)
	default:
		return nil, fmt.Errorf("%w: unknown sort %q", domain.ErrInvalidInput, opts.Sort)
	}

	limit, offset := clampPage(opts.Limit, opts.Offset)
	page := &FeedPage{Total: len(posts), Limit: limit, Offset: offset}
	if offset < len(posts) {
		page.Posts = posts[offset:min(offset+limit, len(posts))]
	}
	return page, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)
	return limit, max(offset, 0)
}
