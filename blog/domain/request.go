package domain

// Kind is the view a request path selects.
type Kind int

const (
	KindIndex Kind = iota
	KindPost
	KindTag
	KindArchive
	KindRSS
	KindAtom
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindIndex:
		return "index"
	case KindPost:
		return "post"
	case KindTag:
		return "tag"
	case KindArchive:
		return "archive"
	case KindRSS:
		return "rss"
	case KindAtom:
		return "atom"
	default:
		return "error"
	}
}

// Feed is the output flavour of a response.
type Feed string

const (
	FeedHTML Feed = ""
	FeedRSS  Feed = "rss"
	FeedAtom Feed = "atom"
)

// ParseFeed maps the feed query value to a Feed. Anything other than the
// exact names "rss" and "atom" is HTML.
func ParseFeed(v string) Feed {
	switch Feed(v) {
	case FeedRSS, FeedAtom:
		return Feed(v)
	default:
		return FeedHTML
	}
}

// Request is a classified request path.
type Request struct {
	Path      string
	Kind      Kind
	Criterion Criterion
	Feed      Feed
	Page      int
	// Target is the post slug or tag name taken from the path.
	Target string
	Err    *ClassificationError
}
