package render

import (
	"strconv"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/sun-exploit/cblog/blog/application"
	"github.com/sun-exploit/cblog/blog/domain"
)

const (
	// DefaultDateFormat is the strftime layout of HTML dates.
	DefaultDateFormat = "%d/%m/%Y"
	// FeedDateFormat is the RFC 822 layout used by RSS feeds.
	FeedDateFormat = "%a, %d %b %Y %H:%M:%S %z"
	atomDateLayout = "2006-01-02T15:04:05Z"
)

// Options carry the site-wide values of the output tree.
type Options struct {
	Title   string
	URL     string
	Version string
	// DateFormat is the strftime layout of HTML dates.
	DateFormat string
	Location   *time.Location
	// Now is the generation time of the document.
	Now time.Time
}

// Project builds the output tree for res. It has no side effects.
func Project(res application.Result, opts Options) *Tree {
	if opts.DateFormat == "" {
		opts.DateFormat = DefaultDateFormat
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	feed := res.Request.Feed

	t := NewTree()
	t.Set("title", opts.Title)
	t.Set("CBlog.version", opts.Version)
	t.Set("CBlog.url", opts.URL)
	t.Set("Query.feed", string(feed))
	t.Set("Query.kind", res.Request.Kind.String())
	t.Set("Query.path", res.Request.Path)
	t.Set("Query.target", res.Request.Target)
	t.Set("gendate", FormatDate(opts.Now.Unix(), feed, opts))
	t.SetInt("page", int64(res.Page))
	t.SetInt("nb_pages", int64(res.Pages))
	t.SetInt("total", int64(res.Total))
	t.Set("err_msg", res.ErrorMessage)

	t.SetList("Posts")
	for i, p := range res.Posts {
		prefix := "Posts." + strconv.Itoa(i) + "."
		t.Set(prefix+"filename", p.Slug)
		t.Set(prefix+"title", p.Title)
		t.Set(prefix+"date", FormatDate(p.CTime, feed, opts))
		t.SetInt(prefix+"ctime", p.CTime)
		t.Set(prefix+"html", p.HTML)
		t.Set(prefix+"source", p.Source)
		t.SetInt(prefix+domain.FieldComments, int64(p.CommentCount))

		t.SetList(prefix + "tags")
		for j, tag := range p.Tags {
			t.Set(prefix+"tags."+strconv.Itoa(j)+".name", tag)
		}
	}

	t.SetList("Tags")
	for i, tag := range res.Tags {
		prefix := "Tags." + strconv.Itoa(i) + "."
		t.Set(prefix+"name", tag.Name)
		t.SetInt(prefix+"count", int64(tag.Count))
	}

	t.SetList("Comments")
	for i, c := range res.Comments {
		prefix := "Comments." + strconv.Itoa(i) + "."
		t.Set(prefix+"author", c.Author)
		t.Set(prefix+"date", FormatDate(c.CTime, feed, opts))
		t.Set(prefix+"body", c.Body)
	}

	return t
}

// FormatDate renders a unix time for feed: RFC 3339 in UTC for Atom, RFC 822
// for RSS and opts.DateFormat otherwise.
func FormatDate(ctime int64, feed domain.Feed, opts Options) string {
	ts := time.Unix(ctime, 0)

	switch feed {
	case domain.FeedAtom:
		return ts.UTC().Format(atomDateLayout)
	case domain.FeedRSS:
		return strftime.Format(FeedDateFormat, ts.In(location(opts)))
	default:
		layout := opts.DateFormat
		if layout == "" {
			layout = DefaultDateFormat
		}
		return strftime.Format(layout, ts.In(location(opts)))
	}
}

func location(opts Options) *time.Location {
	if opts.Location == nil {
		return time.Local
	}
	return opts.Location
}
