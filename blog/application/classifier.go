package application

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sun-exploit/cblog/blog/domain"
)

// Path prefixes, matched in order.
var prefixes = []struct {
	prefix string
	kind   domain.Kind
}{
	{"/post", domain.KindPost},
	{"/tag", domain.KindTag},
	{"/index.rss", domain.KindRSS},
	{"/index.atom", domain.KindAtom},
}

var datePathRegex = regexp.MustCompile(`^/(\d{4})(?:/(\d{1,2})(?:/(\d{1,2}))?)?/?$`)

// Classify maps a request path and its query values to a request. The path
// must not carry a query string. Classification problems are reported in
// Request.Err with Kind set to domain.KindError.
func Classify(path, feed, page string, loc *time.Location) domain.Request {
	if loc == nil {
		loc = time.Local
	}

	req := domain.Request{
		Path:      path,
		Kind:      domain.KindIndex,
		Criterion: domain.All(),
		Feed:      domain.ParseFeed(feed),
		Page:      parsePage(page),
	}

	if path == "" || path == "/" {
		return req
	}

	for _, p := range prefixes {
		if !strings.HasPrefix(path, p.prefix) {
			continue
		}

		req.Kind = p.kind
		switch p.kind {
		case domain.KindRSS:
			req.Feed = domain.FeedRSS
		case domain.KindAtom:
			req.Feed = domain.FeedAtom
		case domain.KindPost, domain.KindTag:
			target, ok := pathTarget(path)
			if !ok {
				return classifyError(req, "missing name")
			}
			req.Target = target
			if p.kind == domain.KindTag {
				req.Criterion = domain.ByTag(target)
			}
		}
		return req
	}

	m := datePathRegex.FindStringSubmatch(path)
	if m == nil {
		return classifyError(req, "")
	}

	start, end, ok := dateRange(m[1], m[2], m[3], loc)
	if !ok {
		return classifyError(req, "invalid date")
	}
	c, err := domain.ByTimeRange(start.Unix(), end.Unix())
	if err != nil {
		return classifyError(req, err.Error())
	}

	req.Kind = domain.KindArchive
	req.Criterion = c
	return req
}

func classifyError(req domain.Request, reason string) domain.Request {
	req.Kind = domain.KindError
	req.Criterion = domain.All()
	req.Err = &domain.ClassificationError{Path: req.Path, Reason: reason}
	return req
}

// pathTarget returns what follows the second '/' of path, without trailing
// slashes. It reports false when there is no second '/' or nothing after it.
func pathTarget(path string) (string, bool) {
	if len(path) < 2 || path[0] != '/' {
		return "", false
	}
	i := strings.IndexByte(path[1:], '/')
	if i < 0 {
		return "", false
	}

	target := strings.TrimRight(path[i+2:], "/")
	if target == "" {
		return "", false
	}
	return target, true
}

// parsePage clamps invalid or non-positive page numbers to 1.
func parsePage(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// dateRange returns the inclusive bounds of a year, month or day. Both
// bounds are computed in loc.
func dateRange(year, month, day string, loc *time.Location) (time.Time, time.Time, bool) {
	y, _ := strconv.Atoi(year)

	if month == "" {
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		end := time.Date(y, time.December, 31, 23, 59, 59, 0, loc)
		return start, end, true
	}

	m, _ := strconv.Atoi(month)
	if m < 1 || m > 12 {
		return time.Time{}, time.Time{}, false
	}

	if day == "" {
		start := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, loc)
		// Day 0 of the next month is the last day of this one.
		end := time.Date(y, time.Month(m)+1, 0, 23, 59, 59, 0, loc)
		return start, end, true
	}

	d, _ := strconv.Atoi(day)
	if d < 1 || d > daysIn(y, time.Month(m)) {
		return time.Time{}, time.Time{}, false
	}

	start := time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc)
	end := time.Date(y, time.Month(m), d, 23, 59, 59, 0, loc)
	return start, end, true
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
