package application

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sun-exploit/cblog/blog/domain"
)

const (
	msgOpenFailed  = "Unable to open the posts database"
	msgQueryFailed = "Unable to read the posts database"
)

// Opener acquires a repository for the duration of one request.
type Opener func(ctx context.Context) (domain.PostRepository, error)

// RequestInput is the raw request as seen by the transport.
type RequestInput struct {
	// Path is the request path without its query string.
	Path string
	Feed string
	Page string
}

// Result is everything a view needs to render one request.
type Result struct {
	Request  domain.Request
	Posts    []domain.PostSummary
	Tags     []domain.TagCount
	Comments []domain.Comment

	Page  int
	Pages int
	Total int

	// NotFound marks unknown posts, tags and paths.
	NotFound bool
	// Degraded marks a repository that could not be opened or read.
	Degraded     bool
	ErrorMessage string
}

// Engine answers blog requests. It holds no per-request state and is safe
// for concurrent use.
type Engine struct {
	open     Opener
	pageSize int
	loc      *time.Location
}

func NewEngine(open Opener, pageSize int, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{
		open:     open,
		pageSize: pageSize,
		loc:      loc,
	}
}

// Location is the time zone used for date paths and dates.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Handle classifies in, reads the repository and returns the result. It
// never fails: problems are reported through Result.NotFound and
// Result.ErrorMessage.
func (e *Engine) Handle(ctx context.Context, in RequestInput) Result {
	req := Classify(in.Path, in.Feed, in.Page, e.loc)
	res := Result{
		Request:  req,
		Posts:    make([]domain.PostSummary, 0),
		Tags:     make([]domain.TagCount, 0),
		Comments: make([]domain.Comment, 0),
		Page:     req.Page,
	}

	repo, err := e.open(ctx)
	if err != nil {
		logger(ctx).Error().Err(err).Str("path", in.Path).Msg("Failed to open repository")
		res.Request.Criterion = domain.All()
		res.Degraded = true
		res.ErrorMessage = msgOpenFailed
		return res
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger(ctx).Error().Err(err).Msg("Failed to close repository")
		}
	}()

	tags, err := AggregateTags(ctx, repo)
	if err != nil {
		logger(ctx).Error().Err(err).Str("path", in.Path).Msg("Failed to aggregate tags")
	} else {
		res.Tags = tags
	}

	switch req.Kind {
	case domain.KindError:
		res.NotFound = true
		res.ErrorMessage = "Unknown request: " + req.Path
	case domain.KindPost:
		e.handlePost(ctx, repo, &res)
	default:
		e.handleIndex(ctx, repo, &res)
	}
	return res
}

func (e *Engine) handlePost(ctx context.Context, repo domain.PostRepository, res *Result) {
	slug := res.Request.Target

	post, err := BuildPost(ctx, repo, slug)
	if errors.Is(err, domain.ErrNotFound) {
		res.NotFound = true
		res.ErrorMessage = "Unknown post: " + slug
		return
	}
	if err != nil {
		e.queryFailed(ctx, res, err)
		return
	}

	comments, err := repo.ListComments(ctx, slug)
	if err != nil {
		e.queryFailed(ctx, res, err)
		return
	}

	res.Posts = append(res.Posts, post)
	res.Comments = comments
	res.Page, res.Pages, res.Total = 1, 1, 1
}

func (e *Engine) handleIndex(ctx context.Context, repo domain.PostRepository, res *Result) {
	window := domain.NewPageWindow(res.Request.Page, e.pageSize, e.pageSize)

	page, err := BuildIndex(ctx, repo, res.Request.Criterion, window)
	if err != nil {
		e.queryFailed(ctx, res, err)
		return
	}

	if res.Request.Kind == domain.KindTag && page.Total == 0 {
		res.NotFound = true
		res.ErrorMessage = "Unknown tag: " + res.Request.Target
		return
	}

	res.Posts = page.Posts
	res.Total = page.Total
	res.Pages = page.Pages
	res.Page = window.Number
}

func (e *Engine) queryFailed(ctx context.Context, res *Result, err error) {
	logger(ctx).Error().Err(err).Str("path", res.Request.Path).Msg("Failed to query repository")
	res.Posts = make([]domain.PostSummary, 0)
	res.Comments = make([]domain.Comment, 0)
	res.Degraded = true
	res.ErrorMessage = msgQueryFailed
}

// Tags returns the global tag cloud on its own.
func (e *Engine) Tags(ctx context.Context) ([]domain.TagCount, error) {
	repo, err := e.open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger(ctx).Error().Err(err).Msg("Failed to close repository")
		}
	}()

	return AggregateTags(ctx, repo)
}

// logger returns the request logger carried by ctx, or the global one.
func logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
