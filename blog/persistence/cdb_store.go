package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/sun-exploit/cblog/blog/domain"
	"github.com/sun-exploit/cblog/shared/cdb"
)

type cdbRecord struct {
	key   string
	value string
}

// CDBPostStore adds writes to CDBPostRepository. Every write rebuilds the
// whole file next to the original and renames it into place, so readers
// never see a partial database.
type CDBPostStore struct {
	*CDBPostRepository
}

var _ domain.PostStore = (*CDBPostStore)(nil)

// OpenCDBStore opens an existing packed store for writing.
func OpenCDBStore(path string) (*CDBPostStore, error) {
	repo, err := OpenCDB(path)
	if err != nil {
		return nil, err
	}
	return &CDBPostStore{CDBPostRepository: repo}, nil
}

// CreateCDB writes an empty packed store at path. It fails if the file exists.
func CreateCDB(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("database %s already exists", path)
		}
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer f.Close()

	w, err := cdb.NewWriter(f)
	if err != nil {
		return err
	}
	return w.Close()
}

func (s *CDBPostStore) records() ([]cdbRecord, error) {
	records := make([]cdbRecord, 0)
	err := s.db.ForEach(func(key, value []byte) error {
		records = append(records, cdbRecord{key: string(key), value: string(value)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read database: %w", err)
	}
	return records, nil
}

// rewrite applies fn to every record and swaps the result in atomically.
func (s *CDBPostStore) rewrite(fn func([]cdbRecord) ([]cdbRecord, error)) error {
	records, err := s.records()
	if err != nil {
		return err
	}
	if records, err = fn(records); err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	w, err := cdb.Create(tmp)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Add([]byte(rec.key), []byte(rec.value)); err != nil {
			w.Close()
			os.Remove(tmp)
			return err
		}
	}
	if err := w.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace database: %w", err)
	}

	r, err := cdb.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}
	s.db.Close()
	s.db = r
	s.slugs, s.known = nil, nil
	return nil
}

func hasPost(records []cdbRecord, slug string) bool {
	for _, rec := range records {
		if rec.key == cdbPostsKey && rec.value == slug {
			return true
		}
	}
	return false
}

// putField replaces the first record stored under key, or appends one.
func putField(records []cdbRecord, key, value string) []cdbRecord {
	for i := range records {
		if records[i].key == key {
			records[i].value = value
			return records
		}
	}
	return append(records, cdbRecord{key: key, value: value})
}

func (s *CDBPostStore) SavePost(ctx context.Context, p *domain.Post) error {
	if err := validateSlug(p.Slug); err != nil {
		return err
	}

	return s.rewrite(func(records []cdbRecord) ([]cdbRecord, error) {
		if !hasPost(records, p.Slug) {
			records = append(records, cdbRecord{key: cdbPostsKey, value: p.Slug})
			records = putField(records, string(cdbKey(p.Slug, domain.FieldCTime)), strconv.FormatInt(p.CTime, 10))
		}
		records = putField(records, string(cdbKey(p.Slug, domain.FieldTitle)), p.Title)
		records = putField(records, string(cdbKey(p.Slug, domain.FieldSource)), p.Source)
		records = putField(records, string(cdbKey(p.Slug, domain.FieldHTML)), p.HTML)
		records = putField(records, string(cdbKey(p.Slug, domain.FieldTags)), JoinTags(normalizeTags(p.Tags)))
		return records, nil
	})
}

func (s *CDBPostStore) DeletePost(ctx context.Context, slug string) error {
	owned := map[string]struct{}{
		string(cdbKey(slug, cdbCommentKey)): {},
	}
	for _, field := range domain.PostFields {
		owned[string(cdbKey(slug, field))] = struct{}{}
	}

	return s.rewrite(func(records []cdbRecord) ([]cdbRecord, error) {
		if !hasPost(records, slug) {
			return nil, fmt.Errorf("post %q: %w", slug, domain.ErrNotFound)
		}

		kept := records[:0]
		for _, rec := range records {
			if rec.key == cdbPostsKey && rec.value == slug {
				continue
			}
			if _, ok := owned[rec.key]; ok {
				continue
			}
			kept = append(kept, rec)
		}
		return kept, nil
	})
}

func (s *CDBPostStore) SetField(ctx context.Context, slug, field, value string) error {
	stored, err := settableValue(field, value)
	if err != nil {
		return err
	}

	return s.rewrite(func(records []cdbRecord) ([]cdbRecord, error) {
		if !hasPost(records, slug) {
			return nil, fmt.Errorf("post %q: %w", slug, domain.ErrNotFound)
		}
		return putField(records, string(cdbKey(slug, field)), stored), nil
	})
}

func (s *CDBPostStore) AddComment(ctx context.Context, slug string, c *domain.Comment) error {
	return s.rewrite(func(records []cdbRecord) ([]cdbRecord, error) {
		if !hasPost(records, slug) {
			return nil, fmt.Errorf("post %q: %w", slug, domain.ErrNotFound)
		}
		return append(records, cdbRecord{key: string(cdbKey(slug, cdbCommentKey)), value: encodeComment(c)}), nil
	})
}
