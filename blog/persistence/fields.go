package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sun-exploit/cblog/blog/domain"
)

var (
	// ErrUnknownField is returned by SetField for names outside domain.PostFields.
	ErrUnknownField = errors.New("unknown field")
	// ErrImmutableField is returned by SetField for the creation time.
	ErrImmutableField = errors.New("field cannot be changed")
)

// settableValue checks that field may be set and returns the value in its
// stored form.
func settableValue(field, value string) (string, error) {
	switch field {
	case domain.FieldTitle, domain.FieldSource, domain.FieldHTML:
		return value, nil
	case domain.FieldTags:
		return JoinTags(normalizeTags([]string{value})), nil
	case domain.FieldCTime:
		return "", fmt.Errorf("%s: %w", field, ErrImmutableField)
	default:
		return "", fmt.Errorf("%q: %w", field, ErrUnknownField)
	}
}

func validateSlug(slug string) error {
	if slug == "" {
		return errors.New("empty slug")
	}
	if strings.ContainsAny(slug, "/\n") {
		return fmt.Errorf("invalid slug %q", slug)
	}
	return nil
}
