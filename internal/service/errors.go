package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/klass-lk/blogapi"
)

const nonFieldErrors = "non_field_errors"

var uniqueMessages = map[string][2]string{
	"users_username_key":        {"username", "A user with that username already exists."},
	"categories_slug_key":       {"slug", "category with this slug already exists."},
	"posts_slug_key":            {"slug", "post with this slug already exists."},
	"bookmarks_author_post_key": {nonFieldErrors, "The fields author, post must make a unique set."},
	"favorites_author_post_key": {nonFieldErrors, "The fields author, post must make a unique set."},
}

// lookupError maps a missing row to a 404 for resource.
func lookupError(err error, resource string) error {
	if blogapi.IsNotFound(err) {
		return blogapi.NotFound(resource)
	}
	return err
}

// writeError turns constraint violations that slipped past the pre-checks
// into field errors.
func writeError(err error) error {
	if err == nil {
		return nil
	}
	if constraint, ok := blogapi.UniqueViolation(err); ok {
		if msg, known := uniqueMessages[constraint]; known {
			return blogapi.FieldError(msg[0], msg[1])
		}
		return blogapi.FieldError(nonFieldErrors, "A record with these values already exists.")
	}
	if constraint, ok := blogapi.ForeignKeyViolation(err); ok {
		field := nonFieldErrors
		switch {
		case strings.HasSuffix(constraint, "_category_id_fkey"):
			field = "category"
		case strings.HasSuffix(constraint, "_post_id_fkey"):
			field = "post"
		}
		return blogapi.FieldError(field, "Referenced object does not exist.")
	}
	return err
}

func invalidPK(field, value string) error {
	return blogapi.FieldError(field, fmt.Sprintf("Invalid pk \"%s\" - object does not exist.", value))
}

// requireExists validates that id references an existing row.
func requireExists(ctx context.Context, store Existence, field, id string) error {
	exists, err := store.ExistsBy(ctx, blogapi.Eq("id", id))
	if err != nil {
		return err
	}
	if !exists {
		return invalidPK(field, id)
	}
	return nil
}
