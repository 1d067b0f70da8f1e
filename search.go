package blogapi

import (
	"fmt"
	"strings"
)

type SearchMode string

const (
	SearchPrefix SearchMode = "^"
	SearchExact  SearchMode = "="
)

// SearchField is a column searched with a single match mode, written as
// "^title" or "=author".
type SearchField struct {
	Column string
	Mode   SearchMode
}

func ParseSearchField(def string) SearchField {
	switch {
	case strings.HasPrefix(def, string(SearchPrefix)):
		return SearchField{Column: def[1:], Mode: SearchPrefix}
	case strings.HasPrefix(def, string(SearchExact)):
		return SearchField{Column: def[1:], Mode: SearchExact}
	default:
		return SearchField{Column: def, Mode: SearchPrefix}
	}
}

// Search is a parsed `search` query parameter bound to a field.
type Search struct {
	Field SearchField
	Terms []string
}

// NewSearch splits the raw parameter on whitespace and commas. It returns nil
// when there is nothing to match.
func NewSearch(field SearchField, raw string) *Search {
	terms := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(terms) == 0 {
		return nil
	}
	return &Search{Field: field, Terms: terms}
}

// SearchParam reads the `search` query parameter for field.
func (c *Context) SearchParam(field SearchField) *Search {
	return NewSearch(field, c.Query("search"))
}

// clause renders one condition per term, all of which must match. Matching is
// case-insensitive in both modes.
func (s *Search) clause(startIndex int) (string, []interface{}) {
	conditions := make([]string, 0, len(s.Terms))
	values := make([]interface{}, 0, len(s.Terms))
	for i, term := range s.Terms {
		placeholder := fmt.Sprintf("$%d", startIndex+i)
		switch s.Field.Mode {
		case SearchExact:
			conditions = append(conditions, fmt.Sprintf("LOWER(%s) = LOWER(%s)", s.Field.Column, placeholder))
			values = append(values, term)
		default:
			conditions = append(conditions, fmt.Sprintf("%s ILIKE %s ESCAPE '\\'", s.Field.Column, placeholder))
			values = append(values, escapeLike(term)+"%")
		}
	}
	return strings.Join(conditions, " AND "), values
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
