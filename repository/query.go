package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/travel-point/api-go/models"
	"github.com/travel-point/api-go/utils"
)

// ErrPlaceholderMismatch is returned when an assembled query binds a different
// number of arguments than it has placeholders.
var ErrPlaceholderMismatch = errors.New("placeholder/argument count mismatch")

// ErrInvalidFragment is returned for fragments that cannot be rendered safely.
var ErrInvalidFragment = errors.New("invalid query fragment")

// Expr is a SQL snippet using ? placeholders together with its bound arguments,
// in placeholder order.
type Expr struct {
	SQL  string
	Args []any
}

// Cond builds an Expr from a snippet and its arguments.
func Cond(sql string, args ...any) Expr {
	return Expr{SQL: sql, Args: args}
}

// Or joins the non-empty expressions into one parenthesized disjunction.
func Or(exprs ...Expr) Expr {
	return join(" OR ", exprs)
}

// And joins the non-empty expressions into one parenthesized conjunction.
func And(exprs ...Expr) Expr {
	return join(" AND ", exprs)
}

func join(sep string, exprs []Expr) Expr {
	parts := make([]string, 0, len(exprs))
	var args []any
	for _, e := range exprs {
		if e.SQL == "" {
			continue
		}
		parts = append(parts, e.SQL)
		args = append(args, e.Args...)
	}
	switch len(parts) {
	case 0:
		return Expr{}
	case 1:
		return Expr{SQL: parts[0], Args: args}
	default:
		return Expr{SQL: "(" + strings.Join(parts, sep) + ")", Args: args}
	}
}

// InBoundingBox constrains latitude/longitude to the box.
func InBoundingBox(box *utils.BoundingBox) Expr {
	if box == nil {
		return Expr{}
	}
	if box.CrossesAntimeridian() {
		return Cond("latitude BETWEEN ? AND ? AND (longitude >= ? OR longitude <= ?)",
			box.MinLat, box.MaxLat, box.MinLon, box.MaxLon)
	}
	return Cond("latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?",
		box.MinLat, box.MaxLat, box.MinLon, box.MaxLon)
}

// TagEquals matches rows whose tags[key] equals value.
func TagEquals(key, value string) Expr {
	return Cond("tags ->> ? = ?", key, value)
}

// TagIn matches rows whose tags[key] is any of values.
func TagIn(key string, values ...string) Expr {
	if len(values) == 1 {
		return TagEquals(key, values[0])
	}
	return Cond("tags ->> ? = ANY(?)", key, pq.StringArray(values))
}

// WithTagFilter applies an optional conceptual-category filter.
func WithTagFilter(filter *models.TagFilter) Expr {
	if filter == nil {
		return Expr{}
	}
	return TagEquals(filter.Key, filter.Value)
}

// NameContains is a case-insensitive substring match on name.
func NameContains(text string) Expr {
	text = strings.TrimSpace(text)
	if text == "" {
		return Expr{}
	}
	return Cond("name ILIKE ?", "%"+escapeLike(text)+"%")
}

// NameMatchesAny is a case-insensitive substring match against any of terms.
func NameMatchesAny(terms []string) Expr {
	patterns := make(pq.StringArray, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			patterns = append(patterns, "%"+escapeLike(t)+"%")
		}
	}
	if len(patterns) == 0 {
		return Expr{}
	}
	return Cond("name ILIKE ANY(?)", patterns)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Column is one entry in a fragment's select list. An empty Expr selects a
// typed NULL so heterogeneous tables line up under UNION ALL.
type Column struct {
	Expr  string
	Alias string
	Cast  string
}

func (c Column) render() string {
	if c.Expr == "" {
		cast := c.Cast
		if cast == "" {
			cast = "text"
		}
		return fmt.Sprintf("NULL::%s AS %s", cast, c.Alias)
	}
	if c.Alias == "" || c.Alias == c.Expr {
		return c.Expr
	}
	return fmt.Sprintf("%s AS %s", c.Expr, c.Alias)
}

// PlaceColumns is the uniform select list for a category table.
func PlaceColumns(category models.Category) []Column {
	cols := []Column{
		{Expr: "id"},
		{Expr: "name"},
		{Expr: "latitude"},
		{Expr: "longitude"},
		{Expr: "tags"},
		{Expr: "website"},
		{Expr: "description"},
		{Expr: "opening_hours"},
		{Expr: "osm_type"},
		{Expr: "osm_id"},
	}
	if category.HasEntryFee() {
		cols = append(cols, Column{Expr: "entry_fee"})
	} else {
		cols = append(cols, Column{Alias: "entry_fee", Cast: "text"})
	}
	if category.HasCuisine() {
		cols = append(cols, Column{Expr: "cuisine"})
	} else {
		cols = append(cols, Column{Alias: "cuisine", Cast: "text"})
	}
	return append(cols, Column{Expr: "created_at"})
}

// Fragment is one per-table SELECT: the table comes from Category, the rows
// are labelled with the category literal, and every Where entry is ANDed.
type Fragment struct {
	Category models.Category
	Columns  []Column
	Where    []Expr
}

// NewFragment selects the uniform place columns from the category's table.
func NewFragment(category models.Category, where ...Expr) Fragment {
	return Fragment{Category: category, Columns: PlaceColumns(category), Where: where}
}

// Query is a fully assembled statement.
type Query struct {
	SQL  string
	Args []any
}

// Build renders the fragment as a standalone SELECT.
func (f Fragment) Build() (Query, error) {
	if !f.Category.Valid() {
		return Query{}, fmt.Errorf("%w: unknown category %q", ErrInvalidFragment, f.Category)
	}
	if len(f.Columns) == 0 {
		return Query{}, fmt.Errorf("%w: empty select list for %s", ErrInvalidFragment, f.Category)
	}

	cols := make([]string, 0, len(f.Columns)+1)
	for _, c := range f.Columns {
		cols = append(cols, c.render())
	}
	cols = append(cols, fmt.Sprintf("'%s' AS category", f.Category))

	var (
		conds []string
		args  []any
	)
	for _, e := range f.Where {
		if e.SQL == "" {
			continue
		}
		conds = append(conds, e.SQL)
		args = append(args, e.Args...)
	}

	sql := fmt.Sprintf(`SELECT %s FROM "%s"`, strings.Join(cols, ", "), f.Category.Table())
	if len(conds) > 0 {
		sql += " WHERE " + strings.Join(conds, " AND ")
	}

	q := Query{SQL: sql, Args: args}
	return q, q.validate()
}

// UnionAll combines fragments into one statement. Arguments are concatenated
// in fragment order so placeholders stay aligned.
func UnionAll(fragments ...Fragment) (Query, error) {
	if len(fragments) == 0 {
		return Query{}, fmt.Errorf("%w: no fragments", ErrInvalidFragment)
	}

	parts := make([]string, 0, len(fragments))
	var args []any
	for _, f := range fragments {
		q, err := f.Build()
		if err != nil {
			return Query{}, err
		}
		parts = append(parts, q.SQL)
		args = append(args, q.Args...)
	}

	q := Query{SQL: strings.Join(parts, " UNION ALL "), Args: args}
	return q, q.validate()
}

// Count wraps the query in SELECT COUNT(*).
func (q Query) Count() Query {
	return Query{
		SQL:  "SELECT COUNT(*) FROM (" + q.SQL + ") AS count_union",
		Args: q.Args,
	}
}

// Page wraps the query with an ordering and LIMIT/OFFSET.
func (q Query) Page(order Expr, limit, offset int) (Query, error) {
	args := make([]any, 0, len(q.Args)+len(order.Args)+2)
	args = append(args, q.Args...)
	args = append(args, order.Args...)
	args = append(args, limit, offset)

	var sb strings.Builder
	sb.WriteString("SELECT * FROM (")
	sb.WriteString(q.SQL)
	sb.WriteString(") AS candidates")
	if order.SQL != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(order.SQL)
	}
	sb.WriteString(" LIMIT ? OFFSET ?")

	paged := Query{SQL: sb.String(), Args: args}
	return paged, paged.validate()
}

func (q Query) validate() error {
	if n := countPlaceholders(q.SQL); n != len(q.Args) {
		return fmt.Errorf("%w: %d placeholders, %d args", ErrPlaceholderMismatch, n, len(q.Args))
	}
	return nil
}

// countPlaceholders counts ? outside single-quoted literals.
func countPlaceholders(sql string) int {
	n := 0
	inQuote := false
	for _, r := range sql {
		switch {
		case r == '\'':
			inQuote = !inQuote
		case r == '?' && !inQuote:
			n++
		}
	}
	return n
}

// Orderings used by the candidate queries. Every ordering ends in a unique
// tie-break so pages are stable.
var (
	OrderNameAsc     = Cond("LOWER(name) ASC NULLS LAST, category ASC, id ASC")
	OrderNameDesc    = Cond("LOWER(name) DESC NULLS LAST, category ASC, id ASC")
	OrderCreatedDesc = Cond("created_at DESC NULLS LAST, category ASC, id DESC")
)

// OrderTextRelevance ranks exact name matches first, then prefix matches,
// then substring matches, falling back to name order.
func OrderTextRelevance(text string) Expr {
	text = strings.TrimSpace(text)
	if text == "" {
		return OrderNameAsc
	}
	escaped := escapeLike(text)
	return Cond(
		"CASE WHEN LOWER(name) = LOWER(?) THEN 0 WHEN name ILIKE ? THEN 1 ELSE 2 END ASC, "+OrderNameAsc.SQL,
		text, escaped+"%",
	)
}
