package store

import (
	"fmt"
	"strings"
)

type Field string

const (
	FieldName         Field = "name"
	FieldCategoryID   Field = "category_id"
	FieldCategoryName Field = "category_name"
	FieldPrice        Field = "price"
)

type Op string

const (
	OpEq       Op = "eq"
	OpContains Op = "contains"
	OpGte      Op = "gte"
	OpLte      Op = "lte"
)

// Filter is one condition of a ProductQuery. Value is a string for name
// fields, int64 for FieldCategoryID and decimal.Decimal for FieldPrice.
type Filter struct {
	Field Field
	Op    Op
	Value any
}

// ProductQuery is a conjunction of filters plus paging. Results are ordered by product id.
// Limit <= 0 means no limit.
type ProductQuery struct {
	Filters []Filter
	Limit   int
	Offset  int
}

func (q ProductQuery) Where(f Field, op Op, v any) ProductQuery {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: f, Op: op, Value: v})
	return q
}

var productColumns = map[Field]string{
	FieldName:         "p.name",
	FieldCategoryID:   "p.category_id",
	FieldCategoryName: "c.name",
	FieldPrice:        "p.price",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// whereClause compiles the filters into a parameterized WHERE clause whose
// placeholders start at $1. Only whitelisted columns are accepted.
// OpContains matches case-insensitively; OpEq is exact.
func (q ProductQuery) whereClause() (string, []any, error) {
	if len(q.Filters) == 0 {
		return "", nil, nil
	}
	conds := make([]string, 0, len(q.Filters))
	args := make([]any, 0, len(q.Filters))
	for _, f := range q.Filters {
		col, ok := productColumns[f.Field]
		if !ok {
			return "", nil, fmt.Errorf("unsupported filter field %q", f.Field)
		}
		ph := fmt.Sprintf("$%d", len(args)+1)
		switch f.Op {
		case OpEq:
			conds = append(conds, col+" = "+ph)
			args = append(args, f.Value)
		case OpGte:
			conds = append(conds, col+" >= "+ph)
			args = append(args, f.Value)
		case OpLte:
			conds = append(conds, col+" <= "+ph)
			args = append(args, f.Value)
		case OpContains:
			s, ok := f.Value.(string)
			if !ok {
				return "", nil, fmt.Errorf("contains on %q needs a string, got %T", f.Field, f.Value)
			}
			conds = append(conds, col+" ILIKE '%' || "+ph+" || '%'")
			args = append(args, likeEscaper.Replace(s))
		default:
			return "", nil, fmt.Errorf("unsupported filter op %q", f.Op)
		}
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}
