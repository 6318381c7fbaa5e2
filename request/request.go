package request

// Operator is a comparison used by a QueryFilter
type Operator string

const (
	OperatorEq    Operator = "eq"
	OperatorNe    Operator = "ne"
	OperatorGt    Operator = "gt"
	OperatorGte   Operator = "gte"
	OperatorLt    Operator = "lt"
	OperatorLte   Operator = "lte"
	OperatorLike  Operator = "like"
	OperatorILike Operator = "ilike"
	OperatorIn    Operator = "in"
	OperatorNotIn Operator = "notin"
)

var operators = map[Operator]bool{
	OperatorEq: true, OperatorNe: true, OperatorGt: true, OperatorGte: true, OperatorLt: true,
	OperatorLte: true, OperatorLike: true, OperatorILike: true, OperatorIn: true, OperatorNotIn: true,
}

// Valid reports whether o belongs to the supported operator set
func (o Operator) Valid() bool {
	return operators[o]
}

type QueryFilter struct {
	Column   string      `json:"column"`   // Column name, Go field name or json name
	Operator Operator    `json:"operator"` // One of the Operator constants
	Value    interface{} `json:"value"`    // Slice for in/notin, string for like/ilike
}

type QueryOptions struct {
	Limit          *int          `json:"limit"`          // Page size, >= 0
	Offset         *int          `json:"offset"`         // Rows to skip, >= 0
	OrderBy        *string       `json:"orderBy"`        // Column to sort by
	OrderDirection *string       `json:"orderDirection"` // asc (default) or desc
	Filters        []QueryFilter `json:"filters"`        // Combined with AND
}

// Paginated reports whether the caller asked for a page window, which also
// means the total count of matching rows is reported
func (o QueryOptions) Paginated() bool {
	return o.Limit != nil || o.Offset != nil
}

// Values is a record of column -> value used for inserts, updates and lookups
type Values map[string]interface{}
