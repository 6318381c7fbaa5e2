package request

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DirectionAsc  = "asc"
	DirectionDesc = "desc"
)

// ParseDirection normalises an order direction, defaulting to ascending
func ParseDirection(direction *string) (desc bool, err error) {
	if direction == nil {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(*direction)) {
	case "", DirectionAsc:
		return false, nil
	case DirectionDesc:
		return true, nil
	default:
		return false, fmt.Errorf("invalid order direction %q: must be 'asc' or 'desc'", *direction)
	}
}

// ValidatePagination rejects negative page windows
func ValidatePagination(options QueryOptions) error {
	if options.Limit != nil && *options.Limit < 0 {
		return fmt.Errorf("invalid limit %d: must be >= 0", *options.Limit)
	}
	if options.Offset != nil && *options.Offset < 0 {
		return fmt.Errorf("invalid offset %d: must be >= 0", *options.Offset)
	}
	return nil
}

// ApplyOrder sorts by an already resolved column name
func ApplyOrder(query *gorm.DB, column string, desc bool) *gorm.DB {
	return query.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc})
}

// ApplyPaginationConditions applies limit and offset. Both must have been validated.
func ApplyPaginationConditions(query *gorm.DB, options QueryOptions) *gorm.DB {
	if options.Offset != nil && *options.Offset > 0 {
		query = query.Offset(*options.Offset)
	}

	if options.Limit != nil {
		query = query.Limit(*options.Limit)
	}

	return query
}
