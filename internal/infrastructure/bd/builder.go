package db

import (
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"equipment-system/pkg/types"
)

// ApplyFilters adds equality conditions for whitelisted filter keys. A comma separated
// value becomes an IN list.
func ApplyFilters(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string) sq.SelectBuilder {
	for jsonField, val := range filter.Filter {
		dbCol, ok := allowedMap[jsonField]
		if !ok {
			continue
		}

		if s, ok := val.(string); ok && strings.Contains(s, ",") {
			builder = builder.Where(sq.Eq{dbCol: strings.Split(s, ",")})
		} else {
			builder = builder.Where(sq.Eq{dbCol: val})
		}
	}
	return builder
}

// ApplyIntFilters is ApplyFilters for integer columns such as statuses. Values that do
// not parse are dropped.
func ApplyIntFilters(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string) sq.SelectBuilder {
	for jsonField, dbCol := range allowedMap {
		raw := filter.Value(jsonField)
		if raw == "" {
			continue
		}
		var values []int
		for _, part := range strings.Split(raw, ",") {
			if v, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
				values = append(values, v)
			}
		}
		switch len(values) {
		case 0:
		case 1:
			builder = builder.Where(sq.Eq{dbCol: values[0]})
		default:
			builder = builder.Where(sq.Eq{dbCol: values})
		}
	}
	return builder
}

// ApplyListParams adds ordering and paging. defaultOrder is used when the request
// did not ask for a known sort column.
func ApplyListParams(builder sq.SelectBuilder, filter types.Filter, allowedSort map[string]string, defaultOrder ...string) sq.SelectBuilder {
	ordered := false
	for jsonField, dir := range filter.Sort {
		dbCol, ok := allowedSort[jsonField]
		if !ok {
			continue
		}
		sqlDir := "ASC"
		if strings.ToLower(dir) == "desc" {
			sqlDir = "DESC"
		}
		builder = builder.OrderBy(fmt.Sprintf("%s %s", dbCol, sqlDir))
		ordered = true
	}
	if !ordered && len(defaultOrder) > 0 {
		builder = builder.OrderBy(defaultOrder...)
	}

	if filter.WithPagination {
		if filter.Limit > 0 {
			builder = builder.Limit(uint64(filter.Limit))
		}
		if filter.Offset > 0 {
			builder = builder.Offset(uint64(filter.Offset))
		}
	}

	return builder
}
