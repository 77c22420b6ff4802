package store

import (
	"fmt"
	"strings"
)

const (
	defaultLimit = 50
	maxLimit     = 500

	orderByCreated      = "created_at"
	orderByValuation    = "valuation_price"
	orderByListingPrice = "listing_price"
)

// validOrderBy maps allowed OrderBy values to their SQL column expressions.
var validOrderBy = map[string]string{
	orderByCreated:      "created_at DESC",
	orderByValuation:    "valuation_price DESC",
	orderByListingPrice: "listing_price ASC NULLS LAST",
}

const defaultOrderBy = "created_at DESC"

const baseEvaluationsSelect = "SELECT " + evaluationColumns + " FROM evaluations"

const countEvaluationsSelect = "SELECT COUNT(*) FROM evaluations"

// ToSQL builds the data and count queries for q along with their positional
// parameters. A nil query uses the defaults.
func (q *EvaluationQuery) ToSQL() (dataSQL, countSQL string, args []any) {
	if q == nil {
		q = &EvaluationQuery{}
	}

	var conditions []string
	paramIdx := 1

	if q.Maker != nil {
		conditions = append(conditions, fmt.Sprintf("lower(maker) = lower($%d)", paramIdx))
		args = append(args, *q.Maker)
		paramIdx++
	}

	if q.Rating != nil {
		conditions = append(conditions, fmt.Sprintf("rating = $%d", paramIdx))
		args = append(args, *q.Rating)
		paramIdx++
	}

	if q.Since != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", paramIdx))
		args = append(args, *q.Since)
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	orderClause := defaultOrderBy
	if col, ok := validOrderBy[q.OrderBy]; ok {
		orderClause = col
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	offset := max(q.Offset, 0)

	dataSQL = fmt.Sprintf(
		"%s%s ORDER BY %s LIMIT %d OFFSET %d",
		baseEvaluationsSelect, whereClause, orderClause, limit, offset,
	)
	countSQL = countEvaluationsSelect + whereClause

	return dataSQL, countSQL, args
}
