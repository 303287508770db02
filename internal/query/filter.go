package query

import (
	"fmt"
	"strings"
)

// ComposeFilter translates the normalized filters into a SQL fragment with
// positional placeholders starting at startIndex, plus the matching
// parameter list. Filter dimensions are OR-combined: an item matches if it
// belongs to any selected company OR its platform URL contains the
// substring. Conditions are appended in fixed order (companies, then
// platform) so parameter indices stay deterministic.
//
// Returns the fragment (empty when no filters are set), the parameters,
// and the next free placeholder index.
func ComposeFilter(p Params, startIndex int) (string, []interface{}, int) {
	var conditions []string
	var params []interface{}
	idx := startIndex

	if len(p.Companies) > 0 {
		conditions = append(conditions, fmt.Sprintf("pc.id = ANY($%d::int[])", idx))
		params = append(params, p.Companies)
		idx++
	}

	if p.Platform != "" {
		conditions = append(conditions, fmt.Sprintf("m.homepage_url ILIKE $%d", idx))
		params = append(params, "%"+p.Platform+"%")
		idx++
	}

	if len(conditions) == 0 {
		return "", nil, idx
	}

	return " AND (" + strings.Join(conditions, " OR ") + ")", params, idx
}
