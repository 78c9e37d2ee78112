package routefield

import "strings"

// InClauseBatchSize bounds the number of values in a single SQL IN
// clause; Oracle has a hard limit of 1000.
const InClauseBatchSize = 1000

// InClause builds a SQL IN predicate for a field and value list. Value
// lists larger than the batch size are split into multiple IN clauses
// OR'ed together. Returns "" for an empty list.
func InClause(fieldName string, values []string, isStringType bool) string {
	if len(values) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteByte('(')
	for i := 0; i < len(values); i += InClauseBatchSize {
		if i > 0 {
			sb.WriteString(" OR ")
		}
		end := i + InClauseBatchSize
		if end > len(values) {
			end = len(values)
		}
		batch := values[i:end]
		if isStringType {
			sb.WriteString(fieldName)
			sb.WriteString(" IN ('")
			for j, v := range batch {
				if j > 0 {
					sb.WriteString("','")
				}
				sb.WriteString(EscapeSQL(v))
			}
			sb.WriteString("')")
		} else {
			sb.WriteString(fieldName)
			sb.WriteString(" IN (")
			sb.WriteString(strings.Join(batch, ","))
			sb.WriteByte(')')
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

// ConcatWhere joins two where clauses with a conjunction, defaulting to
// AND. Blank clauses on either side are handled safely.
func ConcatWhere(where1, where2, conjunction string) string {
	if conjunction == "" {
		conjunction = "AND"
	}
	if strings.TrimSpace(where2) == "" {
		return where1
	}
	if strings.TrimSpace(where1) == "" {
		return where2
	}
	return "(" + where1 + ") " + conjunction + " (" + where2 + ")"
}
