package routefield

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInClause_Strings(t *testing.T) {
	got := InClause("NAME", []string{"a", "b'c"}, true)
	assert.Equal(t, "(NAME IN ('a','b''c'))", got)
}

func TestInClause_Numbers(t *testing.T) {
	got := InClause("ID", []string{"1", "2", "3"}, false)
	assert.Equal(t, "(ID IN (1,2,3))", got)
}

func TestInClause_Empty(t *testing.T) {
	assert.Equal(t, "", InClause("ID", nil, false))
}

func TestInClause_BatchesAtLimit(t *testing.T) {
	values := make([]string, InClauseBatchSize+1)
	for i := range values {
		values[i] = fmt.Sprint(i)
	}
	got := InClause("ID", values, false)
	assert.Equal(t, 2, strings.Count(got, "IN ("))
	assert.Contains(t, got, ") OR ID IN (")
	assert.True(t, strings.HasPrefix(got, "("))
	assert.True(t, strings.HasSuffix(got, ")"))
}

func TestConcatWhere(t *testing.T) {
	assert.Equal(t, "(a=1) AND (b=2)", ConcatWhere("a=1", "b=2", ""))
	assert.Equal(t, "(a=1) OR (b=2)", ConcatWhere("a=1", "b=2", "OR"))
	assert.Equal(t, "a=1", ConcatWhere("a=1", "", ""))
	assert.Equal(t, "b=2", ConcatWhere("", "b=2", ""))
}
