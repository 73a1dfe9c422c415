package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := Wrap(TypeParsing, "catalog unreadable", stderrors.New("unexpected EOF"))
	assert.Equal(t, "[PARSING_ERROR] catalog unreadable: unexpected EOF", err.Error())

	assert.Equal(t, "[NOT_FOUND] quote not found: abc", NotFound("quote", "abc").Error())
}

func TestTypeOfFollowsWrapChain(t *testing.T) {
	inner := Input("bad date").WithContext("historicalDate", "2024-13-01")
	wrapped := fmt.Errorf("quote failed: %w", inner)

	assert.Equal(t, TypeInput, TypeOf(wrapped))
	assert.True(t, IsType(wrapped, TypeInput))
	assert.False(t, IsType(wrapped, TypeStorage))
	assert.Equal(t, TypeInternal, TypeOf(stderrors.New("plain")))
}

func TestWithContext(t *testing.T) {
	err := New(TypeCatalog, "invalid row").WithContext("row", 3).WithContext("table", "dthcs")
	assert.Equal(t, map[string]interface{}{"row": 3, "table": "dthcs"}, err.Context)
}
