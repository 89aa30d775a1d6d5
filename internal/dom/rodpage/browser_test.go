package rodpage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"stanfordwho-parser/internal/dom"
)

func TestMapErrDetached(t *testing.T) {
	tests := []struct {
		err   error
		stale bool
	}{
		{errors.New("{-32000 Could not find node with given id }"), true},
		{errors.New("{-32000 Cannot find context with specified id }"), true},
		{fmt.Errorf("eval: %w", errors.New("Execution context was destroyed.")), true},
		{errors.New("context deadline exceeded"), false},
	}

	for _, tt := range tests {
		got := mapErr(tt.err)
		assert.Equal(t, tt.stale, dom.IsStale(got), tt.err.Error())
	}

	assert.NoError(t, mapErr(nil))
}
