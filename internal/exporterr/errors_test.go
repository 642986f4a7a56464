package exporterr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsWrapSentinels(t *testing.T) {
	err := Unsupported("get_item", "step %d", 2)
	assert.True(t, errors.Is(err, ErrUnsupported))
	assert.EqualError(t, err, "unsupported operation: get_item: step 2")

	assert.True(t, errors.Is(Internal("x"), ErrInternal))
	assert.True(t, errors.Is(Config("y"), ErrConfig))
	assert.False(t, errors.Is(Config("y"), ErrInternal))
}
