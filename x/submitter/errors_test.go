package submitter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("iteration: %w", newError(KindInvalidRange, "get_batch_range", cause).WithContext("start", 5))

	require.Equal(t, KindInvalidRange, KindOf(err))
	require.False(t, IsTransient(err))
	require.ErrorIs(t, err, cause)
	require.ErrorContains(t, err, "submitter invalid_range error in get_batch_range")

	require.Equal(t, KindTransient, KindOf(cause))
	require.True(t, IsTransient(cause))
	require.False(t, IsTransient(nil))
}
