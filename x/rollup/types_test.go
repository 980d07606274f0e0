package rollup

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBatchRangeValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, BatchRange{Start: 3, End: 3}.Validate())
	require.NoError(t, BatchRange{Start: 3, End: 9}.Validate())

	err := BatchRange{Start: 10, End: 9}.Validate()
	require.ErrorIs(t, err, ErrInvalidRange)
	require.Zero(t, BatchRange{Start: 10, End: 9}.Len())
	require.Equal(t, uint64(6), BatchRange{Start: 3, End: 9}.Len())
	require.True(t, BatchRange{Start: 4, End: 4}.Empty())
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Role{
		"producer":  RoleProducer,
		"Sequencer": RoleProducer,
		"follower":  RoleFollower,
		"verifier":  RoleFollower,
	} {
		got, err := ParseRole(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseRole("observer")
	require.Error(t, err)

	_, err = (&Info{Mode: "observer"}).Snapshot(Addresses{})
	require.Error(t, err)
}
