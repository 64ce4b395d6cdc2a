package extract

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter yields 0..n-1.
func counter(n int) func() (int, bool, error) {
	i := 0
	return func() (int, bool, error) {
		if i == n {
			return 0, false, nil
		}
		i++
		return i - 1, true, nil
	}
}

func TestOrderedMap_PreservesOrder(t *testing.T) {
	var got []string
	n, err := orderedMap(8, counter(500), strconv.Itoa, func(in int, out string) error {
		assert.Equal(t, strconv.Itoa(in), out)
		got = append(got, out)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 500, n)

	require.Len(t, got, 500)
	for i, s := range got {
		assert.Equal(t, strconv.Itoa(i), s, "result %d out of order", i)
	}
}

func TestOrderedMap_DefaultWorkers(t *testing.T) {
	calls := 0
	n, err := orderedMap(0, counter(20), func(i int) int { return i * i }, func(int, int) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 20, n)
	assert.Equal(t, 20, calls)
}

func TestOrderedMap_Empty(t *testing.T) {
	n, err := orderedMap(4, counter(0), strconv.Itoa, func(int, string) error {
		t.Fatal("emit called without input")
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOrderedMap_EmitErrorStopsInput(t *testing.T) {
	stop := errors.New("stop")

	calls := 0
	n, err := orderedMap(4, counter(100000), strconv.Itoa, func(in int, _ string) error {
		calls++
		if in == 9 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 10, calls)
	assert.Less(t, n, 1000, "input keeps being read after emit failed")
}

func TestOrderedMap_NextErrorAfterEarlierInputs(t *testing.T) {
	bad := errors.New("bad input")
	i := 0
	next := func() (int, bool, error) {
		if i == 5 {
			return 0, false, bad
		}
		i++
		return i - 1, true, nil
	}

	var emitted []int
	n, err := orderedMap(3, next, func(i int) int { return i }, func(in, _ int) error {
		emitted = append(emitted, in)
		return nil
	})
	assert.ErrorIs(t, err, bad)
	assert.Equal(t, 5, n)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, emitted)
}
