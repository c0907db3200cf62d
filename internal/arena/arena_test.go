// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArenaInsertGetRemove(t *testing.T) {
	var a Arena[string]
	r1 := a.Insert("neighbor-a")
	r2 := a.Insert("neighbor-b")

	v, ok := a.Get(r1)
	require.True(t, ok)
	require.Equal(t, "neighbor-a", v)

	require.True(t, a.Remove(r1))
	_, ok = a.Get(r1)
	require.False(t, ok, "stale ref must not resolve after removal")

	// reuse the freed slot; r1's old generation must not alias the new one.
	r3 := a.Insert("neighbor-c")
	_, ok = a.Get(r1)
	require.False(t, ok)
	v3, ok := a.Get(r3)
	require.True(t, ok)
	require.Equal(t, "neighbor-c", v3)

	v2, ok := a.Get(r2)
	require.True(t, ok)
	require.Equal(t, "neighbor-b", v2)
}

func TestArenaRange(t *testing.T) {
	var a Arena[int]
	a.Insert(1)
	a.Insert(2)
	r3 := a.Insert(3)
	a.Remove(r3)

	sum := 0
	a.Range(func(_ Ref, v *int) bool {
		sum += *v
		return true
	})
	require.Equal(t, 3, sum)
	require.Equal(t, 2, a.Len())
}
