// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ipaddress

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValid(t *testing.T) {
	cases := []struct {
		token string
		want  bool
	}{
		{"1.2.3.4", true},
		{"0.0.0.0", true},
		{"255.255.255.255", true},
		{"192.168.001.1", true},
		{"0001.2.3.4", true},
		{"256.1.1.1", false},
		{"999.1.1.1", false},
		{"1.2.3", false},
		{"1.2.3.4.5", false},
		{"1.2.3.", false},
		{"a.b.c.d", false},
		{"1.2.3.-4", false},
		{"1.2.3. 4", false},
		{"", false},
		{"....", false},
		{"1.2.3.99999999999999999999999", false},
		{"１.2.3.4", false}, // full-width digit
	}

	for _, tc := range cases {
		t.Run(tc.token, func(t *testing.T) {
			assert.Equal(t, tc.want, IsValid(tc.token))
		})
	}
}

func TestIsValid_AllOctetsInRange(t *testing.T) {
	for n := 0; n <= 255; n++ {
		token := fmt.Sprintf("%d.%d.%d.%d", n, 255-n, n/2, n%7)
		assert.True(t, IsValid(token), token)
	}
	for n := 256; n < 1000; n += 37 {
		assert.False(t, IsValid(fmt.Sprintf("1.1.1.%d", n)))
		assert.False(t, IsValid(fmt.Sprintf("%d.1.1.1", n)))
	}
}

func TestFindFirst(t *testing.T) {
	addr, ok := FindFirst("  1.2.3.4 (edge)")
	require.True(t, ok)
	assert.Equal(t, Address("1.2.3.4"), addr)

	addr, ok = FindFirst("host=10.0.0.1:443")
	require.True(t, ok)
	assert.Equal(t, Address("10.0.0.1"), addr)

	_, ok = FindFirst("999.1.1.1 then 1.2.3.4")
	assert.False(t, ok, "only the first candidate is considered")

	_, ok = FindFirst("no address here")
	assert.False(t, ok)

	_, ok = FindFirst("")
	assert.False(t, ok)
}

func TestFindAll(t *testing.T) {
	got := FindAll("1.1.1.1 300.1.1.1 8.8.8.8 1.1.1.1")
	assert.Equal(t, []Address{"1.1.1.1", "8.8.8.8", "1.1.1.1"}, got)
	assert.Nil(t, FindAll("nothing"))
}

func TestRangeFilter(t *testing.T) {
	f, err := NewRangeFilter([]string{"private", "1.1.1.0-1.1.1.9", "8.8.8.8", " "})
	require.NoError(t, err)

	assert.True(t, f.Excludes("10.1.2.3"))
	assert.True(t, f.Excludes("192.168.001.1"))
	assert.True(t, f.Excludes("1.1.1.5"))
	assert.True(t, f.Excludes("8.8.8.8"))
	assert.False(t, f.Excludes("1.1.1.10"))
	assert.False(t, f.Excludes("8.8.4.4"))
}

func TestRangeFilter_Empty(t *testing.T) {
	f, err := NewRangeFilter(nil)
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.False(t, f.Excludes("10.0.0.1"))
}

func TestRangeFilter_Invalid(t *testing.T) {
	for _, spec := range []string{"10.0.0.0/33", "1.1.1.9-1.1.1.0", "not-an-ip"} {
		_, err := NewRangeFilter([]string{spec})
		assert.Error(t, err, spec)
	}
}
