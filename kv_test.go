// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package uplog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKVSetOverwritesExistingKey(t *testing.T) {
	kv := &KV{}
	kv.Set("x", I64(1))
	kv.Set("x", I64(2))

	assert.Equal(t, 1, kv.Len())
	v, ok := kv.Get("x")
	assert.True(t, ok)
	assert.True(t, v.Equal(I64(2)))
}

func TestNewKVLastWriteWinsOnDuplicateKeys(t *testing.T) {
	kv := NewKV(Pair("a", I64(1)), Pair("a", I64(2)), Pair("b", I64(3)))

	assert.Equal(t, 2, kv.Len())
	v, _ := kv.Get("a")
	assert.True(t, v.Equal(I64(2)))
}

func TestKVRangeVisitsInSortedOrder(t *testing.T) {
	kv := NewKV(Pair("c", I64(3)), Pair("a", I64(1)), Pair("b", I64(2)))

	var seen []string
	kv.Range(func(k string, v Value) bool {
		seen = append(seen, k)
		return true
	})

	assert.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestKVRangeStopsEarly(t *testing.T) {
	kv := NewKV(Pair("a", I64(1)), Pair("b", I64(2)), Pair("c", I64(3)))

	var seen []string
	kv.Range(func(k string, v Value) bool {
		seen = append(seen, k)
		return k != "b"
	})

	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestNilKVBehavesAsEmpty(t *testing.T) {
	var kv *KV
	assert.Equal(t, 0, kv.Len())
	assert.Nil(t, kv.Keys())
	_, ok := kv.Get("anything")
	assert.False(t, ok)

	called := false
	kv.Range(func(string, Value) bool { called = true; return true })
	assert.False(t, called)
}

func TestKVEqual(t *testing.T) {
	a := NewKV(Pair("a", I64(1)), Pair("b", Text("x")))
	b := NewKV(Pair("b", Text("x")), Pair("a", I64(1)))
	c := NewKV(Pair("a", I64(1)))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
