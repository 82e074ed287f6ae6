// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package uplog

import "sort"

// KV is an ordered, key-unique mapping from text keys to Values.
// Iteration follows key sort order, which is what makes textual
// rendering and on-disk output deterministic across runs.
type KV struct {
	pairs []kvPair
}

type kvPair struct {
	Key   string
	Value Value
}

// NewKV builds a KV from the given key/value pairs, sorting and
// de-duplicating (last write for a key wins, same as repeated Set).
func NewKV(pairs ...kvPair) *KV {
	kv := &KV{}
	for _, p := range pairs {
		kv.Set(p.Key, p.Value)
	}
	return kv
}

// Pair is a convenience constructor for NewKV's varargs.
func Pair(key string, v Value) kvPair { return kvPair{Key: key, Value: v} }

// Set inserts or updates key, keeping pairs sorted by key.
func (kv *KV) Set(key string, v Value) {
	i := sort.Search(len(kv.pairs), func(i int) bool { return kv.pairs[i].Key >= key })
	if i < len(kv.pairs) && kv.pairs[i].Key == key {
		kv.pairs[i].Value = v
		return
	}
	kv.pairs = append(kv.pairs, kvPair{})
	copy(kv.pairs[i+1:], kv.pairs[i:])
	kv.pairs[i] = kvPair{Key: key, Value: v}
}

// Get returns the value stored at key, if any.
func (kv *KV) Get(key string) (Value, bool) {
	if kv == nil {
		return Value{}, false
	}
	i := sort.Search(len(kv.pairs), func(i int) bool { return kv.pairs[i].Key >= key })
	if i < len(kv.pairs) && kv.pairs[i].Key == key {
		return kv.pairs[i].Value, true
	}
	return Value{}, false
}

// Len returns the number of entries.
func (kv *KV) Len() int {
	if kv == nil {
		return 0
	}
	return len(kv.pairs)
}

// Keys returns the keys in sorted order.
func (kv *KV) Keys() []string {
	if kv == nil {
		return nil
	}
	keys := make([]string, len(kv.pairs))
	for i, p := range kv.pairs {
		keys[i] = p.Key
	}
	return keys
}

// Range calls f for every entry in key-sorted order, stopping early if
// f returns false.
func (kv *KV) Range(f func(key string, v Value) bool) {
	if kv == nil {
		return
	}
	for _, p := range kv.pairs {
		if !f(p.Key, p.Value) {
			return
		}
	}
}

// Equal reports structural equality between two KVs.
func (kv *KV) Equal(o *KV) bool {
	if kv.Len() != o.Len() {
		return false
	}
	an, bn := kv.Len(), o.Len()
	if an == 0 && bn == 0 {
		return true
	}
	for i := range kv.pairs {
		if kv.pairs[i].Key != o.pairs[i].Key || !kv.pairs[i].Value.Equal(o.pairs[i].Value) {
			return false
		}
	}
	return true
}

// Encode appends kv's wire encoding (a definite-length CBOR-class map,
// major type 5) to dst, in key-sorted order.
func (kv *KV) Encode(dst []byte) []byte {
	n := kv.Len()
	dst = encodeHeader(dst, majorMap, uint64(n))
	for _, p := range kv.pairs {
		dst = Text(p.Key).Encode(dst)
		dst = p.Value.Encode(dst)
	}
	return dst
}

func (c *cursor) decodeKV() (*KV, error) {
	first, err := c.readByte()
	if err != nil {
		return nil, err
	}
	major := first >> 5
	info := first & 0x1f
	if major != majorMap {
		return nil, ErrFormat
	}
	n, err := c.readArgument(info)
	if err != nil {
		return nil, err
	}
	kv := &KV{pairs: make([]kvPair, 0, n)}
	for i := uint64(0); i < n; i++ {
		keyVal, err := c.decodeValue()
		if err != nil {
			return nil, err
		}
		key, ok := keyVal.AsText()
		if !ok {
			return nil, ErrFormat
		}
		val, err := c.decodeValue()
		if err != nil {
			return nil, err
		}
		kv.pairs = append(kv.pairs, kvPair{Key: key, Value: val})
	}
	return kv, nil
}

// DecodeKV decodes a KV from the front of b, reporting consumed bytes.
func DecodeKV(b []byte) (*KV, int, error) {
	c := &cursor{b: b}
	kv, err := c.decodeKV()
	if err != nil {
		return nil, 0, err
	}
	return kv, c.pos, nil
}
