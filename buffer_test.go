// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package uplog

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDoubleBufferWriteAndSwap(t *testing.T) {
	d := NewDoubleBuffer(1024)

	assert.NoError(t, d.Write([]byte("hello")))
	assert.NoError(t, d.Write([]byte("world")))

	assert.Nil(t, d.Read(), "nothing moved to the read side yet")

	n := d.Swap()
	assert.Equal(t, len("helloworld"), n)
	assert.Equal(t, []byte("helloworld"), d.Read())

	assert.Nil(t, d.Read(), "Read drains the buffer")
}

func TestDoubleBufferExactCapacityBoundary(t *testing.T) {
	d := NewDoubleBuffer(4)

	assert.NoError(t, d.Write([]byte("abcd")), "writing exactly capacity bytes succeeds")
	assert.ErrorIs(t, d.Write([]byte("e")), ErrBufferFull, "one more byte overflows")
}

func TestDoubleBufferFull(t *testing.T) {
	d := NewDoubleBuffer(4)

	assert.NoError(t, d.Write([]byte("ab")))
	assert.ErrorIs(t, d.Write([]byte("abc")), ErrBufferFull)

	// The write side keeps its earlier, successfully written contents.
	d.Swap()
	assert.Equal(t, []byte("ab"), d.Read())
}

func TestDoubleBufferSwapIsEmptyAfterwards(t *testing.T) {
	d := NewDoubleBuffer(64)
	assert.NoError(t, d.Write([]byte("x")))
	d.Swap()
	assert.Equal(t, 0, d.Swap(), "a second swap with no new writes reports zero bytes")
}

func TestDoubleBufferConcurrentWriteAndSwap(t *testing.T) {
	d := NewDoubleBuffer(1 << 20)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = d.Write([]byte("x"))
		}()
	}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			d.Swap()
			d.Read()
		}
		close(done)
	}()

	wg.Wait()
	<-done
	d.Swap()
	// Whatever remains must be a whole number of single-byte writes.
	assert.True(t, len(d.Read()) >= 0)
}
