// scanfill - a 2D scan-conversion rasterization library
// Copyright (C) 2026  The scanfill authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package pool provides a size-bucketed allocator for float32 scratch
// slices, reducing GC pressure when many similarly-sized coverage
// buffers are created and discarded.
package pool

import "sync"

// Float32Pool reuses []float32 buffers, grouped by length.
//
// All methods are safe for concurrent use.
type Float32Pool struct {
	mu      sync.Mutex
	buckets map[int][][]float32
	maxSize int // max buffers retained per bucket
}

// NewFloat32Pool creates a pool retaining at most maxPerBucket buffers
// of each size. maxPerBucket of 0 means unlimited.
func NewFloat32Pool(maxPerBucket int) *Float32Pool {
	return &Float32Pool{
		buckets: make(map[int][][]float32),
		maxSize: maxPerBucket,
	}
}

// Get returns a zeroed buffer of exactly n elements.
func (p *Float32Pool) Get(n int) []float32 {
	p.mu.Lock()
	bucket := p.buckets[n]
	if len(bucket) > 0 {
		buf := bucket[len(bucket)-1]
		p.buckets[n] = bucket[:len(bucket)-1]
		p.mu.Unlock()
		clear(buf)
		return buf
	}
	p.mu.Unlock()
	return make([]float32, n)
}

// Put returns a buffer to the pool. Nil buffers are ignored; buffers
// are discarded when the bucket is full.
func (p *Float32Pool) Put(buf []float32) {
	if buf == nil {
		return
	}
	n := len(buf)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.maxSize > 0 && len(p.buckets[n]) >= p.maxSize {
		return
	}
	p.buckets[n] = append(p.buckets[n], buf)
}

// Len reports how many buffers of size n are currently retained.
func (p *Float32Pool) Len(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buckets[n])
}
