/*
 * Copyright (c) SAS Institute Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sink

import "io"

// Chunk receives exactly one window of input and is closed when the window
// ends. Each call site supplies its own concrete chunk type via a factory.
type Chunk interface {
	io.Writer
	Close() error
}

// Chunker splits its input into fixed-size windows. For each complete
// window, and for a trailing partial window if one exists, it obtains a
// fresh chunk from the factory, feeds it the window, closes it and retains
// it. Close must be called after the last write; an input with no bytes
// yields no chunks.
type Chunker struct {
	size    int64
	factory func() Chunk
	cur     Chunk
	written int64
	chunks  []Chunk
}

func NewChunker(chunkSize int64, factory func() Chunk) *Chunker {
	return &Chunker{size: chunkSize, factory: factory, cur: factory()}
}

func (c *Chunker) Write(d []byte) (int, error) {
	total := len(d)
	for len(d) > 0 {
		n := c.size - c.written
		if n > int64(len(d)) {
			n = int64(len(d))
		}
		if _, err := c.cur.Write(d[:n]); err != nil {
			return total - len(d), err
		}
		c.written += n
		d = d[n:]
		if c.written == c.size {
			if err := c.endChunk(); err != nil {
				return total - len(d), err
			}
		}
	}
	return total, nil
}

func (c *Chunker) Close() error {
	return c.endChunk()
}

// Chunks returns the completed windows in input order. Valid after Close.
func (c *Chunker) Chunks() []Chunk {
	return c.chunks
}

func (c *Chunker) endChunk() error {
	if c.written == 0 {
		return nil
	}
	if err := c.cur.Close(); err != nil {
		return err
	}
	c.chunks = append(c.chunks, c.cur)
	c.cur = c.factory()
	c.written = 0
	return nil
}
