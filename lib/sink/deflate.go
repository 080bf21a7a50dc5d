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

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// Deflate compresses its input with raw DEFLATE (no zlib wrapper) into the
// underlying writer. Flush materialises all compressed bytes for the input
// consumed so far, so the output stream can be measured at that boundary.
// Close emits the final block; the sink must not be written afterwards.
type Deflate struct {
	fw    *flate.Writer
	w     io.Writer
	empty bool
}

func NewDeflate(level int, w io.Writer) (*Deflate, error) {
	fw, err := flate.NewWriter(w, level)
	if err != nil {
		return nil, fmt.Errorf("initializing deflate: %w", err)
	}
	return &Deflate{fw: fw, w: w, empty: true}, nil
}

func (d *Deflate) Write(p []byte) (int, error) {
	if len(p) > 0 {
		d.empty = false
	}
	return d.fw.Write(p)
}

// Flush emits a full flush point: pending output is written out and the
// compressor restarts without history, so later data never refers back
// across the point. Writing nothing and then flushing would emit a
// gratuitous empty block, so a sink that never saw input skips the flush.
func (d *Deflate) Flush() error {
	if d.empty {
		return nil
	}
	if err := d.fw.Flush(); err != nil {
		return err
	}
	d.fw.Reset(d.w)
	return nil
}

func (d *Deflate) Close() error {
	return d.fw.Close()
}
