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

// Package sink provides the streaming primitives the archiver is built
// from. A sink is an io.Writer; transforms that buffer internally also
// implement Close, which must be called to flush them. Composing sinks
// with Multi lets one pass over the input feed several consumers at once.
package sink

import (
	"crypto/sha256"
	"encoding/base64"
	"hash"
	"hash/crc32"
	"io"
	"strings"
)

// Offset counts bytes written to it and discards the data.
type Offset struct {
	n int64
}

func (o *Offset) Write(d []byte) (int, error) {
	o.n += int64(len(d))
	return len(d), nil
}

func (o *Offset) Offset() int64 {
	return o.n
}

// CRC32 accumulates a PKZIP CRC-32 over everything written to it.
type CRC32 struct {
	crc uint32
}

func (c *CRC32) Write(d []byte) (int, error) {
	c.crc = crc32.Update(c.crc, crc32.IEEETable, d)
	return len(d), nil
}

func (c *CRC32) Sum32() uint32 {
	return c.crc
}

// SHA256 accumulates a SHA-256 digest. Digest may be called at any point
// without disturbing the running state, so hashing can continue afterwards.
type SHA256 struct {
	h hash.Hash
}

func NewSHA256() *SHA256 {
	return &SHA256{h: sha256.New()}
}

func (s *SHA256) Write(d []byte) (int, error) {
	return s.h.Write(d)
}

func (s *SHA256) Digest() []byte {
	return s.h.Sum(nil)
}

// Base64 encodes its input as standard base64 with no line breaks. The
// encoded form is available from String after Close.
type Base64 struct {
	buf strings.Builder
	enc io.WriteCloser
}

func NewBase64() *Base64 {
	b := new(Base64)
	b.enc = base64.NewEncoder(base64.StdEncoding, &b.buf)
	return b
}

func (b *Base64) Write(d []byte) (int, error) {
	return b.enc.Write(d)
}

func (b *Base64) Close() error {
	return b.enc.Close()
}

func (b *Base64) String() string {
	return b.buf.String()
}

// Multi forwards every write to each member in order. A short write by any
// member aborts the whole write. Members are closed individually by their
// owners; Multi adds no state of its own.
func Multi(sinks ...io.Writer) io.Writer {
	return io.MultiWriter(sinks...)
}
