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

// Package zipbuilder writes ZIP64 archives sequentially. Members stream
// through a sink pipeline that computes CRC, sizes and per-window SHA-256
// digests in one pass; the local header is emitted once those are known.
// Individual members use classic 32-bit records, the trailer uses the
// ZIP64 end-of-directory form.
package zipbuilder

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/sassoftware/appxpack/lib/sink"
)

// BlockSize is the window over which member content is hashed for the
// block map.
// https://msdn.microsoft.com/en-us/library/windows/desktop/jj709947.aspx
const BlockSize = 64 * 1024

// DataFunc produces one member's uncompressed content into w. It is
// called at most once.
type DataFunc func(w io.Writer) error

// Writer appends members and finally a central directory to an archive.
type Writer struct {
	Entries []*FileEntry

	w   io.Writer
	off sink.Offset
}

func NewWriter(w io.Writer) *Writer {
	z := &Writer{}
	z.w = sink.Multi(w, &z.off)
	return z
}

// Offset is the number of archive bytes written so far.
func (z *Writer) Offset() int64 {
	return z.off.Offset()
}

// WriteEntry streams the content produced by data through the store or
// deflate pipeline, then emits the member record. A non-zero level selects
// deflate; the encoder always runs at its best setting, the level's only
// role is choosing the path. tee, if not nil, additionally receives the
// exact archive bytes of the record for archive-level digests.
func (z *Writer) WriteEntry(name string, level int, data DataFunc, tee io.Writer) (*FileEntry, error) {
	var entry *FileEntry
	var body []byte
	var err error
	if level == 0 {
		entry, body, err = storeEntry(name, data)
	} else {
		entry, body, err = deflateEntry(name, data)
	}
	if err != nil {
		return nil, err
	}
	if err := z.AppendEntry(entry, body, tee); err != nil {
		return nil, err
	}
	return entry, nil
}

// AppendEntry emits a fully-described member: local header then body. The
// entry's offset is assigned here.
func (z *Writer) AppendEntry(e *FileEntry, body []byte, tee io.Writer) error {
	e.Offset = z.off.Offset()
	w := z.w
	if tee != nil {
		w = sink.Multi(z.w, tee)
	}
	if err := e.WriteLocalHeader(w); err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	z.Entries = append(z.Entries, e)
	return nil
}

// WriteDirectoryTo replays the central directory and trailer for the
// members written so far into w, without touching the archive. The
// signature digests the directory this way before it exists.
func (z *Writer) WriteDirectoryTo(w io.Writer) error {
	return z.writeDirectory(w)
}

// Finish writes the real central directory and ZIP64 trailer.
func (z *Writer) Finish() error {
	return z.writeDirectory(z.w)
}

func (z *Writer) writeDirectory(w io.Writer) error {
	dirOffset := z.off.Offset()
	var dirSize int64
	for _, e := range z.Entries {
		if err := e.WriteDirectoryEntry(w); err != nil {
			return err
		}
		dirSize += e.directoryEntrySize()
	}
	count := uint64(len(z.Entries))
	end64 := zip64End{
		Signature:      directory64EndSignature,
		RecordSize:     directory64EndLen - 12,
		CreatorVersion: zip45,
		ReaderVersion:  zip45,
		DiskCDCount:    count,
		TotalCDCount:   count,
		CDSize:         uint64(dirSize),
		CDOffset:       uint64(dirOffset),
	}
	if err := binary.Write(w, binary.LittleEndian, end64); err != nil {
		return err
	}
	loc64 := zip64Loc{
		Signature: directory64LocSignature,
		Offset:    uint64(dirOffset + dirSize),
		DiskCount: 1,
	}
	if err := binary.Write(w, binary.LittleEndian, loc64); err != nil {
		return err
	}
	end := zipEndRecord{
		Signature:    directoryEndSignature,
		DiskCDCount:  uint16Max,
		TotalCDCount: uint16Max,
		CDSize:       uint32Max,
		CDOffset:     uint32Max,
	}
	return binary.Write(w, binary.LittleEndian, end)
}

// hashChunk digests one stored window.
type hashChunk struct {
	h *sink.SHA256
}

func (c *hashChunk) Write(d []byte) (int, error) { return c.h.Write(d) }
func (c *hashChunk) Close() error                { return nil }

func storeEntry(name string, data DataFunc) (*FileEntry, []byte, error) {
	var crc sink.CRC32
	var off sink.Offset
	var buf bytes.Buffer
	chunker := sink.NewChunker(BlockSize, func() sink.Chunk {
		return &hashChunk{h: sink.NewSHA256()}
	})
	w := sink.Multi(&crc, &off, &buf, chunker)
	if err := data(w); err != nil {
		return nil, nil, err
	}
	if err := chunker.Close(); err != nil {
		return nil, nil, err
	}
	blocks := make([]Block, 0, len(chunker.Chunks()))
	for _, c := range chunker.Chunks() {
		blocks = append(blocks, Block{
			SHA256:         c.(*hashChunk).h.Digest(),
			CompressedSize: NotCompressed,
		})
	}
	size := off.Offset()
	return &FileEntry{
		Name:             name,
		SanitizedName:    SanitizeName(name),
		Method:           Store,
		CompressedSize:   size,
		UncompressedSize: size,
		CRC32:            crc.Sum32(),
		Blocks:           blocks,
	}, buf.Bytes(), nil
}

// deflateChunk hashes one window and measures the span it occupies in the
// shared compressed stream. Closing the chunk full-flushes the compressor
// so the span ends on a known byte boundary.
type deflateChunk struct {
	h     *sink.SHA256
	defl  *sink.Deflate
	off   *sink.Offset
	start int64
	end   int64
}

func (c *deflateChunk) Write(d []byte) (int, error) {
	if _, err := c.h.Write(d); err != nil {
		return 0, err
	}
	return c.defl.Write(d)
}

func (c *deflateChunk) Close() error {
	if err := c.defl.Flush(); err != nil {
		return err
	}
	c.end = c.off.Offset()
	return nil
}

func deflateEntry(name string, data DataFunc) (*FileEntry, []byte, error) {
	var buf bytes.Buffer
	var compOff sink.Offset
	defl, err := sink.NewDeflate(flate.BestCompression, sink.Multi(&buf, &compOff))
	if err != nil {
		return nil, nil, err
	}
	chunker := sink.NewChunker(BlockSize, func() sink.Chunk {
		return &deflateChunk{
			h:     sink.NewSHA256(),
			defl:  defl,
			off:   &compOff,
			start: compOff.Offset(),
		}
	})
	var uncompOff sink.Offset
	var crc sink.CRC32
	w := sink.Multi(chunker, &uncompOff, &crc)
	if err := data(w); err != nil {
		return nil, nil, err
	}
	if err := chunker.Close(); err != nil {
		return nil, nil, fmt.Errorf("deflate: %w", err)
	}
	if err := defl.Close(); err != nil {
		return nil, nil, fmt.Errorf("deflate: %w", err)
	}
	blocks := make([]Block, 0, len(chunker.Chunks()))
	for _, c := range chunker.Chunks() {
		dc := c.(*deflateChunk)
		blocks = append(blocks, Block{
			SHA256:         dc.h.Digest(),
			CompressedSize: dc.end - dc.start,
		})
	}
	return &FileEntry{
		Name:             name,
		SanitizedName:    SanitizeName(name),
		Method:           Deflate,
		CompressedSize:   compOff.Offset(),
		UncompressedSize: uncompOff.Offset(),
		CRC32:            crc.Sum32(),
		Blocks:           blocks,
	}, buf.Bytes(), nil
}
