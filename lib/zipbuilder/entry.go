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

package zipbuilder

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// NotCompressed marks a block of a stored member.
const NotCompressed int64 = -1

// Block describes one 64 KiB window of a member's uncompressed content.
type Block struct {
	// SHA256 is the digest of the uncompressed window.
	SHA256 []byte
	// CompressedSize is the span this window occupies in the compressed
	// stream, or NotCompressed for stored members.
	CompressedSize int64
}

// FileEntry is the metadata of one archive member, accumulated while its
// bytes stream through the entry pipeline and later replayed into the
// central directory.
type FileEntry struct {
	Name             string
	SanitizedName    string
	Method           CompressionType
	CompressedSize   int64
	UncompressedSize int64
	CRC32            uint32
	// Offset is the archive position of the member's local file header.
	Offset int64
	Blocks []Block
	// SHA256 of the whole uncompressed content; set only for the
	// synthesized XML members whose digests feed the signature.
	SHA256 []byte
}

const contentTypesFile = "[Content_Types].xml"

const nameWhitelist = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	"-._~/"

// SanitizeName percent-encodes every byte outside the archive name
// whitelist, uppercase hex. [Content_Types].xml keeps its brackets;
// escaping them makes the package invalid.
func SanitizeName(name string) string {
	if name == contentTypesFile {
		return name
	}
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if strings.IndexByte(nameWhitelist, c) >= 0 {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// RangeError reports a value that does not fit its ZIP header field.
type RangeError struct {
	Field string
	Value int64
}

func (e RangeError) Error() string {
	return fmt.Sprintf("zip: %s %d does not fit its header field", e.Field, e.Value)
}

// LocalHeaderSize is the size of the member's local file header including
// the name. The block map publishes it as LfhSize.
func (e *FileEntry) LocalHeaderSize() int64 {
	return fileHeaderLen + int64(len(e.SanitizedName))
}

// RecordSize is the full span of the member: header plus compressed body.
func (e *FileEntry) RecordSize() int64 {
	return e.LocalHeaderSize() + e.CompressedSize
}

// DataOffset is the archive position of the member's first content byte.
func (e *FileEntry) DataOffset() int64 {
	return e.Offset + e.LocalHeaderSize()
}

func (e *FileEntry) directoryEntrySize() int64 {
	return directoryHeaderLen + int64(len(e.SanitizedName))
}

func (e *FileEntry) checkRanges() error {
	if e.CompressedSize > uint32Max {
		return RangeError{"compressed size", e.CompressedSize}
	}
	if e.UncompressedSize > uint32Max {
		return RangeError{"uncompressed size", e.UncompressedSize}
	}
	if e.Offset > uint32Max {
		return RangeError{"member offset", e.Offset}
	}
	if len(e.SanitizedName) > uint16Max {
		return RangeError{"name length", int64(len(e.SanitizedName))}
	}
	return nil
}

// WriteLocalHeader emits the member's local file record header. No extra
// field and no data descriptor are used; sizes and CRC are final.
func (e *FileEntry) WriteLocalHeader(w io.Writer) error {
	if err := e.checkRanges(); err != nil {
		return err
	}
	hdr := zipLocalHeader{
		Signature:        fileHeaderSignature,
		ReaderVersion:    zip20,
		Method:           uint16(e.Method),
		ModifiedTime:     fixedModTime,
		ModifiedDate:     fixedModDate,
		CRC32:            e.CRC32,
		CompressedSize:   uint32(e.CompressedSize),
		UncompressedSize: uint32(e.UncompressedSize),
		FilenameLen:      uint16(len(e.SanitizedName)),
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return err
	}
	_, err := io.WriteString(w, e.SanitizedName)
	return err
}

// WriteDirectoryEntry emits the member's central directory record.
func (e *FileEntry) WriteDirectoryEntry(w io.Writer) error {
	if err := e.checkRanges(); err != nil {
		return err
	}
	hdr := zipCentralDir{
		Signature:        directoryHeaderSignature,
		CreatorVersion:   zip45,
		ReaderVersion:    zip20,
		Method:           uint16(e.Method),
		ModifiedTime:     fixedModTime,
		ModifiedDate:     fixedModDate,
		CRC32:            e.CRC32,
		CompressedSize:   uint32(e.CompressedSize),
		UncompressedSize: uint32(e.UncompressedSize),
		FilenameLen:      uint16(len(e.SanitizedName)),
		Offset:           uint32(e.Offset),
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return err
	}
	_, err := io.WriteString(w, e.SanitizedName)
	return err
}
