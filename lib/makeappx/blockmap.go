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

package makeappx

import (
	"encoding/xml"
	"strings"

	"github.com/sassoftware/appxpack/lib/sink"
	"github.com/sassoftware/appxpack/lib/zipbuilder"
)

const hashMethodSHA256 = "http://www.w3.org/2001/04/xmlenc#sha256"

type blockMap struct {
	XMLName    xml.Name `xml:"http://schemas.microsoft.com/appx/2010/blockmap BlockMap"`
	HashMethod string   `xml:",attr"`
	File       []blockFile
}

type blockFile struct {
	Name    string `xml:",attr"`
	Size    uint64 `xml:",attr"`
	LfhSize int64  `xml:",attr"`
	Block   []block
}

type block struct {
	Hash string `xml:",attr"`
	Size uint64 `xml:",attr,omitempty"`
}

// AddFile records one payload member in the block map. Names are published
// DOS-style, with backslash separators. Nested appx members of a bundle
// are hashed into the archive digest but never listed here.
func (b *blockMap) AddFile(e *zipbuilder.FileEntry, isBundle bool) error {
	if isBundle && isAppxFile(e.Name) {
		return nil
	}
	bmf := blockFile{
		Name:    strings.Replace(e.Name, "/", "\\", -1),
		Size:    uint64(e.UncompressedSize),
		LfhSize: e.LocalHeaderSize(),
	}
	for _, blk := range e.Blocks {
		b64 := sink.NewBase64()
		if _, err := b64.Write(blk.SHA256); err != nil {
			return err
		}
		if err := b64.Close(); err != nil {
			return err
		}
		el := block{Hash: b64.String()}
		if blk.CompressedSize != zipbuilder.NotCompressed {
			el.Size = uint64(blk.CompressedSize)
		}
		bmf.Block = append(bmf.Block, el)
	}
	b.File = append(b.File, bmf)
	return nil
}

func (b *blockMap) Marshal() ([]byte, error) {
	b.HashMethod = hashMethodSHA256
	return marshalXML(b)
}
