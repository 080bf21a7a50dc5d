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

// Package makeappx assembles APPX and APPXBUNDLE packages. Payload members
// stream through the zip pipeline while the archive digest accumulates,
// then the block map and content types parts are synthesized from the
// collected member metadata, the would-be central directory is digested,
// an optional Authenticode signature is attached, and the real directory
// closes the archive.
package makeappx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/rs/zerolog"

	"github.com/sassoftware/appxpack/lib/sink"
	"github.com/sassoftware/appxpack/lib/zipbuilder"
)

// Signer produces a DER-encoded PKCS#7 SignedData over the serialized
// digest blob. The signed content must be an Authenticode
// SpcIndirectDataContent carrying the blob as its message digest.
type Signer interface {
	SignDigests(blob []byte) ([]byte, error)
}

type Options struct {
	// Bundle selects APPXBUNDLE semantics: the bundle manifest member is
	// required, written after all other payload, and patched with member
	// offsets; nested appx members are excluded from the block map.
	Bundle bool
	// CompressionLevel 0 stores members; 1-9 all select the deflate path.
	CompressionLevel int
	// Signer, when set, adds AppxSignature.p7x.
	Signer Signer
	Log    *zerolog.Logger
}

// ErrNoBundleManifest is reported when bundle mode is requested without an
// input whose name ends in AppxBundleManifest.xml. It is detected before
// any output is written.
var ErrNoBundleManifest = errors.New("bundle requires an AppxBundleManifest.xml input")

type state int

const (
	stateInit state = iota
	stateWritingPayload
	stateWritingSynth
	stateDigestingDirectory
	stateMaybeSigning
	stateWritingDirectory
	stateDone
)

type packager struct {
	z       *zipbuilder.Writer
	axpc    *sink.SHA256
	digests Digests
	opts    Options
	log     *zerolog.Logger
	state   state
}

func (p *packager) advance(from, to state) error {
	if p.state != from {
		return fmt.Errorf("appx: writer state %d, expected %d", p.state, from)
	}
	p.state = to
	return nil
}

// Write assembles a package from a mapping of archive names to local file
// paths and writes it to out in one sequential pass.
func Write(out io.Writer, inputs map[string]string, opts Options) error {
	if opts.CompressionLevel < 0 || opts.CompressionLevel > 9 {
		return fmt.Errorf("invalid compression level %d", opts.CompressionLevel)
	}
	log := opts.Log
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	sort.Strings(names)

	var manifestName string
	if opts.Bundle {
		for _, name := range names {
			if strings.HasSuffix(name, bundleManifestSuffix) {
				manifestName = name
				break
			}
		}
		if manifestName == "" {
			return ErrNoBundleManifest
		}
	}

	p := &packager{
		z:    zipbuilder.NewWriter(out),
		axpc: sink.NewSHA256(),
		opts: opts,
		log:  log,
	}
	if err := p.writePayload(names, inputs, manifestName); err != nil {
		return err
	}
	if err := p.writeSynthesized(); err != nil {
		return err
	}
	if err := p.digestDirectory(); err != nil {
		return err
	}
	if err := p.maybeSign(); err != nil {
		return err
	}
	if err := p.writeDirectory(); err != nil {
		return err
	}
	return nil
}

func fileData(path string) zipbuilder.DataFunc {
	return func(w io.Writer) error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := io.Copy(w, f); err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		return nil
	}
}

func (p *packager) writePayload(names []string, inputs map[string]string, manifestName string) error {
	if err := p.advance(stateInit, stateWritingPayload); err != nil {
		return err
	}
	for _, name := range names {
		if name == manifestName {
			// written last so every other member's offset is known
			continue
		}
		level := p.opts.CompressionLevel
		if isAppxFile(name) {
			// nested packages must be stored so their offsets can be
			// published in the bundle manifest
			level = 0
		}
		data := fileData(inputs[name])
		var axci *sink.SHA256
		if name == appxCodeIntegrity {
			axci = sink.NewSHA256()
			inner := data
			data = func(w io.Writer) error {
				return inner(sink.Multi(w, axci))
			}
		}
		entry, err := p.z.WriteEntry(name, level, data, p.axpc)
		if err != nil {
			return err
		}
		if axci != nil {
			p.digests.AXCI = axci.Digest()
		}
		p.log.Debug().Str("name", name).
			Int64("size", entry.UncompressedSize).
			Int64("compressed", entry.CompressedSize).
			Msg("added file")
	}
	if manifestName != "" {
		blob, err := patchBundleManifest(inputs[manifestName], p.z.Entries)
		if err != nil {
			return err
		}
		if _, err := p.z.WriteEntry(manifestName, p.opts.CompressionLevel, byteData(blob), p.axpc); err != nil {
			return err
		}
		p.log.Debug().Str("name", manifestName).Msg("added bundle manifest")
	}
	return nil
}

func byteData(blob []byte) zipbuilder.DataFunc {
	return func(w io.Writer) error {
		_, err := w.Write(blob)
		return err
	}
}

func (p *packager) writeSynthesized() error {
	if err := p.advance(stateWritingPayload, stateWritingSynth); err != nil {
		return err
	}
	payload := p.z.Entries
	bm := new(blockMap)
	for _, e := range payload {
		if err := bm.AddFile(e, p.opts.Bundle); err != nil {
			return err
		}
	}
	blob, err := bm.Marshal()
	if err != nil {
		return err
	}
	p.digests.AXBM, err = p.writeXMLEntry(appxBlockMap, blob)
	if err != nil {
		return err
	}

	ctypes := newContentTypes(p.opts.Bundle)
	for _, e := range payload {
		ctypes.Add(e.SanitizedName)
	}
	blob, err = ctypes.Marshal()
	if err != nil {
		return err
	}
	p.digests.AXCT, err = p.writeXMLEntry(appxContentTypes, blob)
	return err
}

// writeXMLEntry stores a synthesized part uncompressed and returns the
// SHA-256 of its content, which doubles as the part's signature digest.
func (p *packager) writeXMLEntry(name string, blob []byte) ([]byte, error) {
	entry, err := p.z.WriteEntry(name, 0, byteData(blob), p.axpc)
	if err != nil {
		return nil, err
	}
	d := sink.NewSHA256()
	d.Write(blob)
	entry.SHA256 = d.Digest()
	return entry.SHA256, nil
}

func (p *packager) digestDirectory() error {
	if err := p.advance(stateWritingSynth, stateDigestingDirectory); err != nil {
		return err
	}
	p.digests.AXPC = p.axpc.Digest()
	axcd := sink.NewSHA256()
	if err := p.z.WriteDirectoryTo(axcd); err != nil {
		return err
	}
	p.digests.AXCD = axcd.Digest()
	return nil
}

func (p *packager) maybeSign() error {
	if err := p.advance(stateDigestingDirectory, stateMaybeSigning); err != nil {
		return err
	}
	if p.opts.Signer == nil {
		return nil
	}
	p.log.Info().Msg("signing package")
	der, err := p.opts.Signer.SignDigests(p.digests.Blob())
	if err != nil {
		return fmt.Errorf("signing package: %w", err)
	}

	// AppxSignature.p7x must be deflated
	var buf bytes.Buffer
	defl, err := sink.NewDeflate(flate.BestCompression, &buf)
	if err != nil {
		return err
	}
	var crc sink.CRC32
	var off sink.Offset
	w := sink.Multi(defl, &crc, &off)
	if _, err := w.Write([]byte("PKCX")); err != nil {
		return err
	}
	if _, err := w.Write(der); err != nil {
		return err
	}
	if err := defl.Close(); err != nil {
		return fmt.Errorf("deflate: %w", err)
	}
	entry := &zipbuilder.FileEntry{
		Name:             appxSignature,
		SanitizedName:    zipbuilder.SanitizeName(appxSignature),
		Method:           zipbuilder.Deflate,
		CompressedSize:   int64(buf.Len()),
		UncompressedSize: off.Offset(),
		CRC32:            crc.Sum32(),
	}
	return p.z.AppendEntry(entry, buf.Bytes(), nil)
}

func (p *packager) writeDirectory() error {
	if err := p.advance(stateMaybeSigning, stateWritingDirectory); err != nil {
		return err
	}
	if err := p.z.Finish(); err != nil {
		return err
	}
	p.state = stateDone
	p.log.Info().Int("entries", len(p.z.Entries)).Msg("package complete")
	return nil
}
