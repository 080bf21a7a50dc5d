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
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bundleManifestText = `<?xml version="1.0" encoding="UTF-8"?>
<Bundle xmlns="http://schemas.microsoft.com/appx/2013/bundle" SchemaVersion="1.0">
  <Packages>
    <Package Type="application" FileName="inner.appx" Offset="inner.appx-offset"/>
  </Packages>
</Bundle>
`

func TestBundleOffsetsPatched(t *testing.T) {
	t.Parallel()
	inner := bytes.Repeat([]byte{5}, 1234)
	archive := buildPackage(t, map[string][]byte{
		bundleManifestFile: []byte(bundleManifestText),
		"inner.appx":       inner,
	}, Options{Bundle: true})
	zr := readBack(t, archive)

	// nested packages are stored, never compressed, and come first
	f := findEntry(zr, "inner.appx")
	require.NotNil(t, f)
	assert.Equal(t, uint16(zip.Store), f.Method)
	assert.Equal(t, zr.File[0], f)

	// the placeholder is replaced with the data offset of the member
	dataOffset := int64(30 + len("inner.appx"))
	manifest := string(entryContent(t, zr, bundleManifestFile))
	assert.NotContains(t, manifest, "inner.appx-offset")
	assert.Contains(t, manifest, fmt.Sprintf(`Offset="%d"`, dataOffset))

	// the manifest follows every other payload member
	names := entryNames(zr)
	require.Len(t, names, 4)
	assert.Equal(t, bundleManifestFile, names[1])
}

func TestBundleAppxStoredDespiteLevel(t *testing.T) {
	t.Parallel()
	archive := buildPackage(t, map[string][]byte{
		bundleManifestFile: []byte(bundleManifestText),
		"inner.appx":       bytes.Repeat([]byte("compress me"), 5000),
	}, Options{Bundle: true, CompressionLevel: 9})
	zr := readBack(t, archive)
	f := findEntry(zr, "inner.appx")
	require.NotNil(t, f)
	assert.Equal(t, uint16(zip.Store), f.Method)
}

func TestBundleExcludesAppxFromBlockMap(t *testing.T) {
	t.Parallel()
	archive := buildPackage(t, map[string][]byte{
		bundleManifestFile: []byte(bundleManifestText),
		"inner.appx":       bytes.Repeat([]byte{1}, 100),
	}, Options{Bundle: true})
	zr := readBack(t, archive)
	bm := parseBlockMap(t, entryContent(t, zr, appxBlockMap))
	require.Len(t, bm.File, 1)
	assert.Equal(t, `AppxMetadata\AppxBundleManifest.xml`, bm.File[0].Name)
}

func TestBundleContentTypes(t *testing.T) {
	t.Parallel()
	archive := buildPackage(t, map[string][]byte{
		bundleManifestFile: []byte(bundleManifestText),
		"inner.appx":       []byte("pk"),
	}, Options{Bundle: true})
	zr := readBack(t, archive)
	xct := parseContentTypes(t, entryContent(t, zr, appxContentTypes))
	defaults := defaultsOf(xct)
	assert.Equal(t, "application/vnd.ms-appx", defaults["appx"])
	assert.Equal(t, "application/vnd.ms-appx.bundlemanifest+xml", defaults["xml"])
}

func TestBundleMissingManifest(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	err := Write(&out, writeInputs(t, map[string][]byte{"inner.appx": []byte("x")}), Options{Bundle: true})
	require.ErrorIs(t, err, ErrNoBundleManifest)
	// detected before a single byte reaches the output
	assert.Zero(t, out.Len())
}

func TestBundleManifestMustParse(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	err := Write(&out, writeInputs(t, map[string][]byte{
		bundleManifestFile: []byte("<Bundle: not xml"),
		"inner.appx":       []byte("x"),
	}), Options{Bundle: true})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "bundle manifest"))
}
