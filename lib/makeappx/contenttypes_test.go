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
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseContentTypes(t *testing.T, blob []byte) *xmlContentTypes {
	t.Helper()
	xct := new(xmlContentTypes)
	require.NoError(t, xml.Unmarshal(blob, xct))
	return xct
}

func defaultsOf(xct *xmlContentTypes) map[string]string {
	m := make(map[string]string)
	for _, d := range xct.Default {
		m[d.Extension] = d.ContentType
	}
	return m
}

func overridesOf(xct *xmlContentTypes) map[string]string {
	m := make(map[string]string)
	for _, o := range xct.Override {
		m[o.PartName] = o.ContentType
	}
	return m
}

func TestContentTypeDefaults(t *testing.T) {
	t.Parallel()
	archive := buildPackage(t, map[string][]byte{
		"hello.txt": []byte("01234567"),
		"image.png": bytes.Repeat([]byte{9}, 100),
	}, Options{CompressionLevel: 9})
	xct := parseContentTypes(t, entryContent(t, readBack(t, archive), appxContentTypes))

	require.Len(t, xct.Default, 2)
	defaults := defaultsOf(xct)
	assert.Equal(t, "application/octet-stream", defaults["txt"])
	assert.Equal(t, "image/png", defaults["png"])
}

func TestContentTypeKnownExtensions(t *testing.T) {
	t.Parallel()
	archive := buildPackage(t, map[string][]byte{
		"app.exe":          []byte("MZ"),
		"lib.dll":          []byte("MZ"),
		"AppxManifest.xml": []byte("<Package/>"),
	}, Options{})
	xct := parseContentTypes(t, entryContent(t, readBack(t, archive), appxContentTypes))
	defaults := defaultsOf(xct)
	assert.Equal(t, "application/x-msdownload", defaults["exe"])
	assert.Equal(t, "application/x-msdownload", defaults["dll"])
	assert.Equal(t, "application/vnd.ms-appx.manifest+xml", defaults["xml"])
}

func TestContentTypeFixedOverrides(t *testing.T) {
	t.Parallel()
	archive := buildPackage(t, map[string][]byte{"a.txt": []byte("x")}, Options{})
	xct := parseContentTypes(t, entryContent(t, readBack(t, archive), appxContentTypes))
	overrides := overridesOf(xct)
	assert.Equal(t, "application/vnd.ms-appx.blockmap+xml", overrides["/AppxBlockMap.xml"])
	assert.Equal(t, "application/vnd.ms-appx.signature", overrides["/AppxSignature.p7x"])
	assert.Equal(t, "application/vnd.ms-pkiseccat", overrides["/AppxMetadata/CodeIntegrity.cat"])
}

func TestContentTypeExtensionless(t *testing.T) {
	t.Parallel()
	archive := buildPackage(t, map[string][]byte{"LICENSE": []byte("MIT")}, Options{})
	xct := parseContentTypes(t, entryContent(t, readBack(t, archive), appxContentTypes))
	assert.Empty(t, xct.Default)
	overrides := overridesOf(xct)
	assert.Equal(t, "application/octet-stream", overrides["/LICENSE"])
}

func TestContentTypeHeader(t *testing.T) {
	t.Parallel()
	archive := buildPackage(t, map[string][]byte{"a.txt": []byte("x")}, Options{})
	blob := entryContent(t, readBack(t, archive), appxContentTypes)
	assert.True(t, strings.HasPrefix(string(blob),
		"<?xml version=\"1.0\" encoding=\"UTF-8\" standalone=\"yes\"?>\r\n"))
}
