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
	"path"
	"sort"
)

var defaultExtensions = map[string]string{
	"appx": "application/vnd.ms-appx",
	"dll":  "application/x-msdownload",
	"exe":  "application/x-msdownload",
	"png":  "image/png",
	"xml":  "application/vnd.ms-appx.manifest+xml",
}

var defaultOverrides = map[string]string{
	"/AppxBlockMap.xml":               "application/vnd.ms-appx.blockmap+xml",
	"/AppxSignature.p7x":              "application/vnd.ms-appx.signature",
	"/AppxMetadata/CodeIntegrity.cat": "application/vnd.ms-pkiseccat",
}

const (
	octetStreamType    = "application/octet-stream"
	bundleManifestType = "application/vnd.ms-appx.bundlemanifest+xml"
)

type contentTypes struct {
	byExt      map[string]string
	byOverride map[string]string
	bundle     bool
}

type xmlContentTypes struct {
	XMLName  xml.Name `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Default  []contentTypeDefault
	Override []contentTypeOverride
}

type contentTypeDefault struct {
	Extension   string `xml:",attr"`
	ContentType string `xml:",attr"`
}

type contentTypeOverride struct {
	PartName    string `xml:",attr"`
	ContentType string `xml:",attr"`
}

func newContentTypes(isBundle bool) *contentTypes {
	c := &contentTypes{
		byExt:      make(map[string]string),
		byOverride: make(map[string]string),
	}
	// the three fixed overrides are listed in every package, whether or
	// not the parts themselves are present
	for name, ctype := range defaultOverrides {
		c.byOverride[name] = ctype
	}
	c.bundle = isBundle
	return c
}

// Add records the content type contributed by one payload part. Parts are
// typed by the extension of their sanitized name; extensionless parts get
// a per-part override.
func (c *contentTypes) Add(sanitizedName string) {
	ext := path.Ext(path.Base(sanitizedName))
	if ext == "" || ext == "." {
		c.byOverride["/"+sanitizedName] = octetStreamType
		return
	}
	ext = ext[1:]
	if _, ok := c.byExt[ext]; ok {
		return
	}
	ctype := defaultExtensions[ext]
	switch {
	case ext == "xml" && c.bundle:
		ctype = bundleManifestType
	case ctype == "":
		ctype = octetStreamType
	}
	c.byExt[ext] = ctype
}

func (c *contentTypes) Marshal() ([]byte, error) {
	var xct xmlContentTypes
	extnames := make([]string, 0, len(c.byExt))
	for name := range c.byExt {
		extnames = append(extnames, name)
	}
	sort.Strings(extnames)
	for _, name := range extnames {
		xct.Default = append(xct.Default, contentTypeDefault{
			Extension:   name,
			ContentType: c.byExt[name],
		})
	}
	ovrnames := make([]string, 0, len(c.byOverride))
	for name := range c.byOverride {
		ovrnames = append(ovrnames, name)
	}
	sort.Strings(ovrnames)
	for _, name := range ovrnames {
		xct.Override = append(xct.Override, contentTypeOverride{
			PartName:    name,
			ContentType: c.byOverride[name],
		})
	}
	return marshalXML(xct)
}
