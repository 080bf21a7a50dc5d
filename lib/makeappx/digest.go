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
	"crypto/sha256"
)

// Digests holds the five SHA-256 values bound into an APPX signature:
// the local file records as written (AXPC), the pre-signature central
// directory (AXCD), the content types and block map parts uncompressed
// (AXCT, AXBM), and the code integrity catalog or zeroes (AXCI).
type Digests struct {
	AXPC []byte
	AXCD []byte
	AXCT []byte
	AXBM []byte
	AXCI []byte
}

// Blob serializes the digests in the fixed layout the signature's
// SpcIndirectDataContent carries as its message digest.
func (d *Digests) Blob() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 4+5*(4+sha256.Size)))
	buf.WriteString("APPX")
	buf.WriteString("AXPC")
	buf.Write(d.AXPC)
	buf.WriteString("AXCD")
	buf.Write(d.AXCD)
	buf.WriteString("AXCT")
	buf.Write(d.AXCT)
	buf.WriteString("AXBM")
	buf.Write(d.AXBM)
	buf.WriteString("AXCI")
	axci := d.AXCI
	if axci == nil {
		axci = make([]byte, sha256.Size)
	}
	buf.Write(axci)
	return buf.Bytes()
}
