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
	"crypto"
	"crypto/x509"
	"errors"

	"github.com/sassoftware/appxpack/lib/authenticode"
)

var spcUUIDSipInfoAppx = []byte{0x4B, 0xDF, 0xC5, 0x0A, 0x07, 0xCE, 0xE2, 0x4D, 0xB7, 0x6E, 0x23, 0xC8, 0x39, 0xA0, 0x9F, 0xD1}

var appxSipInfo = authenticode.SpcSipInfo{A: 0x1010000, UUID: spcUUIDSipInfoAppx}

// X509Signer signs the digest blob with a local or token-held key,
// producing the Authenticode structure Windows expects inside
// AppxSignature.p7x. The leaf certificate comes first in Certs.
type X509Signer struct {
	PrivKey crypto.Signer
	Certs   []*x509.Certificate
}

func (s X509Signer) SignDigests(blob []byte) ([]byte, error) {
	if len(s.Certs) == 0 {
		return nil, errors.New("no certificate to sign with")
	}
	psd, err := authenticode.SignSip(blob, crypto.SHA256, appxSipInfo, s.PrivKey, s.Certs)
	if err != nil {
		return nil, err
	}
	return psd.Marshal()
}
