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

package authenticode_test

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sassoftware/appxpack/lib/authenticode"
	"github.com/sassoftware/appxpack/lib/pkcs7"
)

func TestSignSip(t *testing.T) {
	t.Parallel()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	template := &x509.Certificate{
		SerialNumber: big.NewInt(3),
		Subject:      pkix.Name{CommonName: "sip test"},
		NotBefore:    time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		NotAfter:     time.Date(2040, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, key.Public(), key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	imprint := sha256.Sum256([]byte("imprint"))
	sipInfo := authenticode.SpcSipInfo{A: 0x1010000, UUID: make([]byte, 16)}
	psd, err := authenticode.SignSip(imprint[:], crypto.SHA256, sipInfo, key, []*x509.Certificate{cert})
	require.NoError(t, err)

	blob, err := psd.Marshal()
	require.NoError(t, err)
	parsed, err := pkcs7.Parse(blob)
	require.NoError(t, err)
	require.NoError(t, parsed.Content.Verify(nil))
	assert.Equal(t, authenticode.OidSpcIndirectDataContent, parsed.Content.ContentInfo.ContentType)

	content, err := parsed.Content.ContentInfo.Bytes()
	require.NoError(t, err)
	var indirect authenticode.SpcIndirectDataContent
	_, err = asn1.Unmarshal(content, &indirect)
	require.NoError(t, err)
	assert.Equal(t, imprint[:], indirect.MessageDigest.Digest)
	assert.Equal(t, authenticode.OidSpcSipInfo, indirect.Data.Type)
}
