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

package pkcs7

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selfSigned(t *testing.T, key crypto.Signer) *x509.Certificate {
	t.Helper()
	template := &x509.Certificate{
		SerialNumber: big.NewInt(7),
		Subject:      pkix.Name{CommonName: "pkcs7 test"},
		NotBefore:    time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		NotAfter:     time.Date(2040, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, key.Public(), key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert
}

func TestSignAndVerifyRSA(t *testing.T) {
	t.Parallel()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	cert := selfSigned(t, key)

	psd, err := SignData([]byte("signed content"), key, []*x509.Certificate{cert}, crypto.SHA256)
	require.NoError(t, err)
	blob, err := psd.Marshal()
	require.NoError(t, err)

	parsed, err := Parse(blob)
	require.NoError(t, err)
	require.NoError(t, parsed.Content.Verify(nil))
	assert.Equal(t, OidData, parsed.Content.ContentInfo.ContentType)
}

func TestSignAndVerifyECDSA(t *testing.T) {
	t.Parallel()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	cert := selfSigned(t, key)

	psd, err := SignData([]byte("ecdsa content"), key, []*x509.Certificate{cert}, crypto.SHA256)
	require.NoError(t, err)
	blob, err := psd.Marshal()
	require.NoError(t, err)
	parsed, err := Parse(blob)
	require.NoError(t, err)
	require.NoError(t, parsed.Content.Verify(nil))
}

func TestTamperedContentFails(t *testing.T) {
	t.Parallel()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	cert := selfSigned(t, key)
	psd, err := SignData([]byte("original"), key, []*x509.Certificate{cert}, crypto.SHA256)
	require.NoError(t, err)
	ci, err := NewContentInfo(OidData, []byte("tampered"))
	require.NoError(t, err)
	psd.Content.ContentInfo = ci
	assert.Error(t, psd.Content.Verify(nil))
}

func TestWrongCertificateRejected(t *testing.T) {
	t.Parallel()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	cert := selfSigned(t, other)
	_, err = SignData([]byte("x"), key, []*x509.Certificate{cert}, crypto.SHA256)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "certificate must match")
}
