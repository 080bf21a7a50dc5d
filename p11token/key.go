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

package p11token

import (
	"crypto"
	"crypto/x509"
	"fmt"
	"io"

	"github.com/miekg/pkcs11"
)

// Key is a private key on a token, usable as a crypto.Signer. The public
// half comes from the certificate stored alongside it.
type Key struct {
	token   *Token
	keyType uint
	priv    pkcs11.ObjectHandle
	cert    *x509.Certificate
}

// KeyNotFoundError is returned when no private key on the token carries
// the requested id.
type KeyNotFoundError struct {
	ID byte
}

func (e KeyNotFoundError) Error() string {
	return fmt.Sprintf("no usable key with id %d on token", e.ID)
}

// GetKey locates the private key whose CKA_ID begins with keyID, along
// with the token certificate whose CKA_ID begins with the same byte, or
// the token's first certificate when none does.
func (token *Token) GetKey(keyID byte) (*Key, error) {
	token.mutex.Lock()
	defer token.mutex.Unlock()
	keys, err := token.findObjects([]*pkcs11.Attribute{
		pkcs11.NewAttribute(pkcs11.CKA_CLASS, pkcs11.CKO_PRIVATE_KEY),
	})
	if err != nil {
		return nil, err
	}
	var priv pkcs11.ObjectHandle
	var found bool
	for _, handle := range keys {
		id := token.getAttribute(handle, pkcs11.CKA_ID)
		if len(id) != 0 && id[0] == keyID {
			priv = handle
			found = true
			break
		}
	}
	if !found {
		return nil, KeyNotFoundError{keyID}
	}
	keyTypeBlob := token.getAttribute(priv, pkcs11.CKA_KEY_TYPE)
	if len(keyTypeBlob) == 0 {
		return nil, fmt.Errorf("missing CKA_KEY_TYPE on private key %d", keyID)
	}
	keyType := attrToInt(keyTypeBlob)
	if keyType != pkcs11.CKK_RSA && keyType != pkcs11.CKK_ECDSA {
		return nil, fmt.Errorf("unsupported key type for key %d", keyID)
	}
	cert, err := token.findCertificate(keyID)
	if err != nil {
		return nil, err
	}
	return &Key{token: token, keyType: keyType, priv: priv, cert: cert}, nil
}

func (token *Token) findCertificate(keyID byte) (*x509.Certificate, error) {
	certs, err := token.findObjects([]*pkcs11.Attribute{
		pkcs11.NewAttribute(pkcs11.CKA_CLASS, pkcs11.CKO_CERTIFICATE),
	})
	if err != nil {
		return nil, err
	}
	var fallback *x509.Certificate
	for _, handle := range certs {
		blob := token.getAttribute(handle, pkcs11.CKA_VALUE)
		if len(blob) == 0 {
			continue
		}
		cert, err := x509.ParseCertificate(blob)
		if err != nil {
			continue
		}
		if fallback == nil {
			fallback = cert
		}
		id := token.getAttribute(handle, pkcs11.CKA_ID)
		if len(id) != 0 && id[0] == keyID {
			return cert, nil
		}
	}
	if fallback == nil {
		return nil, fmt.Errorf("no certificate found on token for key %d", keyID)
	}
	return fallback, nil
}

// Certificate returns the token certificate matched to the key.
func (key *Key) Certificate() *x509.Certificate {
	return key.cert
}

func (key *Key) Public() crypto.PublicKey {
	return key.cert.PublicKey
}

func (key *Key) Sign(rand io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	key.token.mutex.Lock()
	defer key.token.mutex.Unlock()
	switch key.keyType {
	case pkcs11.CKK_RSA:
		return key.signRSA(digest, opts)
	case pkcs11.CKK_ECDSA:
		return key.signECDSA(digest)
	default:
		return nil, fmt.Errorf("unsupported key type %d", key.keyType)
	}
}

func attrToInt(value []byte) uint {
	var n uint
	// CK_ULONG, host byte order; little-endian on every supported target
	for i := len(value) - 1; i >= 0; i-- {
		n = n<<8 | uint(value[i])
	}
	return n
}
