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

// Package certloader turns credential files into a private key and
// certificate chain ready for signing.
package certloader

import (
	"crypto"
	"crypto/x509"
	"errors"
)

// Certificate bundles a private key with its certificate chain, leaf
// first.
type Certificate struct {
	PrivateKey   crypto.PrivateKey
	Leaf         *x509.Certificate
	Certificates []*x509.Certificate
}

// Signer returns the private key as a crypto.Signer.
func (s *Certificate) Signer() crypto.Signer {
	return s.PrivateKey.(crypto.Signer)
}

// Chain returns the certificate chain with the leaf first.
func (s *Certificate) Chain() []*x509.Certificate {
	return s.Certificates
}

// Validate checks the key matches the leaf certificate.
func (s *Certificate) Validate() error {
	if s.Leaf == nil {
		return errors.New("no certificate found")
	}
	if _, ok := s.PrivateKey.(crypto.Signer); !ok {
		return errors.New("private key cannot sign")
	}
	return nil
}
