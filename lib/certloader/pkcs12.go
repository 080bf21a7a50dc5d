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

package certloader

import (
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"software.sslmate.com/src/go-pkcs12"

	"github.com/sassoftware/appxpack/lib/passprompt"
)

// LoadPKCS12 reads a key and certificate chain from a PKCS#12 file. The
// empty password is tried first; when it fails the prompt is consulted
// until the password works or the user gives up.
func LoadPKCS12(path string, prompt passprompt.PasswordGetter) (*Certificate, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cert, err := parsePKCS12(blob, "")
	if err == nil {
		return cert, nil
	} else if !errors.Is(err, pkcs12.ErrIncorrectPassword) || prompt == nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var triedEmpty bool
	for {
		password, err := prompt.GetPasswd(fmt.Sprintf("Password for %s: ", path))
		if err != nil {
			return nil, err
		} else if password == "" {
			if triedEmpty {
				return nil, errors.New("aborted")
			}
			triedEmpty = true
		}
		cert, err := parsePKCS12(blob, password)
		if errors.Is(err, pkcs12.ErrIncorrectPassword) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return cert, nil
	}
}

func parsePKCS12(blob []byte, password string) (*Certificate, error) {
	priv, leaf, chain, err := pkcs12.DecodeChain(blob, password)
	if err != nil {
		return nil, err
	}
	certs := append([]*x509.Certificate{leaf}, chain...)
	cert := &Certificate{
		PrivateKey:   priv,
		Leaf:         leaf,
		Certificates: certs,
	}
	if err := cert.Validate(); err != nil {
		return nil, err
	}
	return cert, nil
}
