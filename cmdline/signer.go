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

package cmdline

import (
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/sassoftware/appxpack/config"
	"github.com/sassoftware/appxpack/lib/certloader"
	"github.com/sassoftware/appxpack/lib/makeappx"
	"github.com/sassoftware/appxpack/lib/passprompt"
	"github.com/sassoftware/appxpack/p11token"
)

// makeSigner resolves the signing flags, falling back to configuration
// file defaults, and returns nil when no signing was requested.
func makeSigner(cfg *config.Config, log *zerolog.Logger) (makeappx.Signer, error) {
	certPath := argCert
	modulePath := argModule
	slot, keyID, pin := argSlot, argKeyID, argPin
	if certPath == "" && modulePath == "" && cfg != nil {
		certPath = cfg.Cert
		if tok := cfg.Token; tok != nil {
			modulePath = tok.Provider
			if tok.Slot != nil {
				slot = *tok.Slot
			}
			if tok.Key != nil {
				keyID = *tok.Key
			}
			if pin == "" {
				pin = tok.Pin
			}
		}
	}
	switch {
	case certPath != "" && modulePath != "":
		return nil, errors.New("-c and -m are incompatible")
	case certPath != "":
		return pkcs12Signer(certPath, log)
	case modulePath != "":
		return tokenSigner(modulePath, slot, keyID, pin, log)
	}
	return nil, nil
}

func pkcs12Signer(path string, log *zerolog.Logger) (makeappx.Signer, error) {
	cert, err := certloader.LoadPKCS12(path, passprompt.PasswordPrompt{})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("cert", path).Str("subject", cert.Leaf.Subject.String()).Msg("loaded signing credential")
	return makeappx.X509Signer{PrivKey: cert.Signer(), Certs: cert.Chain()}, nil
}

func tokenSigner(module string, slot, keyID uint, pin string, log *zerolog.Logger) (makeappx.Signer, error) {
	if keyID > 0xff {
		return nil, fmt.Errorf("invalid key id %d", keyID)
	}
	if pin == "" {
		pin = os.Getenv(pivPinEnv)
	}
	if pin == "" {
		var err error
		pin, err = passprompt.PasswordPrompt{}.GetPasswd(fmt.Sprintf("PIN for slot %d: ", slot))
		if err != nil {
			return nil, err
		}
		if pin == "" {
			return nil, errors.New("no PIV PIN provided")
		}
	}
	token, err := p11token.Open(module, slot, pin)
	if err != nil {
		return nil, err
	}
	key, err := token.GetKey(byte(keyID))
	if err != nil {
		token.Close()
		return nil, err
	}
	log.Debug().Str("module", module).Uint("slot", slot).Uint("key", keyID).Msg("using smart card key")
	return tokenSignerImpl{token: token, key: key}, nil
}

// tokenSignerImpl closes the token once the single signature is produced.
type tokenSignerImpl struct {
	token *p11token.Token
	key   *p11token.Key
}

func (s tokenSignerImpl) SignDigests(blob []byte) ([]byte, error) {
	defer s.token.Close()
	signer := makeappx.X509Signer{
		PrivKey: s.key,
		Certs:   []*x509.Certificate{s.key.Certificate()},
	}
	return signer.SignDigests(blob)
}
