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
	"crypto/rsa"
	"errors"

	"github.com/miekg/pkcs11"

	"github.com/sassoftware/appxpack/lib/x509tools"
)

func (key *Key) signRSA(digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	if opts == nil || opts.HashFunc() == 0 {
		return nil, errors.New("signer options are required")
	}
	if _, ok := opts.(*rsa.PSSOptions); ok {
		return nil, errors.New("RSA-PSS not implemented")
	}
	packed, ok := x509tools.MarshalDigest(opts.HashFunc(), digest)
	if !ok {
		return nil, errors.New("unsupported hash function")
	}
	mech := pkcs11.NewMechanism(pkcs11.CKM_RSA_PKCS, nil)
	if err := key.token.ctx.SignInit(key.token.sh, []*pkcs11.Mechanism{mech}, key.priv); err != nil {
		return nil, err
	}
	return key.token.ctx.Sign(key.token.sh, packed)
}
