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
	"encoding/asn1"
	"errors"
	"math/big"

	"github.com/miekg/pkcs11"
)

type ecdsaSignature struct {
	R, S *big.Int
}

// signECDSA converts the token's raw r||s output to the DER form the rest
// of the crypto stack expects.
func (key *Key) signECDSA(digest []byte) ([]byte, error) {
	mech := pkcs11.NewMechanism(pkcs11.CKM_ECDSA, nil)
	if err := key.token.ctx.SignInit(key.token.sh, []*pkcs11.Mechanism{mech}, key.priv); err != nil {
		return nil, err
	}
	sig, err := key.token.ctx.Sign(key.token.sh, digest)
	if err != nil {
		return nil, err
	}
	if len(sig) == 0 || len(sig)%2 != 0 {
		return nil, errors.New("invalid ECDSA signature from token")
	}
	half := len(sig) / 2
	return asn1.Marshal(ecdsaSignature{
		R: new(big.Int).SetBytes(sig[:half]),
		S: new(big.Int).SetBytes(sig[half:]),
	})
}
