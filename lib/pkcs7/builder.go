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
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"

	"github.com/sassoftware/appxpack/lib/x509tools"
)

// SignatureBuilder accumulates a content and authenticated attributes,
// then signs them with a private key. The content digest covers only the
// contents octets of the content's DER encoding, per RFC 2315 9.3.
type SignatureBuilder struct {
	signer    crypto.Signer
	certs     []*x509.Certificate
	hash      crypto.Hash
	content   ContentInfo
	digest    []byte
	authAttrs AttributeList
}

func NewBuilder(signer crypto.Signer, certs []*x509.Certificate, hash crypto.Hash) *SignatureBuilder {
	return &SignatureBuilder{
		signer: signer,
		certs:  certs,
		hash:   hash,
	}
}

func (sb *SignatureBuilder) SetContent(ctype asn1.ObjectIdentifier, value interface{}) error {
	ci, err := NewContentInfo(ctype, value)
	if err != nil {
		return err
	}
	return sb.SetContentInfo(ci)
}

func (sb *SignatureBuilder) SetContentInfo(ci ContentInfo) error {
	blob, err := ci.Bytes()
	if err != nil {
		return err
	}
	var raw asn1.RawValue
	if _, err := asn1.Unmarshal(blob, &raw); err != nil {
		return err
	}
	d := sb.hash.New()
	d.Write(raw.Bytes)
	sb.content = ci
	sb.digest = d.Sum(nil)
	return nil
}

func (sb *SignatureBuilder) AddAuthenticatedAttribute(oid asn1.ObjectIdentifier, value interface{}) error {
	return sb.authAttrs.Add(oid, value)
}

// Sign builds and signs the SignedData. The contentType and messageDigest
// attributes are added automatically.
func (sb *SignatureBuilder) Sign() (*ContentInfoSignedData, error) {
	if sb.digest == nil {
		return nil, errors.New("pkcs7: SetContent was not called")
	}
	if len(sb.certs) < 1 || !x509tools.SameKey(sb.signer.Public(), sb.certs[0].PublicKey) {
		return nil, errors.New("pkcs7: first certificate must match private key")
	}
	digestAlg, ok := x509tools.PkixDigestAlgorithm(sb.hash)
	if !ok {
		return nil, errors.New("pkcs7: unsupported digest algorithm")
	}
	pkeyAlg, ok := x509tools.PkixPublicKeyAlgorithm(sb.signer.Public())
	if !ok {
		return nil, errors.New("pkcs7: unsupported public key algorithm")
	}
	if err := sb.authAttrs.Add(OidAttributeContentType, sb.content.ContentType); err != nil {
		return nil, err
	}
	if err := sb.authAttrs.Add(OidAttributeMessageDigest, sb.digest); err != nil {
		return nil, err
	}
	// the signature covers the SET OF form of the attributes
	attrBytes, err := sb.authAttrs.Bytes()
	if err != nil {
		return nil, err
	}
	d := sb.hash.New()
	d.Write(attrBytes)
	sig, err := sb.signer.Sign(rand.Reader, d.Sum(nil), sb.hash)
	if err != nil {
		return nil, err
	}
	return &ContentInfoSignedData{
		ContentType: OidSignedData,
		Content: SignedData{
			Version:                    1,
			DigestAlgorithmIdentifiers: []pkix.AlgorithmIdentifier{digestAlg},
			ContentInfo:                sb.content,
			Certificates:               MarshalCertificates(sb.certs),
			CRLs:                       nil,
			SignerInfos: []SignerInfo{{
				Version: 1,
				IssuerAndSerialNumber: IssuerAndSerial{
					IssuerName:   asn1.RawValue{FullBytes: sb.certs[0].RawIssuer},
					SerialNumber: sb.certs[0].SerialNumber,
				},
				DigestAlgorithm:           digestAlg,
				AuthenticatedAttributes:   sb.authAttrs,
				DigestEncryptionAlgorithm: pkeyAlg,
				EncryptedDigest:           sig,
			}},
		},
	}, nil
}

// Marshal returns the DER encoding of the signature.
func (psd *ContentInfoSignedData) Marshal() ([]byte, error) {
	return asn1.Marshal(*psd)
}

// SignData signs content embedded as plain pkcs7-data.
func SignData(content []byte, privKey crypto.Signer, certs []*x509.Certificate, hash crypto.Hash) (*ContentInfoSignedData, error) {
	builder := NewBuilder(privKey, certs, hash)
	if err := builder.SetContent(OidData, content); err != nil {
		return nil, err
	}
	return builder.Sign()
}
