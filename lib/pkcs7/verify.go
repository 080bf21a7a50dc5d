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
	"bytes"
	"crypto/hmac"
	"crypto/x509"
	"encoding/asn1"
	"errors"
	"fmt"

	"github.com/sassoftware/appxpack/lib/x509tools"
)

// Parse decodes a DER-encoded SignedData structure.
func Parse(blob []byte) (*ContentInfoSignedData, error) {
	psd := new(ContentInfoSignedData)
	if rest, err := asn1.Unmarshal(blob, psd); err != nil {
		return nil, fmt.Errorf("pkcs7: %w", err)
	} else if len(bytes.TrimRight(rest, "\x00")) != 0 {
		return nil, errors.New("pkcs7: trailing garbage after signature")
	}
	if !psd.ContentType.Equal(OidSignedData) {
		return nil, errors.New("pkcs7: not a SignedData structure")
	}
	return psd, nil
}

// Verify checks every SignerInfo against the embedded content, or against
// externalContent for detached signatures.
func (sd *SignedData) Verify(externalContent []byte) error {
	content, err := sd.ContentInfo.Bytes()
	if err != nil {
		return err
	} else if content == nil {
		if externalContent == nil {
			return errors.New("pkcs7: missing content")
		}
		content = externalContent
	} else {
		// digests cover the contents octets only
		var raw asn1.RawValue
		if _, err := asn1.Unmarshal(content, &raw); err != nil {
			return err
		}
		content = raw.Bytes
	}
	certs, err := sd.Certificates.Parse()
	if err != nil {
		return fmt.Errorf("pkcs7: %w", err)
	} else if len(certs) == 0 {
		return errors.New("pkcs7: certificate missing from signedData")
	}
	for i := range sd.SignerInfos {
		if err := sd.SignerInfos[i].Verify(content, certs); err != nil {
			return err
		}
	}
	return nil
}

func (si *SignerInfo) Verify(content []byte, certs []*x509.Certificate) error {
	hash, ok := x509tools.PkixDigestToHash(si.DigestAlgorithm)
	if !ok || !hash.Available() {
		return fmt.Errorf("pkcs7: unknown hash with OID %s", si.DigestAlgorithm.Algorithm)
	}
	w := hash.New()
	w.Write(content)
	digest := w.Sum(nil)
	if len(si.AuthenticatedAttributes) != 0 {
		// check the content digest against the messageDigest attribute
		var md []byte
		if err := si.AuthenticatedAttributes.GetOne(OidAttributeMessageDigest, &md); err != nil {
			return err
		} else if !hmac.Equal(md, digest) {
			return errors.New("pkcs7: content digest does not match")
		}
		// now pivot to verifying the hash over the authenticated attributes
		attrBytes, err := si.AuthenticatedAttributes.Bytes()
		if err != nil {
			return err
		}
		w = hash.New()
		w.Write(attrBytes)
		digest = w.Sum(nil)
	} // otherwise the content hash is verified directly
	var cert *x509.Certificate
	is := si.IssuerAndSerialNumber
	for _, cert2 := range certs {
		if bytes.Equal(cert2.RawIssuer, is.IssuerName.FullBytes) && cert2.SerialNumber.Cmp(is.SerialNumber) == 0 {
			cert = cert2
			break
		}
	}
	if cert == nil {
		return errors.New("pkcs7: certificate missing from signedData")
	}
	return x509tools.Verify(cert.PublicKey, hash, digest, si.EncryptedDigest)
}
