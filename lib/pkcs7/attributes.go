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
	"encoding/asn1"
	"fmt"
	"sort"
)

type Attribute struct {
	Type   asn1.ObjectIdentifier
	Values asn1.RawValue `asn1:"set"`
}

type AttributeList []Attribute

func (l *AttributeList) Add(oid asn1.ObjectIdentifier, value interface{}) error {
	der, err := asn1.Marshal(value)
	if err != nil {
		return err
	}
	*l = append(*l, Attribute{
		Type: oid,
		Values: asn1.RawValue{
			Class:      asn1.ClassUniversal,
			Tag:        asn1.TagSet,
			IsCompound: true,
			Bytes:      der,
		},
	})
	return nil
}

func (l AttributeList) Exists(oid asn1.ObjectIdentifier) bool {
	for _, attr := range l {
		if attr.Type.Equal(oid) {
			return true
		}
	}
	return false
}

// GetOne decodes the sole value of the named attribute into out.
func (l AttributeList) GetOne(oid asn1.ObjectIdentifier, out interface{}) error {
	for _, raw := range l.GetAll(oid) {
		if _, err := asn1.Unmarshal(raw.FullBytes, out); err != nil {
			return err
		}
		return nil
	}
	return ErrNoAttribute{oid}
}

// GetAll returns the raw values of every instance of the named attribute.
func (l AttributeList) GetAll(oid asn1.ObjectIdentifier) []asn1.RawValue {
	var values []asn1.RawValue
	for _, attr := range l {
		if !attr.Type.Equal(oid) {
			continue
		}
		value := attr.Values
		value.FullBytes = value.Bytes
		values = append(values, value)
	}
	return values
}

// Bytes returns the authenticated attributes in the SET OF encoding that
// gets signed: the implicit [0] tag is replaced with an explicit SET.
func (l AttributeList) Bytes() ([]byte, error) {
	der, err := marshalUnsortedSet(l)
	if err != nil {
		return nil, err
	}
	return der, nil
}

// marshalUnsortedSet encodes a SET OF without the DER value-sort; PKCS#7
// signatures are computed over the attributes as transmitted.
func marshalUnsortedSet(l AttributeList) ([]byte, error) {
	der, err := asn1.Marshal(struct {
		Attributes []Attribute `asn1:"tag:0"`
	}{l})
	if err != nil {
		return nil, err
	}
	var outer asn1.RawValue
	if _, err := asn1.Unmarshal(der, &outer); err != nil {
		return nil, err
	}
	var inner asn1.RawValue
	if _, err := asn1.Unmarshal(outer.Bytes, &inner); err != nil {
		return nil, err
	}
	// retag [0] IMPLICIT as SET
	set := asn1.RawValue{
		Class:      asn1.ClassUniversal,
		Tag:        asn1.TagSet,
		IsCompound: true,
		Bytes:      inner.Bytes,
	}
	return asn1.Marshal(set)
}

// SortedBytes is the strict DER form of the set, used when a consumer
// insists on sorted SET OF encoding.
func (l AttributeList) SortedBytes() ([]byte, error) {
	encoded := make([][]byte, 0, len(l))
	for _, attr := range l {
		der, err := asn1.Marshal(attr)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, der)
	}
	sort.Slice(encoded, func(i, j int) bool {
		return string(encoded[i]) < string(encoded[j])
	})
	var content []byte
	for _, der := range encoded {
		content = append(content, der...)
	}
	return asn1.Marshal(asn1.RawValue{
		Class:      asn1.ClassUniversal,
		Tag:        asn1.TagSet,
		IsCompound: true,
		Bytes:      content,
	})
}

type ErrNoAttribute struct {
	ID asn1.ObjectIdentifier
}

func (e ErrNoAttribute) Error() string {
	return fmt.Sprintf("attribute not found: %s", e.ID)
}
