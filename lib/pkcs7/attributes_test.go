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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// marshal and unmarshal so FullBytes is set
func roundTrip(t *testing.T, l AttributeList) AttributeList {
	t.Helper()
	raw, err := marshalUnsortedSet(l)
	require.NoError(t, err)
	var l2 AttributeList
	_, err = asn1.UnmarshalWithParams(raw, &l2, "set")
	require.NoError(t, err)
	return l2
}

func TestAttributeList(t *testing.T) {
	t.Parallel()
	var l AttributeList
	assert.False(t, l.Exists(OidAttributeSigningTime))
	a := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, l.Add(OidAttributeSigningTime, a))
	ll := roundTrip(t, l)
	assert.True(t, ll.Exists(OidAttributeSigningTime))
	var x time.Time
	require.NoError(t, ll.GetOne(OidAttributeSigningTime, &x))
	assert.True(t, a.Equal(x))
}

func TestAttributeMissing(t *testing.T) {
	t.Parallel()
	var l AttributeList
	require.NoError(t, l.Add(OidAttributeContentType, OidData))
	var oid asn1.ObjectIdentifier
	err := l.GetOne(OidAttributeMessageDigest, &oid)
	require.Error(t, err)
	assert.IsType(t, ErrNoAttribute{}, err)
}

func TestAttributeBytesIsSet(t *testing.T) {
	t.Parallel()
	var l AttributeList
	require.NoError(t, l.Add(OidAttributeMessageDigest, []byte{1, 2, 3}))
	blob, err := l.Bytes()
	require.NoError(t, err)
	// the signed form carries a universal SET tag
	assert.Equal(t, byte(0x31), blob[0])
}
