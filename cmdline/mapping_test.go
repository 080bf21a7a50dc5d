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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, text string) (map[string]string, error) {
	t.Helper()
	files := make(map[string]string)
	err := parseMapping(strings.NewReader(text), "test.map", files)
	return files, err
}

func TestMappingFile(t *testing.T) {
	t.Parallel()
	files, err := parse(t, `
[Files]
"/src/app.exe" "app.exe"

	"/src/assets/logo.png"	"Assets/logo.png"
`)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"app.exe":         "/src/app.exe",
		"Assets/logo.png": "/src/assets/logo.png",
	}, files)
}

func TestMappingMissingHeader(t *testing.T) {
	t.Parallel()
	_, err := parse(t, `"/a" "b"`)
	require.Error(t, err)
	var malformed MalformedMappingError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 1, malformed.Line)
}

func TestMappingBadLines(t *testing.T) {
	t.Parallel()
	for _, line := range []string{
		`garbage`,
		`"onlylocal"`,
		`"local" garbage "archive"`,
		`"local" "archive" trailing`,
		`"" "archive"`,
		`"local" ""`,
	} {
		_, err := parse(t, "[Files]\n"+line+"\n")
		assert.Error(t, err, "line %q should be rejected", line)
	}
}

func TestMappingEmpty(t *testing.T) {
	t.Parallel()
	files, err := parse(t, "\n\n")
	require.NoError(t, err)
	assert.Empty(t, files)
}
