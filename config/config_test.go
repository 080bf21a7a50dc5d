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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "appxpack.yml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0600))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()
	cfg, err := Load(writeConfig(t, `
compression: 9
token:
  provider: /usr/lib/opensc-pkcs11.so
  slot: 1
  key: 0
`))
	require.NoError(t, err)
	require.NotNil(t, cfg.Compression)
	assert.Equal(t, 9, *cfg.Compression)
	require.NotNil(t, cfg.Token)
	assert.Equal(t, "/usr/lib/opensc-pkcs11.so", cfg.Token.Provider)
	require.NotNil(t, cfg.Token.Slot)
	assert.EqualValues(t, 1, *cfg.Token.Slot)
	require.NotNil(t, cfg.Token.Key)
	assert.EqualValues(t, 0, *cfg.Token.Key)
	assert.Empty(t, cfg.Cert)
}

func TestLoadBadLevel(t *testing.T) {
	t.Parallel()
	_, err := Load(writeConfig(t, "compression: 12\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compression level")
}

func TestLoadMissing(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}
