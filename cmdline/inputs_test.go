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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddInputPair(t *testing.T) {
	t.Parallel()
	files := make(map[string]string)
	require.NoError(t, addInput(files, "Assets/logo.png=/tmp/logo.png"))
	assert.Equal(t, map[string]string{"Assets/logo.png": "/tmp/logo.png"}, files)

	assert.Error(t, addInput(files, "=/tmp/x"))
	assert.Error(t, addInput(files, "archive="))
}

func TestAddInputFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "app.exe")
	require.NoError(t, os.WriteFile(path, []byte("MZ"), 0644))
	files := make(map[string]string)
	require.NoError(t, addInput(files, path))
	assert.Equal(t, map[string]string{"app.exe": path}, files)
}

func TestAddInputDirectory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Assets"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AppxManifest.xml"), []byte("<Package/>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Assets", "logo.png"), []byte("png"), 0644))
	files := make(map[string]string)
	require.NoError(t, addInput(files, dir))
	assert.Equal(t, map[string]string{
		"AppxManifest.xml": filepath.Join(dir, "AppxManifest.xml"),
		"Assets/logo.png":  filepath.Join(dir, "Assets", "logo.png"),
	}, files)
}

func TestAddInputMissing(t *testing.T) {
	t.Parallel()
	files := make(map[string]string)
	assert.Error(t, addInput(files, filepath.Join(t.TempDir(), "nope")))
}
