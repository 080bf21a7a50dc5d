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

package makeappx

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/sassoftware/appxpack/lib/zipbuilder"
)

// patchBundleManifest loads the caller's bundle manifest and substitutes
// every "<name>-offset" placeholder with the decimal offset at which that
// member's data begins in the archive. Substitution is literal, applied
// once per already-written member, so a manifest may reference the same
// member any number of times.
func patchBundleManifest(inputPath string, entries []*zipbuilder.FileEntry) ([]byte, error) {
	blob, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("bundle manifest: %w", err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(blob); err != nil {
		return nil, fmt.Errorf("bundle manifest: parsing %s: %w", inputPath, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("bundle manifest: %s has no document element", inputPath)
	}
	text := string(blob)
	for _, e := range entries {
		placeholder := e.Name + "-offset"
		offset := strconv.FormatInt(e.DataOffset(), 10)
		text = strings.ReplaceAll(text, placeholder, offset)
	}
	return []byte(text), nil
}
