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
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// addInput resolves one positional argument into archive members. An
// argument with an equals sign maps an archive name to a local path
// explicitly; a directory is walked and its files packaged under their
// relative paths; a plain file lands at the package root.
func addInput(files map[string]string, arg string) error {
	if eq := strings.IndexByte(arg, '='); eq >= 0 {
		archive, local := arg[:eq], arg[eq+1:]
		if archive == "" || local == "" {
			return fmt.Errorf("invalid input %q: empty archive or local path", arg)
		}
		files[archive] = local
		return nil
	}
	return addPath(files, arg)
}

func addPath(files map[string]string, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		var name string
		if path == root {
			name = d.Name()
		} else {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			name = filepath.ToSlash(rel)
		}
		files[name] = path
		return nil
	})
}
