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

import "strings"

const (
	appxSignature     = "AppxSignature.p7x"
	appxCodeIntegrity = "AppxMetadata/CodeIntegrity.cat"
	appxBlockMap      = "AppxBlockMap.xml"
	appxContentTypes  = "[Content_Types].xml"

	bundleManifestFile   = "AppxMetadata/AppxBundleManifest.xml"
	bundleManifestSuffix = "AppxBundleManifest.xml"
)

func isAppxFile(name string) bool {
	return len(name) > len(".appx") && strings.HasSuffix(name, ".appx")
}
