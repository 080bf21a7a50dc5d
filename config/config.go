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

// Package config loads optional defaults for packaging runs, so build
// machines can keep credentials and compression settings out of the
// command line.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Compression is the default ZIP compression level, 0-9.
	Compression *int `yaml:"compression,omitempty"`
	// Cert is the path of a PKCS#12 credential file.
	Cert  string       `yaml:"cert,omitempty"`
	Token *TokenConfig `yaml:"token,omitempty"`

	Path string `yaml:"-"`
}

type TokenConfig struct {
	// Provider is the path of a PKCS#11 module
	Provider string `yaml:"provider"`
	Slot     *uint  `yaml:"slot,omitempty"`
	Key      *uint  `yaml:"key,omitempty"`
	Pin      string `yaml:"pin,omitempty"`
}

func Load(path string) (*Config, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := new(Config)
	if err := yaml.Unmarshal(blob, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Compression != nil && (*cfg.Compression < 0 || *cfg.Compression > 9) {
		return nil, fmt.Errorf("%s: compression level must be 0 through 9", path)
	}
	cfg.Path = path
	return cfg, nil
}
