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

// Package cmdline implements the appxpack command.
package cmdline

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sassoftware/appxpack/config"
	"github.com/sassoftware/appxpack/lib/atomicfile"
	"github.com/sassoftware/appxpack/lib/makeappx"
)

const pivPinEnv = "APPX_PIV_PIN"

var (
	argOutput  string
	argCert    string
	argModule  string
	argSlot    uint
	argKeyID   uint
	argPin     string
	argBundle  bool
	argMapping []string
	argConfig  string
	argVerbose bool
	argLevels  [10]bool
)

var RootCmd = &cobra.Command{
	Use:   "appxpack -o package.appx [options] INPUT...",
	Short: "Create an optionally-signed Microsoft APPX or APPXBUNDLE package",
	Long: `Create an optionally-signed Microsoft APPX or APPXBUNDLE package.

An input is either a directory (all files below it are packaged under
their relative paths), a plain file (packaged at the root), an
archive=local pair, or a mapping file given with -f. Mapping files have
the form:

  [Files]
  "/path/to/local/file.exe" "appx_file.exe"

Signing uses a PKCS#12 file (-c) or a PKCS#11 smart card (-m/-s/-k).
When -p is omitted the ` + pivPinEnv + ` environment variable supplies
the smart card PIN.`,
	RunE:          runPackage,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	flags := RootCmd.Flags()
	flags.StringVarP(&argOutput, "output", "o", "", "Write the package to this path (required)")
	flags.StringVarP(&argCert, "cert", "c", "", "Sign with the key and certificates in this PKCS#12 file")
	flags.StringVarP(&argModule, "module", "m", "", "Sign with a key from this PKCS#11 module")
	flags.UintVarP(&argSlot, "slot", "s", 0, "Smart card slot id")
	flags.UintVarP(&argKeyID, "key-id", "k", 0, "Smart card key id")
	flags.StringVarP(&argPin, "pin", "p", "", "Smart card PIN")
	flags.BoolVarP(&argBundle, "bundle", "b", false, "Produce an APPXBUNDLE instead of an APPX")
	flags.StringArrayVarP(&argMapping, "mapping", "f", nil, "Read inputs from a mapping file; - reads standard input")
	flags.StringVar(&argConfig, "config", "", "Read defaults from a YAML configuration file")
	flags.BoolVarP(&argVerbose, "verbose", "v", false, "Log each member as it is added")
	for i := range argLevels {
		digit := strconv.Itoa(i)
		usage := "ZIP compression level " + digit
		switch i {
		case 0:
			usage = "No ZIP compression (store files)"
		case 9:
			usage = "Best ZIP compression"
		}
		flags.BoolVarP(&argLevels[i], digit, digit, false, usage)
	}
	RootCmd.MarkFlagRequired("output")
}

func Main() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if argVerbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()
}

func compressionLevel(cfg *config.Config) (int, error) {
	level := -1
	for i, set := range argLevels {
		if !set {
			continue
		}
		if level >= 0 {
			return 0, fmt.Errorf("conflicting compression levels -%d and -%d", level, i)
		}
		level = i
	}
	if level < 0 {
		if cfg != nil && cfg.Compression != nil {
			return *cfg.Compression, nil
		}
		level = 0
	}
	return level, nil
}

func runPackage(cmd *cobra.Command, args []string) error {
	log := newLogger()
	var cfg *config.Config
	if argConfig != "" {
		var err error
		if cfg, err = config.Load(argConfig); err != nil {
			return err
		}
	}
	level, err := compressionLevel(cfg)
	if err != nil {
		return err
	}
	inputs := make(map[string]string)
	for _, path := range argMapping {
		if err := addMappingFile(inputs, path); err != nil {
			return err
		}
	}
	for _, arg := range args {
		if err := addInput(inputs, arg); err != nil {
			return err
		}
	}
	if len(inputs) == 0 {
		return errors.New("no input files; give paths, archive=local pairs, or -f")
	}
	signer, err := makeSigner(cfg, &log)
	if err != nil {
		return err
	}
	out, err := atomicfile.New(argOutput)
	if err != nil {
		return err
	}
	defer out.Close()
	err = makeappx.Write(out, inputs, makeappx.Options{
		Bundle:           argBundle,
		CompressionLevel: level,
		Signer:           signer,
		Log:              &log,
	})
	if err != nil {
		return err
	}
	if err := out.Commit(); err != nil {
		return err
	}
	log.Info().Str("path", argOutput).Msg("wrote package")
	return nil
}
