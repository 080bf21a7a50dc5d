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

package passprompt

import (
	"errors"
	"fmt"
	"os"

	"github.com/howeyc/gopass"
)

// PasswordGetter obtains a password or PIN from the user.
type PasswordGetter interface {
	GetPasswd(prompt string) (string, error)
}

// PasswordPrompt reads a password from the controlling terminal.
type PasswordPrompt struct{}

func (PasswordPrompt) GetPasswd(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	passwd, err := gopass.GetPasswd()
	if err == gopass.ErrInterrupted {
		return "", errors.New("aborted")
	} else if err != nil {
		return "", err
	}
	return string(passwd), nil
}

// Static returns a getter that always answers with a fixed value, for
// passwords supplied on the command line or from the environment.
func Static(value string) PasswordGetter {
	return staticPrompt{value}
}

type staticPrompt struct {
	value string
}

func (p staticPrompt) GetPasswd(string) (string, error) {
	return p.value, nil
}
