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

// Package p11token signs with keys held by a PKCS#11 token, typically an
// opensc smart card. A token is addressed by provider module, slot id and
// key id; its lifetime spans a single signing operation.
package p11token

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/miekg/pkcs11"
)

type Token struct {
	ctx   *pkcs11.Ctx
	sh    pkcs11.SessionHandle
	mutex sync.Mutex
}

// Open loads a PKCS#11 provider module, opens a session on the given slot
// and logs in with pin.
func Open(provider string, slotID uint, pin string) (*Token, error) {
	if provider == "" {
		return nil, errors.New("missing pkcs11 provider module path")
	}
	ctx := pkcs11.New(provider)
	if ctx == nil {
		return nil, fmt.Errorf("failed to load pkcs11 provider %s", provider)
	}
	if err := ctx.Initialize(); err != nil {
		ctx.Destroy()
		return nil, err
	}
	token := &Token{ctx: ctx}
	runtime.SetFinalizer(token, (*Token).Close)
	slot, err := token.findSlot(slotID)
	if err != nil {
		token.Close()
		return nil, err
	}
	sh, err := token.ctx.OpenSession(slot, pkcs11.CKF_SERIAL_SESSION)
	if err != nil {
		token.Close()
		return nil, err
	}
	token.sh = sh
	err = token.ctx.Login(sh, pkcs11.CKU_USER, pin)
	if err != nil && !errors.Is(err, pkcs11.Error(pkcs11.CKR_USER_ALREADY_LOGGED_IN)) {
		token.Close()
		return nil, err
	}
	return token, nil
}

func (token *Token) Close() {
	token.mutex.Lock()
	defer token.mutex.Unlock()
	if token.ctx != nil {
		token.ctx.Finalize()
		token.ctx.Destroy()
		token.ctx = nil
		runtime.SetFinalizer(token, nil)
	}
}

func (token *Token) findSlot(slotID uint) (uint, error) {
	slots, err := token.ctx.GetSlotList(true)
	if err != nil {
		return 0, err
	}
	for _, slot := range slots {
		if slot == slotID {
			return slot, nil
		}
	}
	return 0, fmt.Errorf("no token present in slot %d", slotID)
}

func (token *Token) getAttribute(handle pkcs11.ObjectHandle, attr uint) []byte {
	attrs, err := token.ctx.GetAttributeValue(token.sh, handle, []*pkcs11.Attribute{pkcs11.NewAttribute(attr, nil)})
	if err != nil {
		return nil
	}
	return attrs[0].Value
}

func (token *Token) findObjects(attrs []*pkcs11.Attribute) ([]pkcs11.ObjectHandle, error) {
	if err := token.ctx.FindObjectsInit(token.sh, attrs); err != nil {
		return nil, err
	}
	objects, _, err := token.ctx.FindObjects(token.sh, 64)
	if err != nil {
		return nil, err
	}
	if err := token.ctx.FindObjectsFinal(token.sh); err != nil {
		return nil, err
	}
	return objects, nil
}
