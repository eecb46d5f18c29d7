// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package swt

import (
	"errors"
)

var ErrNotInitialized = errors.New("swt: instance not initialized")
var ErrAlreadyInitialized = errors.New("swt: instance already initialized")
var ErrInvalidParameters = errors.New("swt: invalid parameters")
var ErrIndexOutOfRange = errors.New("swt: slot index out of range")
var ErrTableTooSmall = errors.New("swt: backing table shorter than n")
var ErrBadHWInterface = errors.New("swt: incomplete hardware interface")
