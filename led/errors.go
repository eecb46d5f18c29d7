// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package led

import (
	"errors"
)

var ErrNotInitialized = errors.New("led: instance not initialized")
var ErrIndexOutOfRange = errors.New("led: index out of range")
var ErrTableTooSmall = errors.New("led: backing table shorter than n")
var ErrInvalidParameters = errors.New("led: invalid pattern parameters")
var ErrNotConfigured = errors.New("led: index not configured")
