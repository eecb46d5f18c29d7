// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package btn

import (
	"errors"
)

var ErrNotInitialized = errors.New("btn: instance not initialized")
var ErrIndexOutOfRange = errors.New("btn: index out of range")
var ErrTableTooSmall = errors.New("btn: backing table shorter than n")
var ErrInvalidParameters = errors.New("btn: invalid parameters")
var ErrNotConfigured = errors.New("btn: index not configured")
