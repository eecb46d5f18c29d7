// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package led

import (
	"github.com/intuitivelabs/slog"
)

var log = slog.Log{Level: slog.LWARN, Prefix: "led: "}

func DBGon() bool { return log.L >= slog.LDBG }
func ERRon() bool { return log.L >= slog.LERR }

func DBG(f string, args ...interface{}) { log.DBG(f, args...) }
func ERR(f string, args ...interface{}) { log.ERR(f, args...) }
func BUG(f string, args ...interface{}) { log.BUG(f, args...) }
