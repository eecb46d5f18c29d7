// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package hostsim

import (
	"github.com/intuitivelabs/slog"
)

var log = slog.Log{Level: slog.LWARN, Prefix: "hostsim: "}

func DBGon() bool { return log.L >= slog.LDBG }

func DBG(f string, args ...interface{}) { log.DBG(f, args...) }
func ERR(f string, args ...interface{}) { log.ERR(f, args...) }
