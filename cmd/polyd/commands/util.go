// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package commands

import "strconv"

func itoa(v uint32) string { return strconv.FormatUint(uint64(v), 10) }
