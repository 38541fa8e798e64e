// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package jhd1313m1

import (
	"github.com/sirupsen/logrus"

	"github.com/GermanBionicSystems/grovelcd/common"
)

// Opts holds the collaborators of a Dev. The bus addresses are fixed by the
// module and are not configurable.
type Opts struct {
	// Clock provides the datasheet delays. A clock.Clock from
	// github.com/benbjohnson/clock works; nil means the wall clock.
	Clock common.Sleeper
	// Logger receives one Debug entry per byte sent. nil means
	// logrus.StandardLogger().
	Logger logrus.FieldLogger
}

// DefaultOpts is used when nil is passed to New.
var DefaultOpts = Opts{}
