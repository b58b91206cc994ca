package mentor

import _ "embed"

// Version is the release of the mentor module.
//
//go:embed VERSION
var Version string
