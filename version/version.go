package version

import (
	"fmt"
)

const (
	Version = "0.12"
)

// Used for "User-Agent" in HTTP and stamped in batch reports
var VersionString = fmt.Sprintf("Go-CSSBox %s", Version)
