package logging

import (
	"os"
)

// DebugEnv forces debug-level logging when set to any non-empty value.
const DebugEnv = "TP_DEBUG"

// DebugEnabled returns true if debug mode is enabled via TP_DEBUG environment variable
func DebugEnabled() bool {
	return os.Getenv(DebugEnv) != ""
}
