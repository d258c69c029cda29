package version

import (
	"fmt"
	"runtime"
	"time"
)

// Set with -ldflags "-X github.com/MrSnakeDoc/flickflock/internal/version.Version=..."
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = time.Now().Format(time.RFC3339)
	GoVersion = runtime.Version()
)

// String is the one-line build summary logged at startup.
func String() string {
	return fmt.Sprintf("flickflock %s (commit=%s, built=%s, go=%s)", Version, Commit, BuildDate, GoVersion)
}
