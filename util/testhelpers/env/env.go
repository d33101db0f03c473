package env

import (
	"os"

	"github.com/ethereum/go-ethereum/log"
)

// Fork tests need a mainnet-fork node (hardhat or anvil) to talk to. CI
// exports TEST_FORK_URL when one is available; tests skip otherwise.
func ForkURL() string {
	url := os.Getenv("TEST_FORK_URL")
	if url == "" {
		log.Debug("TEST_FORK_URL not set, fork tests will be skipped")
	}
	return url
}

// Artifacts directory holding the compiled vault and strategy builds.
// Defaults to the repository's build/ directory.
func ArtifactsDir() string {
	if dir := os.Getenv("TEST_ARTIFACTS_DIR"); dir != "" {
		return dir
	}
	return "../build"
}
