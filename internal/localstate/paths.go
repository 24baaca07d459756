// Package localstate holds the on-disk state of the local build target:
// the SQLite database and the seeded developer identity.
package localstate

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv relocates every local file, e.g. to a temp dir.
const HomeEnv = "SOCIAL_HOME"

const (
	homeDirName = ".telecom-social"
	sqliteFile  = "social.db"
	homePerm    = 0o700
)

// Home resolves $SOCIAL_HOME, falling back to ~/.telecom-social, and makes
// sure the directory exists and is private to the user.
func Home() (string, error) {
	dir := os.Getenv(HomeEnv)
	if dir == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve user home: %w", err)
		}
		dir = filepath.Join(userHome, homeDirName)
	}
	if err := os.MkdirAll(dir, homePerm); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, nil
}

// SQLitePath returns configured when set, else social.db under Home.
func SQLitePath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	dir, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, sqliteFile), nil
}
