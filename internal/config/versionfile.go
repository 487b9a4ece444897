package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadVersion returns the trimmed contents of the project version file under
// the source root. The version surfaced to the documentation generator must
// equal this value exactly.
func (c *Config) ReadVersion(sourceRoot string) (string, error) {
	path := filepath.Join(sourceRoot, c.Project.VersionFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read version file %s: %w", path, err)
	}
	version := strings.TrimSpace(string(data))
	if version == "" {
		return "", fmt.Errorf("version file %s is empty", path)
	}
	return version, nil
}
