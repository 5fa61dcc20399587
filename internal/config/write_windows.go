//go:build windows

package config

import "os"

func writeFileAtomic(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
