// Package interfaces defines the narrow host capabilities the transcoder adapter depends on.
package interfaces

// ConfigSource is the host configuration as seen by the adapter.
type ConfigSource interface {
	GetString(key string) string
	GetInt(key string) int
	// SetString updates a value and persists it where the host keeps its configuration.
	SetString(key, value string) error
}

// VersionRegistry records versions of the components the host depends on.
type VersionRegistry interface {
	Register(name, version, kind string)
	Version(name string) string
}

// LockSource reports whether the tuner session that owns a stream is still active.
type LockSource interface {
	IsHeld() bool
}

// ChunkSource produces a finite sequence of byte chunks. Next returns io.EOF once exhausted.
type ChunkSource interface {
	Next() ([]byte, error)
}
