// Package versions records the versions of the host and the tools it drives.
package versions

import (
	"runtime"
	"sort"
	"sync"

	"github.com/attaebra/tuner-ffmpeg/internal/constants"
	"github.com/attaebra/tuner-ffmpeg/internal/interfaces"
)

// Entry is one registered version.
type Entry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Kind    string `json:"kind"`
}

// Registry is a concurrency-safe version registry.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

var _ interfaces.VersionRegistry = (*Registry)(nil)

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register records (or replaces) the version of name.
func (r *Registry) Register(name, version, kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = Entry{Name: name, Version: version, Kind: kind}
}

// Version returns the recorded version of name, or "" if unknown.
func (r *Registry) Version(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[name].Version
}

// All returns every entry sorted by name.
func (r *Registry) All() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RegisterPlatform records the operating system under the name the transcoder setup reads.
func (r *Registry) RegisterPlatform() {
	r.Register(constants.OperatingSystemKey, PlatformName(runtime.GOOS), constants.VersionKindEnv)
}

// PlatformName maps a GOOS value to the host's operating system naming.
func PlatformName(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	default:
		return goos
	}
}
