package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/attaebra/tuner-ffmpeg/internal/constants"
	"github.com/attaebra/tuner-ffmpeg/internal/interfaces"
	"github.com/attaebra/tuner-ffmpeg/internal/logger"
)

// Store exposes a Config to the adapter by dotted key and writes updates back to its file.
type Store struct {
	mu   sync.RWMutex
	cfg  *Config
	path string
}

var _ interfaces.ConfigSource = (*Store)(nil)

// NewStore wraps cfg. When path is non-empty, SetString writes the changed key
// into the file there, leaving every other setting in the file as it was.
func NewStore(cfg *Config, path string) *Store {
	return &Store{cfg: cfg, path: path}
}

// GetString returns the value for key, or "" for unknown keys.
func (s *Store) GetString(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch key {
	case constants.KeyFFmpegPath:
		return s.cfg.FFmpeg.Path
	case constants.KeyFFmpegProfiles:
		return s.cfg.FFmpeg.Profiles
	case constants.KeyLoggingLevel:
		return s.cfg.Logging.Level
	case constants.KeyFFmpegBuffSize:
		return strconv.Itoa(s.cfg.FFmpeg.BuffSize)
	}
	return ""
}

// GetInt returns the integer value for key, or 0.
func (s *Store) GetInt(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch key {
	case constants.KeyFFmpegBuffSize:
		return s.cfg.FFmpeg.BuffSize
	}
	return 0
}

// SetString updates key and persists the configuration file atomically.
func (s *Store) SetString(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch key {
	case constants.KeyFFmpegPath:
		s.cfg.FFmpeg.Path = value
	case constants.KeyFFmpegProfiles:
		s.cfg.FFmpeg.Profiles = value
	case constants.KeyLoggingLevel:
		s.cfg.Logging.Level = value
	default:
		return fmt.Errorf("unknown configuration key %q", key)
	}

	return s.persist(key, value)
}

// Snapshot returns a copy of the current configuration.
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.cfg
}

// persist writes key into the config file. Only the file's own contents are
// rewritten, so flag and environment overrides held in s.cfg never reach disk.
func (s *Store) persist(key, value string) error {
	if s.path == "" {
		return nil
	}

	var doc yaml.Node
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read config file %s: %w", s.path, err)
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse config file %s: %w", s.path, err)
		}
	}

	setNodeValue(&doc, strings.Split(key, "."), value)

	data, err = yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("write config file %s: %w", s.path, err)
	}

	logger.Debug("Persisted %s to %s", key, s.path)
	return nil
}

// setNodeValue sets the scalar at the dotted path under doc, creating any
// missing mappings on the way.
func setNodeValue(doc *yaml.Node, path []string, value string) {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		*doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}

	node := doc.Content[0]
	if node.Kind != yaml.MappingNode {
		*node = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}

	for i, name := range path {
		last := i == len(path)-1

		var child *yaml.Node
		for j := 0; j+1 < len(node.Content); j += 2 {
			if node.Content[j].Value == name {
				child = node.Content[j+1]
				break
			}
		}
		if child == nil {
			child = &yaml.Node{}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}, child)
		}

		if last {
			*child = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
			return
		}
		if child.Kind != yaml.MappingNode {
			*child = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		}
		node = child
	}
}
