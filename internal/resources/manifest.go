package resources

import (
	"errors"
	"fmt"

	"github.com/alnah/go-textpipe/internal/yamlutil"
)

// Field length limits for manifest values.
const (
	MaxNameLength        = 100
	MaxVersionLength     = 50
	MaxDescriptionLength = 500
	MaxTypeLength        = 100
)

// HomeManifest describes a resource home (textpipe.yaml).
type HomeManifest struct {
	Name    string   `yaml:"name"`
	Version string   `yaml:"version"`
	Plugins []string `yaml:"plugins"` // plugin URIs registered at initialisation
}

// PluginManifest describes a plugin directory (creole.yaml).
type PluginManifest struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Resources   []string        `yaml:"resources"` // resource kinds the plugin provides
	Gazetteer   GazetteerConfig `yaml:"gazetteer"`
}

// GazetteerConfig lists the gazetteer lists shipped by a plugin.
type GazetteerConfig struct {
	Lists []ListEntry `yaml:"lists"`
}

// ListEntry is one gazetteer list file and the types its phrases receive.
type ListEntry struct {
	File      string `yaml:"file"` // relative to the plugin directory
	MajorType string `yaml:"majorType"`
	MinorType string `yaml:"minorType"`
}

// LoadHomeManifest reads and validates textpipe.yaml from src.
func LoadHomeManifest(src Source) (*HomeManifest, error) {
	data, err := readManifest(src, HomeManifestFile)
	if err != nil {
		return nil, err
	}

	var m HomeManifest
	if err := yamlutil.UnmarshalStrict(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrManifestParse, HomeManifestFile, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadPluginManifest reads and validates creole.yaml from src.
func LoadPluginManifest(src Source) (*PluginManifest, error) {
	data, err := readManifest(src, PluginManifestFile)
	if err != nil {
		return nil, err
	}

	var m PluginManifest
	if err := yamlutil.UnmarshalStrict(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrManifestParse, PluginManifestFile, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func readManifest(src Source, name string) ([]byte, error) {
	data, err := src.ReadFile(name)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return nil, fmt.Errorf("%w: %s in %s", ErrManifestNotFound, name, src.Location())
		}
		return nil, err
	}
	return data, nil
}

// Validate checks required fields and lengths.
func (m *HomeManifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidManifest)
	}
	if err := validateFieldLength("name", m.Name, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("version", m.Version, MaxVersionLength); err != nil {
		return err
	}
	for i, p := range m.Plugins {
		if p == "" {
			return fmt.Errorf("%w: plugins[%d] is empty", ErrInvalidManifest, i)
		}
	}
	return nil
}

// Validate checks the plugin name, list paths and list types.
func (m *PluginManifest) Validate() error {
	if err := ValidateName(m.Name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if err := validateFieldLength("description", m.Description, MaxDescriptionLength); err != nil {
		return err
	}
	for i, r := range m.Resources {
		if r == "" {
			return fmt.Errorf("%w: resources[%d] is empty", ErrInvalidManifest, i)
		}
	}
	for i, l := range m.Gazetteer.Lists {
		if err := validateRelPath(l.File); err != nil {
			return fmt.Errorf("%w: gazetteer.lists[%d].file: %v", ErrInvalidManifest, i, err)
		}
		if l.MajorType == "" {
			return fmt.Errorf("%w: gazetteer.lists[%d].majorType is required", ErrInvalidManifest, i)
		}
		if err := validateFieldLength(fmt.Sprintf("gazetteer.lists[%d].majorType", i), l.MajorType, MaxTypeLength); err != nil {
			return err
		}
		if err := validateFieldLength(fmt.Sprintf("gazetteer.lists[%d].minorType", i), l.MinorType, MaxTypeLength); err != nil {
			return err
		}
	}
	return nil
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrInvalidManifest, fieldName, len(value), maxLength)
	}
	return nil
}
