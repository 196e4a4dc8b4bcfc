package project

import (
	"errors"
	"path/filepath"

	"github.com/piwi3910/StickerSheet/internal/model"
)

// DefaultProfilesPath returns the default file path for custom cutter profiles.
func DefaultProfilesPath() string {
	return filepath.Join(DefaultConfigDir(), "profiles.json")
}

// SaveCustomProfiles saves custom profiles to a JSON file.
func SaveCustomProfiles(path string, profiles []model.GCodeProfile) error {
	for _, p := range profiles {
		if p.Name == "" {
			return errors.New("custom profile has no name")
		}
	}
	return writeJSON(path, profiles)
}

// LoadCustomProfiles loads custom profiles from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadCustomProfiles(path string) ([]model.GCodeProfile, error) {
	var profiles []model.GCodeProfile
	if _, err := readJSON(path, &profiles); err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []model.GCodeProfile{}
	}
	return profiles, nil
}

// FindProfile resolves a profile name, preferring custom profiles over the
// built-in ones. Unknown names fall back to the Generic profile.
func FindProfile(name string, custom []model.GCodeProfile) model.GCodeProfile {
	for _, p := range custom {
		if p.Name == name {
			return p
		}
	}
	return model.GetProfile(name)
}
