package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DirName is the per-user configuration directory under $HOME
const DirName = ".mdrun"

// Profile names a machine and where its AMBER binaries live
type Profile struct {
	Name        string `yaml:"name"`
	CPUPath     string `yaml:"cpu_path"`
	GPUPath     string `yaml:"gpu_path,omitempty"`
	MPILauncher string `yaml:"mpi_launcher,omitempty"`
}

// Profiles holds the profile configurations
type Profiles struct {
	Profiles []Profile `yaml:"profiles"`
	Selected string    `yaml:"selected,omitempty"`
}

// Find returns the profile called name
func (p *Profiles) Find(name string) (*Profile, bool) {
	for i := range p.Profiles {
		if p.Profiles[i].Name == name {
			return &p.Profiles[i], true
		}
	}
	return nil, false
}

// Add appends a profile, refusing duplicate names
func (p *Profiles) Add(profile Profile) error {
	if profile.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if _, exists := p.Find(profile.Name); exists {
		return fmt.Errorf("profile %s already exists", profile.Name)
	}
	p.Profiles = append(p.Profiles, profile)
	return nil
}

// Remove deletes the profile called name
func (p *Profiles) Remove(name string) error {
	kept := make([]Profile, 0, len(p.Profiles))
	for _, profile := range p.Profiles {
		if profile.Name != name {
			kept = append(kept, profile)
		}
	}
	if len(kept) == len(p.Profiles) {
		return fmt.Errorf("profile %s not found", name)
	}
	p.Profiles = kept
	if p.Selected == name {
		p.Selected = ""
	}
	return nil
}

// Active returns the profile called name, the selected one when name is
// empty, or the first one.
func (p *Profiles) Active(name string) (*Profile, error) {
	if name == "" {
		name = p.Selected
	}
	if name == "" {
		if len(p.Profiles) == 0 {
			return nil, fmt.Errorf("no profiles configured")
		}
		return &p.Profiles[0], nil
	}
	profile, ok := p.Find(name)
	if !ok {
		return nil, fmt.Errorf("profile %s not found", name)
	}
	return profile, nil
}

// ProfilesPath returns the default profiles file location
func ProfilesPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, DirName, "profiles.yaml"), nil
}

// LoadProfiles loads profiles from the default location
func LoadProfiles() (*Profiles, error) {
	path, err := ProfilesPath()
	if err != nil {
		return nil, err
	}
	return LoadProfilesFromFile(path)
}

// LoadProfilesFromFile loads profiles from a specific file
func LoadProfilesFromFile(path string) (*Profiles, error) {
	// If file doesn't exist, return default profiles
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return getDefaultProfiles(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}

	var profiles Profiles
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse profiles file: %w", err)
	}

	return &profiles, nil
}

// SaveProfiles saves profiles to the default location
func SaveProfiles(profiles *Profiles) error {
	path, err := ProfilesPath()
	if err != nil {
		return err
	}
	return SaveProfilesToFile(profiles, path)
}

// SaveProfilesToFile saves profiles to path, creating its directory
func SaveProfilesToFile(profiles *Profiles, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write profiles file: %w", err)
	}

	return nil
}

// getDefaultProfiles derives a local profile from $AMBERHOME, or from the
// solvers found on PATH when it is unset
func getDefaultProfiles() *Profiles {
	return &Profiles{
		Profiles: []Profile{
			{
				Name:    "local",
				CPUPath: defaultBinary("sander"),
				GPUPath: defaultBinary("pmemd.cuda"),
			},
		},
	}
}

func defaultBinary(name string) string {
	if home := os.Getenv("AMBERHOME"); home != "" {
		return filepath.Join(home, "bin", name)
	}
	if path, err := exec.LookPath(name); err == nil {
		return path
	}
	// Left bare so a later PATH change still finds it
	return name
}
