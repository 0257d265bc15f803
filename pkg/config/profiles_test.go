package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProfilesMissingFileGivesDefaults(t *testing.T) {
	t.Setenv("AMBERHOME", "/opt/amber24")

	profiles, err := LoadProfilesFromFile(filepath.Join(t.TempDir(), "profiles.yaml"))
	require.NoError(t, err)
	require.Len(t, profiles.Profiles, 1)

	local := profiles.Profiles[0]
	assert.Equal(t, "local", local.Name)
	assert.Equal(t, "/opt/amber24/bin/sander", local.CPUPath)
	assert.Equal(t, "/opt/amber24/bin/pmemd.cuda", local.GPUPath)
}

func TestDefaultProfileSearchesPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	bin := t.TempDir()
	sander := filepath.Join(bin, "sander")
	require.NoError(t, os.WriteFile(sander, []byte("#!/bin/sh\n"), 0755))
	t.Setenv("AMBERHOME", "")
	t.Setenv("PATH", bin)

	profiles, err := LoadProfilesFromFile(filepath.Join(t.TempDir(), "profiles.yaml"))
	require.NoError(t, err)
	require.Len(t, profiles.Profiles, 1)

	local := profiles.Profiles[0]
	assert.Equal(t, sander, local.CPUPath)
	assert.Equal(t, "pmemd.cuda", local.GPUPath, "a solver missing from PATH stays a bare name")
}

func TestSaveAndLoadProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "profiles.yaml")
	profiles := &Profiles{Selected: "cluster"}
	require.NoError(t, profiles.Add(Profile{Name: "workstation", CPUPath: "/usr/bin/sander"}))
	require.NoError(t, profiles.Add(Profile{
		Name:        "cluster",
		CPUPath:     "/apps/amber/bin/sander.MPI",
		GPUPath:     "/apps/amber/bin/pmemd.cuda",
		MPILauncher: "srun",
	}))

	require.NoError(t, SaveProfilesToFile(profiles, path))
	loaded, err := LoadProfilesFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, profiles, loaded)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mpi_launcher: srun")
}

func TestLoadProfilesInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles: {"), 0644))

	_, err := LoadProfilesFromFile(path)
	assert.Error(t, err)
}

func TestProfilesAddRemove(t *testing.T) {
	profiles := &Profiles{}
	assert.Error(t, profiles.Add(Profile{}))
	require.NoError(t, profiles.Add(Profile{Name: "a"}))
	require.NoError(t, profiles.Add(Profile{Name: "b"}))
	assert.Error(t, profiles.Add(Profile{Name: "a"}))

	profiles.Selected = "a"
	require.NoError(t, profiles.Remove("a"))
	assert.Empty(t, profiles.Selected)
	assert.Len(t, profiles.Profiles, 1)
	assert.Error(t, profiles.Remove("a"))
}

func TestProfilesActive(t *testing.T) {
	profiles := &Profiles{}
	_, err := profiles.Active("")
	assert.Error(t, err)

	profiles.Profiles = []Profile{{Name: "a"}, {Name: "b"}}

	p, err := profiles.Active("")
	require.NoError(t, err)
	assert.Equal(t, "a", p.Name)

	profiles.Selected = "b"
	p, err = profiles.Active("")
	require.NoError(t, err)
	assert.Equal(t, "b", p.Name)

	p, err = profiles.Active("a")
	require.NoError(t, err)
	assert.Equal(t, "a", p.Name)

	_, err = profiles.Active("c")
	assert.Error(t, err)
}
