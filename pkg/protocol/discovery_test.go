package protocol

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picogrid/mdrun/pkg/amber"
)

const annealYAML = `name: anneal
description: Simulated annealing without restraints
parameters:
  - name: temp0
    type: float
    description: Peak temperature (K)
    default: 600
  - name: nstlim
    type: integer
    default: 20000
    min: 1
  - name: note
    type: string
    default: unused
settings:
  ntc: hydrogen
  ntt: 3
  ntb: 1
  gamma_ln: 1.0
`

func writeProtocol(t *testing.T, dir, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefinition(t *testing.T) {
	path := writeProtocol(t, t.TempDir(), annealYAML)

	def, err := LoadDefinition(path)
	require.NoError(t, err)
	assert.Equal(t, "anneal", def.Name)
	assert.Equal(t, path, def.Path)
	assert.Len(t, def.Parameters, 3)
	assert.Equal(t, "hydrogen", def.Settings["ntc"])
}

func TestLoadDefinitionInvalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadDefinition(writeProtocol(t, filepath.Join(dir, "a"), "description: no name\n"))
	assert.Error(t, err)

	_, err = LoadDefinition(writeProtocol(t, filepath.Join(dir, "b"), "name: bad\nsettings:\n  nct: 2\n"))
	assert.Error(t, err)

	_, err = LoadDefinition(writeProtocol(t, filepath.Join(dir, "c"),
		"name: bad\nparameters:\n  - name: n\n    type: integer\n    default: lots\n"))
	assert.Error(t, err)

	_, err = LoadDefinition(filepath.Join(dir, "missing", FileName))
	assert.Error(t, err)
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeProtocol(t, filepath.Join(root, "anneal"), annealYAML)
	writeProtocol(t, filepath.Join(root, "nested", "cool"), "name: cool\nsettings:\n  temp0: 100\n")
	writeProtocol(t, filepath.Join(root, "broken"), "name: [\n")
	require.NoError(t, os.WriteFile(filepath.Join(root, "other.yaml"), []byte("name: ignored\n"), 0644))

	defs, err := Discover(root)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "anneal", defs[0].Name)
	assert.Equal(t, "cool", defs[1].Name)

	_, err = Discover(filepath.Join(root, "nope"))
	assert.Error(t, err)
}

func TestRegisterDirAndApply(t *testing.T) {
	root := t.TempDir()
	writeProtocol(t, filepath.Join(root, "anneal"), annealYAML)

	r := NewRegistry()
	n, err := RegisterDir(r, root)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	p, err := r.Get("anneal")
	require.NoError(t, err)
	assert.Equal(t, "Simulated annealing without restraints", p.Description())

	params, err := Resolve(p.Parameters(), map[string]interface{}{"nstlim": "40000"})
	require.NoError(t, err)

	cfg := amber.Default()
	require.NoError(t, cfg.SetRestraints("@CA", 1))
	require.NoError(t, p.Apply(cfg, params))

	assert.Equal(t, amber.ShakeHydrogen, cfg.Shake())
	assert.Equal(t, amber.BoundaryConstantVolume, cfg.Boundary())
	assert.Equal(t, 40000, cfg.Steps())
	target, _ := cfg.Temperature()
	assert.Equal(t, 600.0, target)

	// a second scan of the same directory collides with the first
	_, err = RegisterDir(r, root)
	assert.Error(t, err)
}

func TestFileProtocolRejectsBadSettings(t *testing.T) {
	p := FromDefinition(Definition{Name: "bad", Settings: map[string]interface{}{"dt": -1}})
	assert.ErrorIs(t, p.Apply(amber.Default(), nil), amber.ErrInvalidParameter)
}
