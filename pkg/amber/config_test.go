package amber

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picogrid/mdrun/pkg/logger"
)

func TestSetTimestep(t *testing.T) {
	tests := []struct {
		name     string
		timestep float64
		wantErr  bool
	}{
		{"zero", 0, true},
		{"negative", -0.002, true},
		{"small", 0.0005, false},
		{"default", 0.002, false},
		{"large", 4, false},
		{"nan", math.NaN(), true},
		{"positive infinity", math.Inf(1), true},
		{"negative infinity", math.Inf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := cfg.SetTimestep(tt.timestep)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidParameter))
				assert.Equal(t, DefaultTimestep, cfg.Timestep())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.timestep, cfg.Timestep())
		})
	}
}

func TestMinimisationToggle(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.IsMinimisation())
	assert.Equal(t, ModeDynamics, cfg.Mode())

	require.NoError(t, cfg.SetMinimisation(100))
	assert.True(t, cfg.IsMinimisation())
	assert.Equal(t, ModeMinimisation, cfg.Mode())
	total, steepest := cfg.MinimisationSteps()
	assert.Equal(t, 100, total)
	assert.Equal(t, 50, steepest)

	require.NoError(t, cfg.SetMinimisationSteps(200, 150))
	assert.True(t, cfg.IsMinimisation())
	total, steepest = cfg.MinimisationSteps()
	assert.Equal(t, 200, total)
	assert.Equal(t, 150, steepest)
}

func TestMinimisationSteepestDefaultsToHalf(t *testing.T) {
	for _, total := range []int{0, 1, 2, 7, 101, 5000} {
		cfg := Default()
		require.NoError(t, cfg.SetMinimisation(total))
		gotTotal, gotSteepest := cfg.MinimisationSteps()
		assert.Equal(t, total, gotTotal)
		assert.Equal(t, total/2, gotSteepest, "total=%d", total)
		assert.Equal(t, ModeMinimisation, cfg.Mode())
	}
}

func TestMinimisationRejectsNegativeSteps(t *testing.T) {
	cfg := Default()
	assert.ErrorIs(t, cfg.SetMinimisation(-1), ErrInvalidParameter)
	assert.ErrorIs(t, cfg.SetMinimisationSteps(10, -1), ErrInvalidParameter)
	assert.False(t, cfg.IsMinimisation())
	assert.Equal(t, ModeDynamics, cfg.Mode())
}

func TestDynamicsToggle(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.SetMinimisation(100))

	corrected, err := cfg.SetDynamics(0.002, ShakeAll)
	require.NoError(t, err)
	assert.False(t, corrected)
	assert.Equal(t, 0.002, cfg.Timestep())
	assert.Equal(t, ShakeAll, cfg.Shake())

	corrected, err = cfg.SetDynamics(0.0005, ShakeNone)
	require.NoError(t, err)
	assert.False(t, corrected)
	assert.Equal(t, 0.0005, cfg.Timestep())
	assert.Equal(t, ShakeNone, cfg.Shake())

	corrected, err = cfg.SetDynamics(1, ShakeNone)
	require.NoError(t, err)
	assert.True(t, corrected)
	assert.Equal(t, 1.0, cfg.Timestep())
	assert.Equal(t, ShakeHydrogen, cfg.Shake())
}

func TestDynamicsCorrectionBoundary(t *testing.T) {
	cfg := Default()
	corrected, err := cfg.SetDynamics(0.001, ShakeNone)
	require.NoError(t, err)
	assert.True(t, corrected, "1 fs without SHAKE is not allowed")
	assert.Equal(t, ShakeHydrogen, cfg.Shake())
}

func TestMinimisationThenDynamics(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.SetMinimisation(100))
	require.Equal(t, ModeMinimisation, cfg.Mode())
	require.True(t, cfg.IsMinimisation())

	_, err := cfg.SetDynamics(DefaultTimestep, ShakeNone)
	require.NoError(t, err)
	assert.Equal(t, ModeDynamics, cfg.Mode())
	assert.False(t, cfg.IsMinimisation())
	assert.Equal(t, 0, cfg.ToMap()["imin"])
	assert.NoError(t, cfg.Validate())
}

func TestSetDynamicsRejectsBadInput(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.SetMinimisation(10))

	_, err := cfg.SetDynamics(0, ShakeHydrogen)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = cfg.SetDynamics(0.002, ShakeMode(7))
	assert.ErrorIs(t, err, ErrInvalidParameter)

	assert.True(t, cfg.IsMinimisation(), "a rejected call must not switch modes")
}

func TestFloatSettersRejectNonFinite(t *testing.T) {
	for _, x := range []float64{math.NaN(), math.Inf(1)} {
		cfg := Default()
		_, err := cfg.SetDynamics(x, ShakeHydrogen)
		assert.ErrorIs(t, err, ErrInvalidParameter, "dt=%v", x)
		assert.ErrorIs(t, cfg.SetCutoff(x), ErrInvalidParameter, "cut=%v", x)
		assert.ErrorIs(t, cfg.SetDielectric(x), ErrInvalidParameter, "dielc=%v", x)
		assert.ErrorIs(t, cfg.SetRestraints("@CA", x), ErrInvalidParameter, "restraint_wt=%v", x)
		assert.ErrorIs(t, cfg.SetTemperature(x, 0), ErrInvalidParameter, "temp0=%v", x)
		assert.ErrorIs(t, cfg.SetTemperature(300, x), ErrInvalidParameter, "tempi=%v", x)
		assert.ErrorIs(t, cfg.SetCollisionFrequency(x), ErrInvalidParameter, "gamma_ln=%v", x)
		assert.ErrorIs(t, cfg.SetPressure(PressureIsotropic, BarostatMonteCarlo, x), ErrInvalidParameter, "pres0=%v", x)
		assert.NoError(t, cfg.Validate())
	}
}

func TestSetOutputs(t *testing.T) {
	cfg := Default()
	cfg.SetOutputs(10, 20, 30)
	energy, restart, trajectory := cfg.Outputs()
	assert.Equal(t, 10, energy)
	assert.Equal(t, 20, restart)
	assert.Equal(t, 30, trajectory)

	m := cfg.ToMap()
	assert.Equal(t, 10, m["ntpr"])
	assert.Equal(t, 20, m["ntwr"])
	assert.Equal(t, 30, m["ntwx"])
}

func TestRestraints(t *testing.T) {
	cfg := Default()
	_, ok := cfg.Restraints()
	assert.False(t, ok)
	assert.Equal(t, 0, cfg.ToMap()["ntr"])

	require.NoError(t, cfg.SetRestraints("@CA", 2.5))
	r, ok := cfg.Restraints()
	require.True(t, ok)
	assert.Equal(t, Restraints{Mask: "@CA", Weight: 2.5}, r)

	m := cfg.ToMap()
	assert.Equal(t, 1, m["ntr"])
	assert.Equal(t, "@CA", m["restraintmask"])
	assert.Equal(t, 2.5, m["restraint_wt"])

	cfg.ClearRestraints()
	m = cfg.ToMap()
	assert.Equal(t, 0, m["ntr"])
	assert.NotContains(t, m, "restraintmask")
	assert.NotContains(t, m, "restraint_wt")

	// clearing twice is fine
	cfg.ClearRestraints()
	require.NoError(t, cfg.SetRestraints("", 5))
	_, ok = cfg.Restraints()
	assert.False(t, ok)
}

func TestRestraintsRejectNegativeWeight(t *testing.T) {
	cfg := Default()
	assert.ErrorIs(t, cfg.SetRestraints("@CA", -1), ErrInvalidParameter)
	_, ok := cfg.Restraints()
	assert.False(t, ok)
}

func TestToMapExcludesInternalFields(t *testing.T) {
	cfg := New("/nonexistent/sander", "/nonexistent/pmemd.cuda")
	m := cfg.ToMap()

	for key := range m {
		assert.False(t, strings.HasPrefix(key, "_"), key)
	}
	for _, hidden := range []string{"minimisation", "cpuPath", "gpuPath", "CPUPath", "GPUPath"} {
		assert.NotContains(t, m, hidden)
	}
	for _, key := range []string{"imin", "dt", "ntc", "nstlim", "ig", "ntt", "ntp", "barostat", "pres0"} {
		assert.Contains(t, m, key)
	}
	assert.Equal(t, RandomSeed, m["ig"])
	assert.Equal(t, len(cfg.Entries()), len(m))
}

func TestNewWarnsOnMissingBinaries(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stderr)

	sander := filepath.Join(t.TempDir(), "sander")
	require.NoError(t, os.WriteFile(sander, []byte("#!/bin/sh\n"), 0755))

	cfg := New(sander, "/nonexistent/pmemd.cuda")
	require.NotNil(t, cfg)
	assert.Equal(t, sander, cfg.CPUPath())

	missing := cfg.MissingBinaries()
	require.Len(t, missing, 1)
	assert.Equal(t, "GPU", missing[0].Kind)
	assert.Contains(t, buf.String(), "GPU binary not found")
	assert.NotContains(t, buf.String(), "CPU binary not found")

	// the configuration stays usable
	assert.NoError(t, cfg.SetMinimisation(10))
}

func TestMissingBinariesSearchesPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("PATH lookup needs an executable extension on windows")
	}
	bin := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bin, "sander"), []byte("#!/bin/sh\n"), 0755))
	t.Setenv("PATH", bin)

	cfg := Default()
	cfg.SetBinaries("sander", "pmemd.cuda")
	missing := cfg.MissingBinaries()
	require.Len(t, missing, 1)
	assert.Equal(t, Binary{Kind: "GPU", Path: "pmemd.cuda"}, missing[0])
}

func TestSetPressureSelectsConstantPressure(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.SetPressure(PressureIsotropic, BarostatMonteCarlo, 1.0))
	assert.Equal(t, BoundaryConstantPressure, cfg.Boundary())
	assert.NoError(t, cfg.Validate())

	require.NoError(t, cfg.SetBoundary(BoundaryConstantVolume))
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidParameter)

	assert.ErrorIs(t, cfg.SetPressure(PressureIsotropic, Barostat(9), 1.0), ErrInvalidParameter)
	assert.ErrorIs(t, cfg.SetPressure(PressureIsotropic, BarostatBerendsen, 0), ErrInvalidParameter)
}

func TestOtherSettersValidate(t *testing.T) {
	cfg := Default()
	assert.ErrorIs(t, cfg.SetSteps(-1), ErrInvalidParameter)
	assert.ErrorIs(t, cfg.SetCutoff(0), ErrInvalidParameter)
	assert.ErrorIs(t, cfg.SetDielectric(-2), ErrInvalidParameter)
	assert.ErrorIs(t, cfg.SetForceEvaluation(0), ErrInvalidParameter)
	assert.ErrorIs(t, cfg.SetFastWater(5), ErrInvalidParameter)
	assert.ErrorIs(t, cfg.SetMinimisationAlgorithm(6), ErrInvalidParameter)
	assert.ErrorIs(t, cfg.SetThermostat(Thermostat(4)), ErrInvalidParameter)
	assert.ErrorIs(t, cfg.SetTemperature(-1, 0), ErrInvalidParameter)
	assert.ErrorIs(t, cfg.SetCollisionFrequency(-1), ErrInvalidParameter)
	assert.NoError(t, cfg.Validate())
}

func TestSetRestart(t *testing.T) {
	cfg := Default()
	cfg.SetRestart(true)
	assert.True(t, cfg.IsRestart())
	assert.Equal(t, 5, cfg.ToMap()["ntx"])

	cfg.SetRestart(false)
	assert.Equal(t, 0, cfg.ToMap()["irest"])
	assert.Equal(t, 1, cfg.ToMap()["ntx"])
}

func TestClone(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.SetRestraints("@CA", 1))

	clone := cfg.Clone()
	require.NoError(t, clone.SetRestraints("@N", 3))
	require.NoError(t, clone.SetMinimisation(10))

	r, _ := cfg.Restraints()
	assert.Equal(t, "@CA", r.Mask)
	assert.False(t, cfg.IsMinimisation())
}

func TestParameterError(t *testing.T) {
	err := Default().SetTimestep(-1)

	var perr *ParameterError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "dt", perr.Name)
	assert.Equal(t, "amber: invalid dt (-1): timestep must be positive", err.Error())
}
