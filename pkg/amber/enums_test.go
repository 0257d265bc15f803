package amber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnums(t *testing.T) {
	shake, err := ParseShakeMode(" Hydrogen ")
	require.NoError(t, err)
	assert.Equal(t, ShakeHydrogen, shake)

	thermostat, err := ParseThermostat("nose-hoover")
	require.NoError(t, err)
	assert.Equal(t, ThermostatNoseHoover, thermostat)

	scaling, err := ParsePressureScaling("semiisotropic")
	require.NoError(t, err)
	assert.Equal(t, PressureSemiIsotropic, scaling)

	barostat, err := ParseBarostat("MONTE_CARLO")
	require.NoError(t, err)
	assert.Equal(t, BarostatMonteCarlo, barostat)

	boundary, err := ParseBoundary("constant_volume")
	require.NoError(t, err)
	assert.Equal(t, BoundaryConstantVolume, boundary)

	_, err = ParseShakeMode("some")
	assert.ErrorIs(t, err, ErrInvalidParameter)
	assert.Contains(t, err.Error(), "all, hydrogen, none")
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "hydrogen", ShakeHydrogen.String())
	assert.Equal(t, "langevin", ThermostatLangevin.String())
	assert.Equal(t, "target_volume", PressureTargetVolume.String())
	assert.Equal(t, "berendsen", BarostatBerendsen.String())
	assert.Equal(t, "constant_pressure", BoundaryConstantPressure.String())
	assert.Equal(t, "ShakeMode(0)", ShakeMode(0).String())
	assert.Equal(t, "minimisation", ModeMinimisation.String())
	assert.Equal(t, "dynamics", ModeDynamics.String())
}

func TestEnumNames(t *testing.T) {
	assert.Equal(t, []string{"all", "hydrogen", "none"}, ShakeModeNames())
	assert.Equal(t, []string{"andersen", "berendsen", "langevin", "none", "nose_hoover"}, ThermostatNames())
	assert.Equal(t, []string{"berendsen", "monte_carlo"}, BarostatNames())
	assert.Len(t, PressureScalingNames(), 5)
	assert.Len(t, BoundaryNames(), 3)
}
