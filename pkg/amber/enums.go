package amber

import (
	"fmt"
	"sort"
	"strings"
)

// ShakeMode is the bond constraint setting (ntc).
type ShakeMode int

const (
	ShakeNone     ShakeMode = 1 // no constraints
	ShakeHydrogen ShakeMode = 2 // bonds involving hydrogen
	ShakeAll      ShakeMode = 3 // all bonds
)

// Thermostat is the temperature coupling scheme (ntt).
type Thermostat int

const (
	ThermostatNone       Thermostat = 0
	ThermostatAndersen   Thermostat = 2
	ThermostatLangevin   Thermostat = 3
	ThermostatNoseHoover Thermostat = 9
	ThermostatBerendsen  Thermostat = 11
)

// PressureScaling is the pressure coupling geometry (ntp).
type PressureScaling int

const (
	PressureNone          PressureScaling = 0
	PressureIsotropic     PressureScaling = 1
	PressureAnisotropic   PressureScaling = 2
	PressureSemiIsotropic PressureScaling = 3
	PressureTargetVolume  PressureScaling = 4
)

// Barostat selects the pressure algorithm (barostat).
type Barostat int

const (
	BarostatBerendsen  Barostat = 1
	BarostatMonteCarlo Barostat = 2
)

// Boundary is the periodic boundary setting (ntb).
type Boundary int

const (
	BoundaryNone             Boundary = 0
	BoundaryConstantVolume   Boundary = 1
	BoundaryConstantPressure Boundary = 2
)

var shakeNames = map[string]ShakeMode{
	"none":     ShakeNone,
	"hydrogen": ShakeHydrogen,
	"all":      ShakeAll,
}

var thermostatNames = map[string]Thermostat{
	"none":        ThermostatNone,
	"andersen":    ThermostatAndersen,
	"langevin":    ThermostatLangevin,
	"nose_hoover": ThermostatNoseHoover,
	"berendsen":   ThermostatBerendsen,
}

var pressureNames = map[string]PressureScaling{
	"none":          PressureNone,
	"isotropic":     PressureIsotropic,
	"anisotropic":   PressureAnisotropic,
	"semiisotropic": PressureSemiIsotropic,
	"target_volume": PressureTargetVolume,
}

var barostatNames = map[string]Barostat{
	"berendsen":   BarostatBerendsen,
	"monte_carlo": BarostatMonteCarlo,
}

var boundaryNames = map[string]Boundary{
	"none":              BoundaryNone,
	"constant_volume":   BoundaryConstantVolume,
	"constant_pressure": BoundaryConstantPressure,
}

func nameOf[T comparable](names map[string]T, v T) (string, bool) {
	for name, value := range names {
		if value == v {
			return name, true
		}
	}
	return "", false
}

func parseName[T comparable](kind string, names map[string]T, s string) (T, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	if v, ok := names[key]; ok {
		return v, nil
	}
	var zero T
	return zero, invalid(kind, s, "must be one of: "+strings.Join(Names(names), ", "))
}

// Names returns the sorted option names of an enumeration table.
func Names[T any](names map[string]T) []string {
	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s ShakeMode) String() string {
	if name, ok := nameOf(shakeNames, s); ok {
		return name
	}
	return fmt.Sprintf("ShakeMode(%d)", int(s))
}

func (s ShakeMode) valid() bool {
	_, ok := nameOf(shakeNames, s)
	return ok
}

// ParseShakeMode accepts none, hydrogen or all.
func ParseShakeMode(s string) (ShakeMode, error) {
	return parseName("ntc", shakeNames, s)
}

// ShakeModeNames lists the accepted names for ParseShakeMode.
func ShakeModeNames() []string { return Names(shakeNames) }

func (t Thermostat) String() string {
	if name, ok := nameOf(thermostatNames, t); ok {
		return name
	}
	return fmt.Sprintf("Thermostat(%d)", int(t))
}

func (t Thermostat) valid() bool {
	_, ok := nameOf(thermostatNames, t)
	return ok
}

func ParseThermostat(s string) (Thermostat, error) {
	return parseName("ntt", thermostatNames, s)
}

func ThermostatNames() []string { return Names(thermostatNames) }

func (p PressureScaling) String() string {
	if name, ok := nameOf(pressureNames, p); ok {
		return name
	}
	return fmt.Sprintf("PressureScaling(%d)", int(p))
}

func (p PressureScaling) valid() bool {
	_, ok := nameOf(pressureNames, p)
	return ok
}

func ParsePressureScaling(s string) (PressureScaling, error) {
	return parseName("ntp", pressureNames, s)
}

func PressureScalingNames() []string { return Names(pressureNames) }

func (b Barostat) String() string {
	if name, ok := nameOf(barostatNames, b); ok {
		return name
	}
	return fmt.Sprintf("Barostat(%d)", int(b))
}

func (b Barostat) valid() bool {
	_, ok := nameOf(barostatNames, b)
	return ok
}

func ParseBarostat(s string) (Barostat, error) {
	return parseName("barostat", barostatNames, s)
}

func BarostatNames() []string { return Names(barostatNames) }

func (b Boundary) String() string {
	if name, ok := nameOf(boundaryNames, b); ok {
		return name
	}
	return fmt.Sprintf("Boundary(%d)", int(b))
}

func (b Boundary) valid() bool {
	_, ok := nameOf(boundaryNames, b)
	return ok
}

func ParseBoundary(s string) (Boundary, error) {
	return parseName("ntb", boundaryNames, s)
}

func BoundaryNames() []string { return Names(boundaryNames) }
