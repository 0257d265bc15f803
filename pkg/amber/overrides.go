package amber

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// overrideOrder fixes the order ApplyOverrides visits keys in: the run mode
// comes last so that it sees the step counts and timestep set alongside it,
// and the restraint weight follows its mask.
var overrideOrder = []string{
	"irest", "ntmin", "maxcyc", "ncyc", "nstlim", "dt", "ig",
	"ntpr", "ntwx", "ntwr", "ioutfm", "iwrap",
	"ntc", "ntf", "jfastw", "cut", "dielc", "nmropt",
	"restraintmask", "restraint_wt", "ntr",
	"ntb", "ntt", "temp0", "tempi", "gamma_ln", "ntp", "barostat", "pres0",
	"imin",
}

// Keys lists the namelist keys accepted by Set.
func Keys() []string {
	keys := append([]string(nil), overrideOrder...)
	sort.Strings(keys)
	return keys
}

// ApplyOverrides sets every key of overrides through Set.
func (c *Config) ApplyOverrides(overrides map[string]interface{}) error {
	for key := range overrides {
		if !isKey(key) {
			return fmt.Errorf("%w: unknown key %q", ErrInvalidParameter, key)
		}
	}
	for _, key := range overrideOrder {
		value, ok := overrides[key]
		if !ok {
			continue
		}
		if err := c.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

// Set assigns one namelist key by name, going through the same checks as
// the typed setters. Values may be numbers, booleans or strings as they come
// out of YAML or the command line.
func (c *Config) Set(key string, value interface{}) error {
	switch key {
	case "imin":
		n, err := toInt(key, value)
		if err != nil {
			return err
		}
		switch Mode(n) {
		case ModeMinimisation:
			return c.SetMinimisationSteps(c.maxcyc, c.ncyc)
		case ModeDynamics:
			_, err := c.SetDynamics(c.dt, c.ntc)
			return err
		}
		return invalid(key, value, "must be 0 or 1")
	case "irest":
		b, err := toBool(key, value)
		if err != nil {
			return err
		}
		c.SetRestart(b)
	case "ntmin":
		return setInt(key, value, c.SetMinimisationAlgorithm)
	case "maxcyc":
		return setInt(key, value, func(n int) error {
			if n < 0 {
				return invalid(key, n, "cannot run for negative steps")
			}
			c.maxcyc = n
			return nil
		})
	case "ncyc":
		return setInt(key, value, func(n int) error {
			if n < 0 {
				return invalid(key, n, "cannot run for negative steps")
			}
			c.ncyc = n
			return nil
		})
	case "nstlim":
		return setInt(key, value, c.SetSteps)
	case "dt":
		return setFloat(key, value, c.SetTimestep)
	case "ig":
		return setInt(key, value, func(n int) error {
			c.SetSeed(n)
			return nil
		})
	case "ntpr", "ntwx", "ntwr":
		n, err := toInt(key, value)
		if err != nil {
			return err
		}
		energy, restart, trajectory := c.Outputs()
		switch key {
		case "ntpr":
			energy = n
		case "ntwr":
			restart = n
		default:
			trajectory = n
		}
		c.SetOutputs(energy, restart, trajectory)
	case "ioutfm":
		b, err := toBool(key, value)
		if err != nil {
			return err
		}
		c.SetTrajectoryFormat(b)
	case "iwrap":
		b, err := toBool(key, value)
		if err != nil {
			return err
		}
		c.SetWrap(b)
	case "ntc":
		if s, ok := value.(string); ok {
			if mode, err := ParseShakeMode(s); err == nil {
				return c.SetShake(mode)
			}
		}
		return setInt(key, value, func(n int) error { return c.SetShake(ShakeMode(n)) })
	case "ntf":
		return setInt(key, value, c.SetForceEvaluation)
	case "jfastw":
		return setInt(key, value, c.SetFastWater)
	case "cut":
		return setFloat(key, value, c.SetCutoff)
	case "dielc":
		return setFloat(key, value, c.SetDielectric)
	case "nmropt":
		return setInt(key, value, c.setNMROptions)
	case "restraintmask":
		mask := strings.Trim(fmt.Sprint(value), "'\"")
		weight := DefaultRestraintWeight
		if r, ok := c.Restraints(); ok {
			weight = r.Weight
		}
		return c.SetRestraints(mask, weight)
	case "restraint_wt":
		r, ok := c.Restraints()
		if !ok {
			return invalid(key, value, "restraint weight needs a restraintmask")
		}
		return setFloat(key, value, func(w float64) error { return c.SetRestraints(r.Mask, w) })
	case "ntr":
		b, err := toBool(key, value)
		if err != nil {
			return err
		}
		switch {
		case !b:
			c.ClearRestraints()
		case c.restraints == nil:
			return c.SetRestraints(DefaultRestraintMask, DefaultRestraintWeight)
		}
	case "ntb":
		if s, ok := value.(string); ok {
			if b, err := ParseBoundary(s); err == nil {
				return c.SetBoundary(b)
			}
		}
		return setInt(key, value, func(n int) error { return c.SetBoundary(Boundary(n)) })
	case "ntt":
		if s, ok := value.(string); ok {
			if t, err := ParseThermostat(s); err == nil {
				return c.SetThermostat(t)
			}
		}
		return setInt(key, value, func(n int) error { return c.SetThermostat(Thermostat(n)) })
	case "temp0":
		return setFloat(key, value, func(f float64) error { return c.SetTemperature(f, c.tempi) })
	case "tempi":
		return setFloat(key, value, func(f float64) error { return c.SetTemperature(c.temp0, f) })
	case "gamma_ln":
		return setFloat(key, value, c.SetCollisionFrequency)
	case "ntp":
		if s, ok := value.(string); ok {
			if p, err := ParsePressureScaling(s); err == nil {
				return c.SetPressure(p, c.barostat, c.pres0)
			}
		}
		return setInt(key, value, func(n int) error { return c.SetPressure(PressureScaling(n), c.barostat, c.pres0) })
	case "barostat":
		if s, ok := value.(string); ok {
			if b, err := ParseBarostat(s); err == nil {
				return c.SetPressure(c.ntp, b, c.pres0)
			}
		}
		return setInt(key, value, func(n int) error { return c.SetPressure(c.ntp, Barostat(n), c.pres0) })
	case "pres0":
		return setFloat(key, value, func(f float64) error { return c.SetPressure(c.ntp, c.barostat, f) })
	default:
		return fmt.Errorf("%w: unknown key %q", ErrInvalidParameter, key)
	}
	return nil
}

func isKey(key string) bool {
	for _, k := range overrideOrder {
		if k == key {
			return true
		}
	}
	return false
}

func setInt(key string, value interface{}, set func(int) error) error {
	n, err := toInt(key, value)
	if err != nil {
		return err
	}
	return set(n)
}

func setFloat(key string, value interface{}, set func(float64) error) error {
	f, err := toFloat(key, value)
	if err != nil {
		return err
	}
	return set(f)
}

func toInt(key string, value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, invalid(key, value, "must be an integer")
		}
		return int(v), nil
	case bool:
		return boolInt(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, invalid(key, value, "must be an integer")
		}
		return n, nil
	}
	return 0, invalid(key, value, "must be an integer")
}

func toFloat(key string, value interface{}) (float64, error) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, invalid(key, value, "must be a number")
		}
		f = parsed
	default:
		return 0, invalid(key, value, "must be a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalid(key, value, "must be a finite number")
	}
	return f, nil
}

func toBool(key string, value interface{}) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b, nil
		}
	}
	n, err := toInt(key, value)
	if err != nil || (n != 0 && n != 1) {
		return false, invalid(key, value, "must be 0 or 1")
	}
	return n == 1, nil
}
