package protocol

import (
	"github.com/picogrid/mdrun/pkg/amber"
)

// builtin is a protocol defined in code
type builtin struct {
	name        string
	description string
	params      []Parameter
	apply       func(cfg *amber.Config, p values) error
}

func (b *builtin) Name() string            { return b.name }
func (b *builtin) Description() string     { return b.description }
func (b *builtin) Parameters() []Parameter { return b.params }

func (b *builtin) Apply(cfg *amber.Config, params map[string]interface{}) error {
	return b.apply(cfg, values(params))
}

// values reads resolved parameters
type values map[string]interface{}

func (v values) integer(name string) (int, bool) {
	n, ok := v[name].(int)
	return n, ok
}

func (v values) number(name string) float64 {
	f, _ := v[name].(float64)
	return f
}

func (v values) text(name string) string {
	s, _ := v[name].(string)
	return s
}

func (v values) flag(name string) bool {
	b, _ := v[name].(bool)
	return b
}

var (
	stepsParam = func(def int) Parameter {
		return Parameter{Name: "steps", Type: TypeInteger, Description: "Number of steps", Default: def, Min: 0, Required: true}
	}
	timestepParam = Parameter{Name: "timestep", Type: TypeFloat, Description: "Timestep (ps)", Default: amber.DefaultTimestep, Min: 0.0}
	shakeParam    = Parameter{Name: "shake", Type: TypeString, Description: "Bond constraints", Default: "hydrogen", Options: amber.ShakeModeNames()}
	temperature   = Parameter{Name: "temperature", Type: TypeFloat, Description: "Target temperature (K)", Default: 300.0, Min: 0.0}
	restraintMask = func(def string) Parameter {
		return Parameter{Name: "restraint_mask", Type: TypeString, Description: "Atoms to restrain (amber mask, empty for none)", Default: def}
	}
	restraintWeight = Parameter{Name: "restraint_wt", Type: TypeFloat, Description: "Restraint weight (kcal/mol/A^2)", Default: amber.DefaultRestraintWeight, Min: 0.0}
)

func builtins() []Protocol {
	return []Protocol{
		&builtin{
			name:        "minimise",
			description: "Energy minimisation, steepest descent then conjugate gradient",
			params: []Parameter{
				stepsParam(5000),
				{Name: "steepest", Type: TypeInteger, Description: "Steepest descent steps (default: half of steps)", Min: 0},
				{Name: "periodic", Type: TypeBoolean, Description: "Periodic system", Default: true},
				restraintMask(""),
				restraintWeight,
			},
			apply: applyMinimise,
		},
		&builtin{
			name:        "heat",
			description: "NVT heating from an initial to a target temperature",
			params: []Parameter{
				stepsParam(50000),
				timestepParam,
				shakeParam,
				temperature,
				{Name: "initial_temperature", Type: TypeFloat, Description: "Initial temperature (K)", Default: 0.0, Min: 0.0},
				{Name: "thermostat", Type: TypeString, Description: "Thermostat", Default: "langevin", Options: amber.ThermostatNames()},
				{Name: "collision_frequency", Type: TypeFloat, Description: "Langevin collision frequency (1/ps)", Default: 2.0, Min: 0.0},
				restraintMask(amber.DefaultRestraintMask),
				restraintWeight,
			},
			apply: applyHeat,
		},
		&builtin{
			name:        "equilibrate",
			description: "NPT equilibration at constant temperature and pressure",
			params: []Parameter{
				stepsParam(500000),
				timestepParam,
				shakeParam,
				temperature,
				{Name: "pressure", Type: TypeFloat, Description: "Target pressure (bar)", Default: 1.0, Min: 0.0},
				{Name: "barostat", Type: TypeString, Description: "Barostat", Default: "monte_carlo", Options: amber.BarostatNames()},
				{Name: "restart", Type: TypeBoolean, Description: "Continue velocities from the input coordinates", Default: true},
				restraintMask(""),
				restraintWeight,
			},
			apply: applyEquilibrate,
		},
		&builtin{
			name:        "production",
			description: "Unrestrained production dynamics",
			params: []Parameter{
				stepsParam(5000000),
				timestepParam,
				shakeParam,
				temperature,
				{Name: "ensemble", Type: TypeString, Description: "Ensemble", Default: "npt", Options: []string{"nvt", "npt"}},
				{Name: "pressure", Type: TypeFloat, Description: "Target pressure (bar)", Default: 1.0, Min: 0.0},
				{Name: "energy_interval", Type: TypeInteger, Description: "Steps between energy reports", Default: 5000, Min: 0},
				{Name: "trajectory_interval", Type: TypeInteger, Description: "Steps between trajectory frames", Default: 5000, Min: 0},
				{Name: "restart_interval", Type: TypeInteger, Description: "Steps between restart files", Default: 50000, Min: 0},
				{Name: "seed", Type: TypeInteger, Description: "Random seed (-1 for random)", Default: amber.RandomSeed},
			},
			apply: applyProduction,
		},
	}
}

func applyMinimise(cfg *amber.Config, v values) error {
	steps, _ := v.integer("steps")
	if steepest, ok := v.integer("steepest"); ok {
		if err := cfg.SetMinimisationSteps(steps, steepest); err != nil {
			return err
		}
	} else if err := cfg.SetMinimisation(steps); err != nil {
		return err
	}

	boundary := amber.BoundaryNone
	if v.flag("periodic") {
		boundary = amber.BoundaryConstantVolume
	}
	if err := cfg.SetBoundary(boundary); err != nil {
		return err
	}
	return cfg.SetRestraints(v.text("restraint_mask"), v.number("restraint_wt"))
}

// applyDynamics covers the settings every MD protocol shares
func applyDynamics(cfg *amber.Config, v values, restart bool) error {
	shake, err := amber.ParseShakeMode(v.text("shake"))
	if err != nil {
		return err
	}
	if _, err := cfg.SetDynamics(v.number("timestep"), shake); err != nil {
		return err
	}
	steps, _ := v.integer("steps")
	if err := cfg.SetSteps(steps); err != nil {
		return err
	}
	cfg.SetRestart(restart)
	return cfg.SetThermostat(amber.ThermostatLangevin)
}

func applyHeat(cfg *amber.Config, v values) error {
	if err := applyDynamics(cfg, v, false); err != nil {
		return err
	}
	thermostat, err := amber.ParseThermostat(v.text("thermostat"))
	if err != nil {
		return err
	}
	if err := cfg.SetThermostat(thermostat); err != nil {
		return err
	}
	if err := cfg.SetTemperature(v.number("temperature"), v.number("initial_temperature")); err != nil {
		return err
	}
	if err := cfg.SetCollisionFrequency(v.number("collision_frequency")); err != nil {
		return err
	}
	_, barostat, pressure := cfg.Pressure()
	if err := cfg.SetPressure(amber.PressureNone, barostat, pressure); err != nil {
		return err
	}
	if err := cfg.SetBoundary(amber.BoundaryConstantVolume); err != nil {
		return err
	}
	return cfg.SetRestraints(v.text("restraint_mask"), v.number("restraint_wt"))
}

func applyEquilibrate(cfg *amber.Config, v values) error {
	if err := applyDynamics(cfg, v, v.flag("restart")); err != nil {
		return err
	}
	t := v.number("temperature")
	if err := cfg.SetTemperature(t, t); err != nil {
		return err
	}
	barostat, err := amber.ParseBarostat(v.text("barostat"))
	if err != nil {
		return err
	}
	if err := cfg.SetPressure(amber.PressureIsotropic, barostat, v.number("pressure")); err != nil {
		return err
	}
	return cfg.SetRestraints(v.text("restraint_mask"), v.number("restraint_wt"))
}

func applyProduction(cfg *amber.Config, v values) error {
	if err := applyDynamics(cfg, v, true); err != nil {
		return err
	}
	t := v.number("temperature")
	if err := cfg.SetTemperature(t, t); err != nil {
		return err
	}

	_, barostat, pressure := cfg.Pressure()
	if v.text("ensemble") == "npt" {
		if err := cfg.SetPressure(amber.PressureIsotropic, amber.BarostatMonteCarlo, v.number("pressure")); err != nil {
			return err
		}
	} else {
		// pressure is unused at constant volume
		if err := cfg.SetPressure(amber.PressureNone, barostat, pressure); err != nil {
			return err
		}
		if err := cfg.SetBoundary(amber.BoundaryConstantVolume); err != nil {
			return err
		}
	}

	energy, _ := v.integer("energy_interval")
	restart, _ := v.integer("restart_interval")
	trajectory, _ := v.integer("trajectory_interval")
	cfg.SetOutputs(energy, restart, trajectory)

	seed, ok := v.integer("seed")
	if !ok {
		seed = amber.RandomSeed
	}
	cfg.SetSeed(seed)
	cfg.ClearRestraints()
	return nil
}
