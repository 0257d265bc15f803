package amber

import (
	"math"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/picogrid/mdrun/pkg/logger"
)

// Mode is the run type discriminator written as imin.
type Mode int

const (
	ModeDynamics     Mode = 0
	ModeMinimisation Mode = 1
)

func (m Mode) String() string {
	if m == ModeMinimisation {
		return "minimisation"
	}
	return "dynamics"
}

const (
	// DefaultTimestep is the dynamics timestep in ps.
	DefaultTimestep = 0.002
	// DefaultRestraintWeight is the harmonic restraint weight in kcal/mol/A^2.
	DefaultRestraintWeight = 5.0
	// DefaultRestraintMask selects everything except water and counter ions.
	DefaultRestraintMask = "!(:WAT,NA,CL)"
	// RandomSeed makes the solver pick its own seed.
	RandomSeed = -1

	// Below this timestep (ps) dynamics without SHAKE is stable.
	unconstrainedTimestepLimit = 0.001
)

// Restraints holds the positional restraint selection. A Config without
// restraints carries a nil *Restraints.
type Restraints struct {
	Mask   string
	Weight float64
}

// Config is the &cntrl namelist for one sander or pmemd run. Fields are only
// changed through setters so that coupled values stay consistent.
type Config struct {
	cpuPath string
	gpuPath string

	// I/O
	ntpr   int
	ntwx   int
	ntwr   int
	ioutfm int
	iwrap  int

	// minimisation
	maxcyc int
	imin   Mode
	ncyc   int
	ntmin  int

	irest int
	ntx   int
	cut   float64

	// dynamics
	dt     float64
	nstlim int
	ig     int

	// potential
	ntc    ShakeMode
	ntf    int
	jfastw int
	dielc  float64
	nmropt int

	restraints *Restraints

	// ensemble
	ntb      Boundary
	ntt      Thermostat
	temp0    float64
	tempi    float64
	gammaLn  float64
	ntp      PressureScaling
	barostat Barostat
	pres0    float64

	minimisation bool
}

// Default returns a dynamics configuration with the stock parameter values
// and no solver binaries.
func Default() *Config {
	return &Config{
		ntpr:     100,
		ntwx:     100,
		ntwr:     100,
		ioutfm:   1,
		iwrap:    1,
		maxcyc:   300,
		imin:     ModeDynamics,
		ncyc:     100,
		ntmin:    1,
		irest:    0,
		ntx:      1,
		cut:      8.0,
		dt:       DefaultTimestep,
		nstlim:   1000,
		ig:       RandomSeed,
		ntc:      ShakeHydrogen,
		ntf:      1,
		jfastw:   0,
		dielc:    1.0,
		nmropt:   0,
		ntb:      BoundaryNone,
		ntt:      ThermostatLangevin,
		temp0:    0.0,
		tempi:    0.0,
		gammaLn:  2.0,
		ntp:      PressureNone,
		barostat: BarostatBerendsen,
		pres0:    1.0,
	}
}

// New returns a default configuration bound to the given solver binaries.
// A binary that does not exist only produces a warning; the configuration
// stays usable.
func New(cpuPath, gpuPath string) *Config {
	c := Default()
	c.SetBinaries(cpuPath, gpuPath)
	log := logger.WithPrefix("amber")
	for _, missing := range c.MissingBinaries() {
		log.Warnf("%s binary not found at %q, runs on it will fail", missing.Kind, missing.Path)
	}
	return c
}

// Binary is a solver executable referenced by a Config.
type Binary struct {
	Kind string
	Path string
}

// MissingBinaries reports the configured binaries that are not regular files.
// A bare command name is looked up on PATH.
func (c *Config) MissingBinaries() []Binary {
	var missing []Binary
	for _, b := range []Binary{{"CPU", c.cpuPath}, {"GPU", c.gpuPath}} {
		if b.Path != "" && filepath.Base(b.Path) == b.Path {
			if _, err := exec.LookPath(b.Path); err != nil {
				missing = append(missing, b)
			}
			continue
		}
		info, err := os.Stat(b.Path)
		if err != nil || info.IsDir() {
			missing = append(missing, b)
		}
	}
	return missing
}

// SetBinaries sets the CPU and GPU solver paths.
func (c *Config) SetBinaries(cpuPath, gpuPath string) {
	c.cpuPath = cpuPath
	c.gpuPath = gpuPath
}

func (c *Config) CPUPath() string { return c.cpuPath }
func (c *Config) GPUPath() string { return c.gpuPath }

// SetTimestep sets dt in ps.
func (c *Config) SetTimestep(timestep float64) error {
	if !positive(timestep) {
		return invalid("dt", timestep, "timestep must be positive")
	}
	c.dt = timestep
	return nil
}

func (c *Config) Timestep() float64 { return c.dt }

// SetMinimisation switches to minimisation with half of the steps spent in
// steepest descent before switching to conjugate gradient.
func (c *Config) SetMinimisation(stepsTotal int) error {
	return c.SetMinimisationSteps(stepsTotal, stepsTotal/2)
}

// SetMinimisationSteps switches to minimisation with an explicit number of
// steepest descent steps.
func (c *Config) SetMinimisationSteps(stepsTotal, stepsSteepest int) error {
	if stepsTotal < 0 {
		return invalid("maxcyc", stepsTotal, "cannot run for negative steps")
	}
	if stepsSteepest < 0 {
		return invalid("ncyc", stepsSteepest, "cannot run for negative steps")
	}
	c.imin = ModeMinimisation
	c.minimisation = true
	c.maxcyc = stepsTotal
	c.ncyc = stepsSteepest
	return nil
}

// MinimisationSteps returns maxcyc and ncyc.
func (c *Config) MinimisationSteps() (total, steepest int) { return c.maxcyc, c.ncyc }

// SetMinimisationAlgorithm sets ntmin.
func (c *Config) SetMinimisationAlgorithm(ntmin int) error {
	if ntmin < 0 || ntmin > 5 {
		return invalid("ntmin", ntmin, "must be between 0 and 5")
	}
	c.ntmin = ntmin
	return nil
}

// SetDynamics switches to molecular dynamics. Running without SHAKE at a
// timestep of 1 fs or more is unstable, so that combination is replaced with
// ShakeHydrogen and reported through the returned flag.
func (c *Config) SetDynamics(timestep float64, shake ShakeMode) (corrected bool, err error) {
	if !positive(timestep) {
		return false, invalid("dt", timestep, "timestep must be positive")
	}
	if !shake.valid() {
		return false, invalid("ntc", int(shake), "unknown shake mode")
	}
	c.imin = ModeDynamics
	c.minimisation = false
	c.dt = timestep
	c.ntc = shake
	if !c.TimestepCompatible() {
		logger.WithPrefix("amber").Warnf("ntc=%d is unstable with dt=%g, using ntc=%d", shake, timestep, ShakeHydrogen)
		c.ntc = ShakeHydrogen
		return true, nil
	}
	return false, nil
}

// TimestepCompatible reports whether the constraint mode can carry the
// current timestep.
func (c *Config) TimestepCompatible() bool {
	if c.ntc == ShakeNone {
		return c.dt < unconstrainedTimestepLimit
	}
	return true
}

// Mode returns the imin discriminator.
func (c *Config) Mode() Mode { return c.imin }

// IsMinimisation mirrors Mode for callers that branch on a flag.
func (c *Config) IsMinimisation() bool { return c.minimisation }

func (c *Config) Shake() ShakeMode { return c.ntc }

// SetShake sets ntc without the timestep check SetDynamics performs.
func (c *Config) SetShake(shake ShakeMode) error {
	if !shake.valid() {
		return invalid("ntc", int(shake), "unknown shake mode")
	}
	c.ntc = shake
	return nil
}

// SetSteps sets nstlim.
func (c *Config) SetSteps(steps int) error {
	if steps < 0 {
		return invalid("nstlim", steps, "cannot run for negative steps")
	}
	c.nstlim = steps
	return nil
}

func (c *Config) Steps() int { return c.nstlim }

// SetSeed sets ig. RandomSeed lets the solver choose.
func (c *Config) SetSeed(seed int) { c.ig = seed }

func (c *Config) Seed() int { return c.ig }

// SetOutputs sets the energy, restart and trajectory write intervals.
func (c *Config) SetOutputs(energy, restart, trajectory int) {
	c.ntpr = energy
	c.ntwr = restart
	c.ntwx = trajectory
}

// Outputs returns ntpr, ntwr and ntwx.
func (c *Config) Outputs() (energy, restart, trajectory int) { return c.ntpr, c.ntwr, c.ntwx }

// SetTrajectoryFormat selects NetCDF (binary) or ASCII trajectories.
func (c *Config) SetTrajectoryFormat(binary bool) { c.ioutfm = boolInt(binary) }

// SetWrap toggles wrapping coordinates into the primary box.
func (c *Config) SetWrap(wrap bool) { c.iwrap = boolInt(wrap) }

// SetRestart continues from velocities in the input coordinates when true.
func (c *Config) SetRestart(restart bool) {
	c.irest = boolInt(restart)
	if restart {
		c.ntx = 5
	} else {
		c.ntx = 1
	}
}

func (c *Config) IsRestart() bool { return c.irest == 1 }

// SetCutoff sets the non-bonded cutoff in Angstrom.
func (c *Config) SetCutoff(cut float64) error {
	if !positive(cut) {
		return invalid("cut", cut, "cutoff must be positive")
	}
	c.cut = cut
	return nil
}

// SetDielectric sets dielc.
func (c *Config) SetDielectric(dielectric float64) error {
	if !positive(dielectric) {
		return invalid("dielc", dielectric, "dielectric constant must be positive")
	}
	c.dielc = dielectric
	return nil
}

// SetForceEvaluation sets ntf.
func (c *Config) SetForceEvaluation(ntf int) error {
	if ntf < 1 || ntf > 8 {
		return invalid("ntf", ntf, "must be between 1 and 8")
	}
	c.ntf = ntf
	return nil
}

// SetFastWater sets jfastw. 0 uses the fast analytic water SHAKE, 4 disables it.
func (c *Config) SetFastWater(jfastw int) error {
	if jfastw < 0 || jfastw > 4 {
		return invalid("jfastw", jfastw, "must be between 0 and 4")
	}
	c.jfastw = jfastw
	return nil
}

func (c *Config) setNMROptions(nmropt int) error {
	if nmropt < 0 || nmropt > 2 {
		return invalid("nmropt", nmropt, "must be between 0 and 2")
	}
	c.nmropt = nmropt
	return nil
}

// SetRestraints enables positional restraints on the atoms selected by mask.
// An empty mask disables them.
func (c *Config) SetRestraints(mask string, weight float64) error {
	if mask == "" {
		c.ClearRestraints()
		return nil
	}
	if !nonNegative(weight) {
		return invalid("restraint_wt", weight, "weight cannot be negative")
	}
	c.restraints = &Restraints{Mask: mask, Weight: weight}
	return nil
}

// ClearRestraints disables positional restraints.
func (c *Config) ClearRestraints() { c.restraints = nil }

// Restraints returns the active restraints, if any.
func (c *Config) Restraints() (Restraints, bool) {
	if c.restraints == nil {
		return Restraints{}, false
	}
	return *c.restraints, true
}

// SetBoundary sets ntb.
func (c *Config) SetBoundary(b Boundary) error {
	if !b.valid() {
		return invalid("ntb", int(b), "unknown boundary")
	}
	c.ntb = b
	return nil
}

func (c *Config) Boundary() Boundary { return c.ntb }

// SetThermostat sets ntt.
func (c *Config) SetThermostat(t Thermostat) error {
	if !t.valid() {
		return invalid("ntt", int(t), "unknown thermostat")
	}
	c.ntt = t
	return nil
}

func (c *Config) Thermostat() Thermostat { return c.ntt }

// SetTemperature sets temp0 and tempi in K.
func (c *Config) SetTemperature(target, initial float64) error {
	if !nonNegative(target) {
		return invalid("temp0", target, "temperature cannot be negative")
	}
	if !nonNegative(initial) {
		return invalid("tempi", initial, "temperature cannot be negative")
	}
	c.temp0 = target
	c.tempi = initial
	return nil
}

// Temperature returns temp0 and tempi.
func (c *Config) Temperature() (target, initial float64) { return c.temp0, c.tempi }

// SetCollisionFrequency sets gamma_ln in ps^-1.
func (c *Config) SetCollisionFrequency(gamma float64) error {
	if !nonNegative(gamma) {
		return invalid("gamma_ln", gamma, "collision frequency cannot be negative")
	}
	c.gammaLn = gamma
	return nil
}

// SetPressure configures pressure coupling. Any scaling other than
// PressureNone also selects constant pressure boundaries.
func (c *Config) SetPressure(scaling PressureScaling, barostat Barostat, pressure float64) error {
	if !scaling.valid() {
		return invalid("ntp", int(scaling), "unknown pressure scaling")
	}
	if !barostat.valid() {
		return invalid("barostat", int(barostat), "unknown barostat")
	}
	if !positive(pressure) {
		return invalid("pres0", pressure, "pressure must be positive")
	}
	c.ntp = scaling
	c.barostat = barostat
	c.pres0 = pressure
	if scaling != PressureNone {
		c.ntb = BoundaryConstantPressure
	}
	return nil
}

// Pressure returns ntp, barostat and pres0.
func (c *Config) Pressure() (PressureScaling, Barostat, float64) { return c.ntp, c.barostat, c.pres0 }

// Validate checks every invariant the setters maintain.
func (c *Config) Validate() error {
	if !positive(c.dt) {
		return invalid("dt", c.dt, "timestep must be positive")
	}
	if c.maxcyc < 0 {
		return invalid("maxcyc", c.maxcyc, "cannot run for negative steps")
	}
	if c.ncyc < 0 {
		return invalid("ncyc", c.ncyc, "cannot run for negative steps")
	}
	if c.nstlim < 0 {
		return invalid("nstlim", c.nstlim, "cannot run for negative steps")
	}
	if (c.imin == ModeMinimisation) != c.minimisation {
		return invalid("imin", int(c.imin), "run mode out of sync")
	}
	if c.restraints != nil && c.restraints.Mask == "" {
		return invalid("restraintmask", c.restraints.Mask, "restraints need a mask")
	}
	if !positive(c.cut) {
		return invalid("cut", c.cut, "cutoff must be positive")
	}
	if !positive(c.dielc) {
		return invalid("dielc", c.dielc, "dielectric constant must be positive")
	}
	if c.restraints != nil && !nonNegative(c.restraints.Weight) {
		return invalid("restraint_wt", c.restraints.Weight, "weight cannot be negative")
	}
	if !nonNegative(c.temp0) || !nonNegative(c.tempi) {
		return invalid("temp0", c.temp0, "temperature cannot be negative")
	}
	if !nonNegative(c.gammaLn) {
		return invalid("gamma_ln", c.gammaLn, "collision frequency cannot be negative")
	}
	if !positive(c.pres0) {
		return invalid("pres0", c.pres0, "pressure must be positive")
	}
	if !c.ntc.valid() {
		return invalid("ntc", int(c.ntc), "unknown shake mode")
	}
	if !c.ntt.valid() {
		return invalid("ntt", int(c.ntt), "unknown thermostat")
	}
	if !c.ntb.valid() {
		return invalid("ntb", int(c.ntb), "unknown boundary")
	}
	if !c.ntp.valid() {
		return invalid("ntp", int(c.ntp), "unknown pressure scaling")
	}
	if c.ntp != PressureNone && c.ntb != BoundaryConstantPressure {
		return invalid("ntp", int(c.ntp), "pressure coupling needs ntb=2")
	}
	return nil
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.restraints != nil {
		r := *c.restraints
		out.restraints = &r
	}
	return &out
}

// positive and nonNegative are false for NaN and infinities.
func positive(x float64) bool { return x > 0 && !math.IsInf(x, 1) }

func nonNegative(x float64) bool { return x >= 0 && !math.IsInf(x, 1) }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
