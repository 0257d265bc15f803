package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"

	"github.com/picogrid/mdrun/pkg/amber"
	"github.com/picogrid/mdrun/pkg/logger"
)

// ErrNoTopology is returned when a run is requested before SetTopology.
var ErrNoTopology = errors.New("runner: topology file not set")

// Runner launches sander or pmemd.cuda for one Config.
type Runner struct {
	config      *amber.Config
	topology    string
	cores       int
	mpiLauncher string
	log         logger.Logger
}

// Result describes a finished solver process. A non-zero ExitCode is not an
// error; interpreting it is left to the caller.
type Result struct {
	ID         string
	Command    []string
	Dir        string
	StdoutPath string
	ExitCode   int
	Duration   time.Duration
}

// Success reports a zero exit status.
func (r *Result) Success() bool { return r.ExitCode == 0 }

// New returns a runner for cfg. A nil cfg gets its own default Config.
func New(cfg *amber.Config) *Runner {
	if cfg == nil {
		cfg = amber.Default()
	}
	return &Runner{
		config: cfg,
		cores:  1,
		log:    logger.WithPrefix("runner"),
	}
}

// Config returns the configuration the runner writes and runs.
func (r *Runner) Config() *amber.Config { return r.config }

// SetTopology sets the parameter/topology file passed with -p.
func (r *Runner) SetTopology(path string) { r.topology = path }

func (r *Runner) Topology() string { return r.topology }

// SetCores sets the number of CPU processes.
func (r *Runner) SetCores(n int) error {
	if n <= 0 {
		return &amber.ParameterError{Name: "cores", Value: n, Reason: "cannot run on fewer than one core"}
	}
	r.cores = n
	return nil
}

func (r *Runner) Cores() int { return r.cores }

// SetMPILauncher sets the launcher (mpirun, srun, ...) used for CPU runs on
// more than one core. Without it CPU runs always use a single process.
func (r *Runner) SetMPILauncher(path string) { r.mpiLauncher = path }

// Command builds the solver argv. Input files are <output>.in and <input>;
// the solver writes <output>.out, <output>.rst7 and <output>.nc.
func (r *Runner) Command(input, output string, useGPU bool) ([]string, error) {
	if r.topology == "" {
		return nil, ErrNoTopology
	}
	if input == "" || output == "" {
		return nil, &amber.ParameterError{Name: "basename", Value: input + "/" + output, Reason: "input and output names are required"}
	}

	var argv []string
	binary := r.config.CPUPath()
	if useGPU {
		binary = r.config.GPUPath()
	} else if r.cores > 1 && r.mpiLauncher != "" {
		argv = append(argv, r.mpiLauncher, "-np", strconv.Itoa(r.cores))
	}
	if binary == "" {
		return nil, fmt.Errorf("runner: no solver binary configured (gpu=%t)", useGPU)
	}

	argv = append(argv, binary,
		"-O",
		"-i", output+".in",
		"-c", input,
		"-p", r.topology,
		"-o", output+".out",
		"-r", output+".rst7",
		"-x", output+".nc",
	)
	if useGPU {
		argv = append(argv, "-inf", output+".mdinfo")
	}
	return argv, nil
}

// CommandLine renders Command as a shell-quoted string.
func (r *Runner) CommandLine(input, output string, useGPU bool) (string, error) {
	argv, err := r.Command(input, output, useGPU)
	if err != nil {
		return "", err
	}
	return shellquote.Join(argv...), nil
}

// WriteInput writes the control file <output>.in into workdir.
func (r *Runner) WriteInput(workdir, output, title string) (string, error) {
	path := filepath.Join(workdir, output+".in")
	if err := r.config.WriteMdinFile(path, title); err != nil {
		return "", err
	}
	r.log.WithField("file", path).Debug("Wrote control file")
	return path, nil
}

// Run executes the solver in workdir and blocks until it exits. Standard
// output goes to a file named output inside workdir.
func (r *Runner) Run(ctx context.Context, input, output string, useGPU bool, workdir string) (*Result, error) {
	argv, err := r.Command(input, output, useGPU)
	if err != nil {
		return nil, err
	}
	if workdir == "" {
		workdir = "./"
	}

	result := &Result{
		ID:         uuid.NewString(),
		Command:    argv,
		Dir:        workdir,
		StdoutPath: filepath.Join(workdir, output),
	}
	log := r.log.WithFields(map[string]interface{}{"run": result.ID[:8], "gpu": useGPU})

	stdout, err := os.Create(result.StdoutPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout file: %w", err)
	}
	defer func() { _ = stdout.Close() }()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = workdir
	cmd.Stdout = stdout
	cmd.Stderr = os.Stderr

	log.Infof("Running command: %s", shellquote.Join(argv...))
	start := time.Now()
	err = cmd.Run()
	result.Duration = time.Since(start)

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return result, fmt.Errorf("solver interrupted: %w", ctx.Err())
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		_ = stdout.Close()
		_ = os.Remove(result.StdoutPath)
		return nil, fmt.Errorf("failed to start solver: %w", err)
	}

	log.WithField("exit", result.ExitCode).Debugf("Solver finished in %s", result.Duration.Truncate(time.Millisecond))
	return result, nil
}
