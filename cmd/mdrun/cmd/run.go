package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/picogrid/mdrun/pkg/amber"
	"github.com/picogrid/mdrun/pkg/config"
	"github.com/picogrid/mdrun/pkg/logger"
	"github.com/picogrid/mdrun/pkg/runner"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation",
	Long: `Write the control file for a protocol and run sander (or pmemd.cuda
with --gpu) on it. A non-zero solver exit status makes mdrun fail.`,
	RunE: runSimulation,
}

func init() {
	addJobFlags(runCmd)
	runCmd.Flags().StringP("topology", "p", "", "topology/parameter file (prmtop, parm7)")
	runCmd.Flags().StringP("coordinates", "c", "", "input coordinates (inpcrd, rst7)")
	runCmd.Flags().StringP("output", "o", "", "base name of the output files")
	runCmd.Flags().StringP("workdir", "w", "", "directory to run the solver in")
	runCmd.Flags().Bool("gpu", false, "run pmemd.cuda instead of sander")
	runCmd.Flags().IntP("cores", "n", 1, "CPU processes (needs an MPI launcher in the profile)")
	runCmd.Flags().Bool("dry-run", false, "print the command and control file without running")
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	job, err := loadJob(cmd)
	if err != nil {
		return err
	}
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	profiles, err := loadProfiles()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}
	profile, err := profiles.Active(job.Profile)
	if err != nil {
		return err
	}

	// The solver runs inside the workdir, so relative paths must not reach it
	solvers, err := absoluteInputs(job, *profile)
	if err != nil {
		return err
	}

	cfg, err := buildConfig(job, amber.New(solvers.CPUPath, solvers.GPUPath))
	if err != nil {
		return err
	}
	if !cfg.TimestepCompatible() {
		logger.Warnf("ntc=%d with dt=%g is likely to be unstable", cfg.Shake(), cfg.Timestep())
	}

	r := runner.New(cfg)
	r.SetTopology(job.Topology)
	r.SetMPILauncher(solvers.MPILauncher)
	if err := r.SetCores(job.Cores); err != nil {
		return err
	}

	logger.LogSection(fmt.Sprintf("%s: %s", job.Protocol, job.Output))
	logger.LogKeyValue("profile", profile.Name)
	logger.LogKeyValue("mode", cfg.Mode())
	logger.LogKeyValue("workdir", job.WorkDir)

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		line, err := r.CommandLine(job.Coordinates, job.Output, job.GPU)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "# %s\n", line)
		return cfg.WriteMdin(out, job.Title)
	}

	if err := os.MkdirAll(job.WorkDir, 0755); err != nil {
		return fmt.Errorf("failed to create workdir: %w", err)
	}
	if _, err := r.WriteInput(job.WorkDir, job.Output, job.Title); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var result *runner.Result
	solver := "sander"
	if job.GPU {
		solver = "pmemd.cuda"
	}
	err = logger.WithSpinner(fmt.Sprintf("Running %s", solver), func() error {
		var runErr error
		result, runErr = r.Run(ctx, job.Coordinates, job.Output, job.GPU, job.WorkDir)
		return runErr
	})
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	if !result.Success() {
		logger.Errorf("%s exited with status %d, see %s.out", solver, result.ExitCode, job.Output)
		return fmt.Errorf("solver exited with status %d", result.ExitCode)
	}

	logger.Successf("Wrote %s.out, %s.rst7 and %s.nc", job.Output, job.Output, job.Output)
	return nil
}

// absoluteInputs rewrites the job's input files and the profile's solver
// paths relative to the current directory. Bare command names are left for
// PATH lookup.
func absoluteInputs(job *config.Job, profile config.Profile) (config.Profile, error) {
	for _, path := range []*string{&job.Topology, &job.Coordinates} {
		abs, err := filepath.Abs(*path)
		if err != nil {
			return profile, fmt.Errorf("failed to resolve %s: %w", *path, err)
		}
		*path = abs
	}
	for _, path := range []*string{&profile.CPUPath, &profile.GPUPath} {
		if *path == "" || filepath.IsAbs(*path) || filepath.Base(*path) == *path {
			continue
		}
		abs, err := filepath.Abs(*path)
		if err != nil {
			return profile, fmt.Errorf("failed to resolve %s: %w", *path, err)
		}
		*path = abs
	}
	return profile, nil
}
