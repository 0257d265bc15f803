package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/picogrid/mdrun/pkg/amber"
	"github.com/picogrid/mdrun/pkg/config"
	"github.com/picogrid/mdrun/pkg/logger"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage machine profiles",
	Long:  `Manage the machine profiles that say where the AMBER binaries live`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured profiles",
	RunE:  listProfiles,
}

var profileAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new profile",
	RunE:  addProfile,
}

var profileRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove a profile",
	Args:  cobra.MaximumNArgs(1),
	RunE:  removeProfile,
}

var profileUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Select the default profile",
	Args:  cobra.ExactArgs(1),
	RunE:  useProfile,
}

func init() {
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileRemoveCmd)
	profileCmd.AddCommand(profileUseCmd)
}

func listProfiles(cmd *cobra.Command, _ []string) error {
	profiles, err := loadProfiles()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	if len(profiles.Profiles) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No profiles configured")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tCPU\tGPU\tMPI\tSTATUS")
	_, _ = fmt.Fprintln(w, "----\t---\t---\t---\t------")

	for _, p := range profiles.Profiles {
		name := p.Name
		if name == profiles.Selected {
			name += " *"
		}
		probe := amber.Default()
		probe.SetBinaries(p.CPUPath, p.GPUPath)
		status := "ok"
		if n := len(probe.MissingBinaries()); n > 0 {
			status = fmt.Sprintf("%d binaries missing", n)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", name, p.CPUPath, p.GPUPath, p.MPILauncher, status)
	}

	return w.Flush()
}

func addProfile(_ *cobra.Command, _ []string) error {
	profiles, err := loadProfiles()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	amberHome := os.Getenv("AMBERHOME")
	if amberHome == "" {
		amberHome = "/usr/local/amber"
	}

	questions := []*survey.Question{
		{
			Name:     "name",
			Prompt:   &survey.Input{Message: "Profile name:"},
			Validate: survey.Required,
		},
		{
			Name:     "cpu_path",
			Prompt:   &survey.Input{Message: "sander binary:", Default: amberHome + "/bin/sander"},
			Validate: survey.Required,
		},
		{
			Name:   "gpu_path",
			Prompt: &survey.Input{Message: "pmemd.cuda binary (optional):", Default: amberHome + "/bin/pmemd.cuda"},
		},
		{
			Name: "mpi_launcher",
			Prompt: &survey.Input{
				Message: "MPI launcher (optional):",
				Help:    "Command used to start parallel CPU runs, e.g. mpirun",
			},
		},
	}
	answers := struct {
		Name        string `survey:"name"`
		CPUPath     string `survey:"cpu_path"`
		GPUPath     string `survey:"gpu_path"`
		MPILauncher string `survey:"mpi_launcher"`
	}{}
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}
	profile := config.Profile{
		Name:        answers.Name,
		CPUPath:     answers.CPUPath,
		GPUPath:     answers.GPUPath,
		MPILauncher: answers.MPILauncher,
	}

	if err := profiles.Add(profile); err != nil {
		return err
	}

	// Warn now rather than at the first run
	amber.New(profile.CPUPath, profile.GPUPath)

	if err := saveProfiles(profiles); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}

	logger.Successf("Profile %s added", profile.Name)
	return nil
}

func removeProfile(_ *cobra.Command, args []string) error {
	profiles, err := loadProfiles()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	if len(profiles.Profiles) == 0 {
		logger.Info("No profiles to remove")
		return nil
	}

	var selected string
	if len(args) == 1 {
		selected = args[0]
	} else {
		names := make([]string, len(profiles.Profiles))
		for i, p := range profiles.Profiles {
			names[i] = p.Name
		}
		prompt := &survey.Select{
			Message: "Select profile to remove:",
			Options: names,
		}
		if err := survey.AskOne(prompt, &selected); err != nil {
			return err
		}
	}

	var confirm bool
	confirmPrompt := &survey.Confirm{
		Message: fmt.Sprintf("Are you sure you want to remove %s?", selected),
		Default: false,
	}
	if err := survey.AskOne(confirmPrompt, &confirm); err != nil {
		return err
	}
	if !confirm {
		logger.Info("Removal cancelled")
		return nil
	}

	if err := profiles.Remove(selected); err != nil {
		return err
	}
	if err := saveProfiles(profiles); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}

	logger.Successf("Profile %s removed", selected)
	return nil
}

func useProfile(_ *cobra.Command, args []string) error {
	profiles, err := loadProfiles()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}
	if _, ok := profiles.Find(args[0]); !ok {
		return fmt.Errorf("profile %s not found", args[0])
	}
	profiles.Selected = args[0]
	if err := saveProfiles(profiles); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}
	logger.Successf("Using profile %s", args[0])
	return nil
}
