package cmd

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/picogrid/mdrun/pkg/amber"
	"github.com/picogrid/mdrun/pkg/config"
	"github.com/picogrid/mdrun/pkg/protocol"
	"github.com/picogrid/mdrun/pkg/utils"
)

// addJobFlags registers the flags shared by run and mdin
func addJobFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("job", "j", "", "job file (YAML, default ./mdrun.yaml if present)")
	cmd.Flags().StringP("protocol", "s", "", "protocol to apply")
	cmd.Flags().StringArray("param", nil, "protocol parameter as name=value (repeatable)")
	cmd.Flags().StringArray("set", nil, "namelist setting as key=value, applied after the protocol (repeatable)")
	cmd.Flags().String("title", "", "control file title line")
}

// loadJob reads the job file and merges the flags the command defines
func loadJob(cmd *cobra.Command) (*config.Job, error) {
	path, _ := cmd.Flags().GetString("job")
	job, err := config.LoadJobOrDefault(path)
	if err != nil {
		return nil, err
	}

	overrides := map[string]interface{}{
		"profile": viper.GetString("profile"),
	}
	for _, name := range []string{"protocol", "title", "topology", "coordinates", "output", "workdir"} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			overrides[name] = f.Value.String()
		}
	}
	if cmd.Flags().Changed("gpu") {
		overrides["gpu"], _ = cmd.Flags().GetBool("gpu")
	}
	if cmd.Flags().Changed("cores") {
		overrides["cores"], _ = cmd.Flags().GetInt("cores")
	}
	config.MergeWithCLIOverrides(job, overrides)

	params, err := assignments(cmd, "param")
	if err != nil {
		return nil, err
	}
	if len(params) > 0 && job.Params == nil {
		job.Params = make(map[string]interface{}, len(params))
	}
	for k, v := range params {
		job.Params[k] = v
	}

	settings, err := assignments(cmd, "set")
	if err != nil {
		return nil, err
	}
	if len(settings) > 0 && job.Amber == nil {
		job.Amber = make(map[string]interface{}, len(settings))
	}
	for k, v := range settings {
		job.Amber[k] = v
	}

	if job.Protocol == "" {
		if job.Protocol, err = selectProtocol(); err != nil {
			return nil, fmt.Errorf("failed to select protocol: %w", err)
		}
	}
	return job, nil
}

func assignments(cmd *cobra.Command, flag string) (map[string]interface{}, error) {
	raw, _ := cmd.Flags().GetStringArray(flag)
	out := make(map[string]interface{}, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("--%s %q: expected name=value", flag, kv)
		}
		out[strings.TrimSpace(key)] = value
	}
	return out, nil
}

// selectProtocol asks which protocol to run, or picks minimise when there
// is nobody to ask
func selectProtocol() (string, error) {
	names := protocol.DefaultRegistry.List()
	if len(names) == 0 {
		return "", fmt.Errorf("no protocols registered")
	}
	if utils.SkipPrompts() {
		return "minimise", nil
	}

	descriptions := make(map[string]string, len(names))
	for _, name := range names {
		if p, err := protocol.DefaultRegistry.Get(name); err == nil {
			descriptions[name] = p.Description()
		}
	}

	var selected string
	prompt := &survey.Select{
		Message: "Select protocol:",
		Options: names,
		Description: func(value string, index int) string {
			return descriptions[value]
		},
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}
	return selected, nil
}

// buildConfig applies the job's protocol, parameters and settings on top of
// base
func buildConfig(job *config.Job, base *amber.Config) (*amber.Config, error) {
	p, err := protocol.DefaultRegistry.Get(job.Protocol)
	if err != nil {
		return nil, err
	}

	params, err := utils.PromptForParameters(p.Parameters(), job.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to get parameters: %w", err)
	}
	job.Params = params

	cfg := base.Clone()
	if err := p.Apply(cfg, params); err != nil {
		return nil, fmt.Errorf("failed to apply protocol %s: %w", p.Name(), err)
	}
	if err := cfg.ApplyOverrides(job.Amber); err != nil {
		return nil, fmt.Errorf("failed to apply settings: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
