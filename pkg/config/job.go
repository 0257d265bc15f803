package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/picogrid/mdrun/pkg/logger"
)

// Job describes one solver run: which files to feed it, where to run, which
// protocol to apply and any namelist settings to force on top of it.
type Job struct {
	Name        string                 `yaml:"name,omitempty"`
	Title       string                 `yaml:"title,omitempty"`
	Profile     string                 `yaml:"profile,omitempty"`
	Topology    string                 `yaml:"topology"`
	Coordinates string                 `yaml:"coordinates"`
	Output      string                 `yaml:"output"`
	WorkDir     string                 `yaml:"workdir,omitempty"`
	GPU         bool                   `yaml:"gpu"`
	Cores       int                    `yaml:"cores"`
	Protocol    string                 `yaml:"protocol"`
	Params      map[string]interface{} `yaml:"params,omitempty"`
	Amber       map[string]interface{} `yaml:"amber,omitempty"`
}

// Validate checks if the job is complete
func (j *Job) Validate() error {
	if j.Topology == "" {
		return fmt.Errorf("topology file is required")
	}
	if j.Coordinates == "" {
		return fmt.Errorf("coordinate file is required")
	}
	if j.Output == "" {
		return fmt.Errorf("output name is required")
	}
	if filepath.Base(j.Output) != j.Output {
		return fmt.Errorf("output name %q must not contain a directory, use workdir", j.Output)
	}
	if j.Cores <= 0 {
		return fmt.Errorf("cores must be positive")
	}
	if j.Protocol == "" {
		return fmt.Errorf("protocol is required")
	}
	return nil
}

// GetDefaultJob returns a job with everything but the input files and the
// protocol filled in
func GetDefaultJob() *Job {
	return &Job{
		Output:  "md",
		WorkDir: ".",
		Cores:   1,
	}
}

// LoadJob reads a job file. Defaults fill fields the file leaves out;
// completeness is checked once all overrides are applied.
func LoadJob(path string) (*Job, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("job file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading job file: %w", err)
	}

	job := GetDefaultJob()
	if err := yaml.Unmarshal(data, job); err != nil {
		return nil, fmt.Errorf("error parsing job file: %w", err)
	}

	return job, nil
}

// LoadJobOrDefault loads the job at path, falls back to mdrun.yaml in the
// current directory, then to the default job. Environment overrides are
// always applied.
func LoadJobOrDefault(path string) (*Job, error) {
	var job *Job
	var err error

	if path != "" {
		job, err = LoadJob(path)
		if err != nil {
			return nil, err
		}
	} else if _, statErr := os.Stat("mdrun.yaml"); statErr == nil {
		job, err = LoadJob("mdrun.yaml")
		if err != nil {
			return nil, err
		}
		logger.Debug("Loaded job from mdrun.yaml")
	}

	if job == nil {
		job = GetDefaultJob()
	}

	MergeWithEnvironment(job)
	return job, nil
}

// SaveJob writes a job file
func SaveJob(job *Job, path string) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	data, err := yaml.Marshal(job)
	if err != nil {
		return fmt.Errorf("error marshaling job: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing job file: %w", err)
	}

	return nil
}

// MergeWithCLIOverrides applies flag values to the job. Only keys present
// in overrides are touched.
func MergeWithCLIOverrides(job *Job, overrides map[string]interface{}) {
	for key, value := range overrides {
		switch key {
		case "topology":
			if s, ok := value.(string); ok && s != "" {
				job.Topology = s
			}
		case "coordinates":
			if s, ok := value.(string); ok && s != "" {
				job.Coordinates = s
			}
		case "output":
			if s, ok := value.(string); ok && s != "" {
				job.Output = s
			}
		case "workdir":
			if s, ok := value.(string); ok && s != "" {
				job.WorkDir = s
			}
		case "profile":
			if s, ok := value.(string); ok && s != "" {
				job.Profile = s
			}
		case "protocol":
			if s, ok := value.(string); ok && s != "" {
				job.Protocol = s
			}
		case "title":
			if s, ok := value.(string); ok && s != "" {
				job.Title = s
			}
		case "gpu":
			if b, ok := value.(bool); ok {
				job.GPU = b
			}
		case "cores":
			if n, ok := value.(int); ok && n > 0 {
				job.Cores = n
			}
		}
	}
}

// MergeWithEnvironment merges the job with MDRUN_* environment variables
func MergeWithEnvironment(job *Job) {
	fields := map[string]*string{
		"MDRUN_TOPOLOGY":    &job.Topology,
		"MDRUN_COORDINATES": &job.Coordinates,
		"MDRUN_OUTPUT":      &job.Output,
		"MDRUN_WORKDIR":     &job.WorkDir,
		"MDRUN_PROFILE":     &job.Profile,
		"MDRUN_PROTOCOL":    &job.Protocol,
	}
	for env, field := range fields {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}

	if gpu := os.Getenv("MDRUN_GPU"); gpu != "" {
		if enable, err := strconv.ParseBool(gpu); err == nil {
			job.GPU = enable
		}
	}

	if cores := os.Getenv("MDRUN_CORES"); cores != "" {
		if n, err := strconv.Atoi(cores); err == nil && n > 0 {
			job.Cores = n
		}
	}
}
