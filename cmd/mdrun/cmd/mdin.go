package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/picogrid/mdrun/pkg/amber"
	"github.com/picogrid/mdrun/pkg/logger"
)

var mdinCmd = &cobra.Command{
	Use:   "mdin",
	Short: "Render a protocol's control file",
	Long:  `Render the &cntrl control file a run would use, to stdout or a file`,
	RunE:  renderMdin,
}

func init() {
	addJobFlags(mdinCmd)
	mdinCmd.Flags().StringP("file", "f", "", "write to this file instead of stdout")
}

func renderMdin(cmd *cobra.Command, _ []string) error {
	job, err := loadJob(cmd)
	if err != nil {
		return err
	}

	cfg, err := buildConfig(job, amber.Default())
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("file"); path != "" {
		if err := cfg.WriteMdinFile(path, job.Title); err != nil {
			return err
		}
		logger.Successf("Wrote %s", path)
		return nil
	}

	if err := cfg.WriteMdin(cmd.OutOrStdout(), job.Title); err != nil {
		return fmt.Errorf("failed to render control file: %w", err)
	}
	return nil
}
