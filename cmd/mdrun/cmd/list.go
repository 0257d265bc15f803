package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/picogrid/mdrun/pkg/logger"
	"github.com/picogrid/mdrun/pkg/protocol"
)

var listCmd = &cobra.Command{
	Use:   "list [protocol]",
	Short: "List available protocols",
	Long:  `List all registered protocols, or the parameters of one protocol`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  listProtocols,
}

func listProtocols(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return listParameters(cmd, args[0])
	}

	names := protocol.DefaultRegistry.List()
	if len(names) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No protocols found")
		return nil
	}

	table := logger.NewTable("NAME", "PARAMETERS", "DESCRIPTION")
	for _, name := range names {
		p, err := protocol.DefaultRegistry.Get(name)
		if err != nil {
			return err
		}
		table.AddRow(name, fmt.Sprint(len(p.Parameters())), p.Description())
	}
	table.Fprint(cmd.OutOrStdout())
	return nil
}

func listParameters(cmd *cobra.Command, name string) error {
	p, err := protocol.DefaultRegistry.Get(name)
	if err != nil {
		return err
	}

	table := logger.NewTable("PARAMETER", "TYPE", "DEFAULT", "DESCRIPTION")
	for _, param := range p.Parameters() {
		def := ""
		if param.Default != nil {
			def = fmt.Sprint(param.Default)
		}
		description := param.Description
		if len(param.Options) > 0 {
			description += " [" + strings.Join(param.Options, "|") + "]"
		}
		table.AddRow(param.Name, param.Type, def, description)
	}
	table.Fprint(cmd.OutOrStdout())
	return nil
}
