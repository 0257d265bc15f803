package amber

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Entry is one key=value pair of the &cntrl namelist.
type Entry struct {
	Key   string
	Value interface{}
}

// Entries returns the namelist in the order it is written to the control
// file. Restraint keys are only present while restraints are enabled.
func (c *Config) Entries() []Entry {
	entries := []Entry{
		{"imin", int(c.imin)},
		{"irest", c.irest},
		{"ntx", c.ntx},
		{"ntmin", c.ntmin},
		{"maxcyc", c.maxcyc},
		{"ncyc", c.ncyc},
		{"nstlim", c.nstlim},
		{"dt", c.dt},
		{"ig", c.ig},
		{"ntpr", c.ntpr},
		{"ntwx", c.ntwx},
		{"ntwr", c.ntwr},
		{"ioutfm", c.ioutfm},
		{"iwrap", c.iwrap},
		{"ntc", int(c.ntc)},
		{"ntf", c.ntf},
		{"jfastw", c.jfastw},
		{"cut", c.cut},
		{"dielc", c.dielc},
		{"nmropt", c.nmropt},
		{"ntr", boolInt(c.restraints != nil)},
	}
	if c.restraints != nil {
		entries = append(entries,
			Entry{"restraintmask", c.restraints.Mask},
			Entry{"restraint_wt", c.restraints.Weight},
		)
	}
	return append(entries,
		Entry{"ntb", int(c.ntb)},
		Entry{"ntt", int(c.ntt)},
		Entry{"temp0", c.temp0},
		Entry{"tempi", c.tempi},
		Entry{"gamma_ln", c.gammaLn},
		Entry{"ntp", int(c.ntp)},
		Entry{"barostat", int(c.barostat)},
		Entry{"pres0", c.pres0},
	)
}

// ToMap returns the namelist as a map. Binary paths and internal state are
// not part of it.
func (c *Config) ToMap() map[string]interface{} {
	entries := c.Entries()
	m := make(map[string]interface{}, len(entries))
	for _, e := range entries {
		m[e.Key] = e.Value
	}
	return m
}

// WriteMdin renders the control file read by sander and pmemd.
func (c *Config) WriteMdin(w io.Writer, title string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if title == "" {
		title = c.imin.String()
	}

	bw := bufio.NewWriter(w)
	_, _ = fmt.Fprintln(bw, strings.ReplaceAll(title, "\n", " "))
	_, _ = fmt.Fprintln(bw, " &cntrl")
	for _, e := range c.Entries() {
		_, _ = fmt.Fprintf(bw, "  %s=%s,\n", e.Key, formatValue(e.Value))
	}
	_, _ = fmt.Fprintln(bw, " /")
	return bw.Flush()
}

// WriteMdinFile writes the control file to path.
func (c *Config) WriteMdinFile(path, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create control file: %w", err)
	}
	if err := c.WriteMdin(f, title); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write control file: %w", err)
	}
	return f.Close()
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case float64:
		s := strconv.FormatFloat(val, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	default:
		return fmt.Sprint(val)
	}
}
