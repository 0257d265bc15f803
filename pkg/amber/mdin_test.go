package amber

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMdin(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.SetMinimisation(500))
	require.NoError(t, cfg.SetRestraints(DefaultRestraintMask, DefaultRestraintWeight))

	var buf bytes.Buffer
	require.NoError(t, cfg.WriteMdin(&buf, ""))
	out := buf.String()

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "minimisation", lines[0])
	assert.Equal(t, " &cntrl", lines[1])
	assert.Equal(t, " /", lines[len(lines)-1])

	assert.Contains(t, out, "  imin=1,\n")
	assert.Contains(t, out, "  maxcyc=500,\n")
	assert.Contains(t, out, "  ncyc=250,\n")
	assert.Contains(t, out, "  dt=0.002,\n")
	assert.Contains(t, out, "  cut=8.0,\n")
	assert.Contains(t, out, "  temp0=0.0,\n")
	assert.Contains(t, out, "  ntr=1,\n")
	assert.Contains(t, out, "  restraintmask='!(:WAT,NA,CL)',\n")
	assert.Contains(t, out, "  restraint_wt=5.0,\n")
	assert.NotContains(t, out, "nct=")
	assert.NotContains(t, out, "dielec=")
}

func TestWriteMdinOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().WriteMdin(&buf, "heat"))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "heat\n &cntrl\n  imin=0,\n"))
	assert.Less(t, strings.Index(out, "ntr="), strings.Index(out, "ntb="))
	assert.NotContains(t, out, "restraintmask")
}

func TestWriteMdinRejectsInvalidConfig(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.SetPressure(PressureIsotropic, BarostatMonteCarlo, 1))
	require.NoError(t, cfg.SetBoundary(BoundaryNone))

	var buf bytes.Buffer
	assert.ErrorIs(t, cfg.WriteMdin(&buf, ""), ErrInvalidParameter)
	assert.Zero(t, buf.Len())
}

func TestWriteMdinFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "md.in")
	require.NoError(t, Default().WriteMdinFile(path, "title\nwith newline"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "title with newline\n"))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{1, "1"},
		{-1, "-1"},
		{0.002, "0.002"},
		{300.0, "300.0"},
		{1e-05, "0.00001"},
		{"@CA", "'@CA'"},
		{"it's", "'it''s'"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatValue(tt.in), "%v", tt.in)
	}
}
