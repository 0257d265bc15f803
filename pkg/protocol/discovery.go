package protocol

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/picogrid/mdrun/pkg/amber"
	"github.com/picogrid/mdrun/pkg/logger"
)

// FileName is the name protocol definitions are discovered under
const FileName = "protocol.yaml"

// Definition is a protocol defined in YAML. Settings are namelist keys
// applied to the configuration first; parameters whose names are namelist
// keys are applied after them.
type Definition struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Parameters  []Parameter            `yaml:"parameters"`
	Settings    map[string]interface{} `yaml:"settings"`
	Path        string                 `yaml:"-"`
}

func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("protocol name is required")
	}
	for key := range d.Settings {
		if !isNamelistKey(key) {
			return fmt.Errorf("protocol %s: unknown setting %s", d.Name, key)
		}
	}
	for _, p := range d.Parameters {
		if p.Default == nil {
			continue
		}
		if _, err := p.Parse(p.Default); err != nil {
			return fmt.Errorf("protocol %s: bad default: %w", d.Name, err)
		}
	}
	return nil
}

type fileProtocol struct {
	def Definition
}

func (f *fileProtocol) Name() string            { return f.def.Name }
func (f *fileProtocol) Description() string     { return f.def.Description }
func (f *fileProtocol) Parameters() []Parameter { return f.def.Parameters }

func (f *fileProtocol) Apply(cfg *amber.Config, params map[string]interface{}) error {
	if err := cfg.ApplyOverrides(f.def.Settings); err != nil {
		return fmt.Errorf("protocol %s: %w", f.def.Name, err)
	}
	overrides := make(map[string]interface{})
	for name, value := range params {
		if isNamelistKey(name) {
			overrides[name] = value
		}
	}
	if err := cfg.ApplyOverrides(overrides); err != nil {
		return fmt.Errorf("protocol %s: %w", f.def.Name, err)
	}
	return nil
}

// FromDefinition wraps a YAML definition as a Protocol
func FromDefinition(def Definition) Protocol {
	return &fileProtocol{def: def}
}

// Discover finds every protocol.yaml below dir. Files that fail to load are
// logged and skipped.
func Discover(dir string) ([]Definition, error) {
	var defs []Definition

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || info.Name() != FileName {
			return nil
		}

		def, err := LoadDefinition(path)
		if err != nil {
			logger.Warnf("failed to load %s: %v", path, err)
			return nil
		}
		defs = append(defs, *def)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan for protocols: %w", err)
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs, nil
}

// LoadDefinition reads a single protocol definition
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read protocol: %w", err)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse protocol: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	def.Path = path
	return &def, nil
}

// RegisterDir discovers protocols under dir and adds them to r
func RegisterDir(r *Registry, dir string) (int, error) {
	defs, err := Discover(dir)
	if err != nil {
		return 0, err
	}
	for _, def := range defs {
		p := FromDefinition(def)
		if err := r.Register(def.Name, func() Protocol { return p }); err != nil {
			return 0, err
		}
	}
	return len(defs), nil
}

func isNamelistKey(key string) bool {
	for _, k := range amber.Keys() {
		if k == key {
			return true
		}
	}
	return false
}
