package simulation

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// builtins contains the bundled scenario definitions.
//
//go:embed scenarios/*.yaml
var builtins embed.FS

// Decode reads a YAML scenario from r. Unknown fields are rejected.
func Decode(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	sc := &Scenario{}
	if err := dec.Decode(sc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	return sc, nil
}

// LoadFile reads a YAML scenario from disk.
func LoadFile(p string) (*Scenario, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	sc, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return sc, nil
}

// Builtin returns a fresh copy of the named bundled scenario.
func Builtin(name string) (*Scenario, error) {
	data, err := builtins.ReadFile(path.Join("scenarios", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown scenario %q (available: %s)", name, strings.Join(BuiltinNames(), ", "))
	}
	return Decode(bytes.NewReader(data))
}

// BuiltinNames lists the bundled scenarios alphabetically.
func BuiltinNames() []string {
	entries, err := builtins.ReadDir("scenarios")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Resolve loads a scenario from file when file is set, otherwise the
// bundled scenario called name.
func Resolve(name, file string) (*Scenario, error) {
	if file != "" {
		return LoadFile(file)
	}
	return Builtin(name)
}
