package roles

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

const iniSectionPrefix = "env "

// Load reads a role table from path. YAML files are recognised by their
// extension, everything else is parsed as an AWS-config style INI file.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, errors.Wrap(err, "failed to read role file")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return LoadYAML(bytes.NewReader(data))
	default:
		return LoadINI(data)
	}
}

// LoadYAML decodes a mapping of environment names to role mappings:
//
//	dev:
//	  assumedRoleArn: arn:aws:iam::111111111111:role/secret-replace
//	  externalId: secret-replace-dev
//	  sessionDuration: 1h
//	prod: {}
func LoadYAML(r io.Reader) (Table, error) {
	var raw map[string]RoleMapping
	d := yaml.NewDecoder(r, yaml.Strict())
	if err := d.Decode(&raw); err != nil {
		return Table{}, errors.Wrap(err, "failed to decode YAML")
	}
	m := make(map[Environment]RoleMapping, len(raw))
	for env, rm := range raw {
		m[Environment(env)] = rm
	}
	return newValidatedTable(m)
}

// LoadINI parses sections named "[env <name>]" or "[<name>]" carrying
// role_arn, external_id and duration keys.
func LoadINI(data []byte) (Table, error) {
	f, err := ini.Load(data)
	if err != nil {
		return Table{}, errors.Wrap(err, "failed to decode INI")
	}
	m := map[Environment]RoleMapping{}
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			if len(sec.Keys()) > 0 {
				return Table{}, errors.Errorf("keys outside an environment section are not supported: %s", strings.Join(sec.KeyStrings(), ", "))
			}
			continue
		}
		var rm RoleMapping
		for _, k := range sec.Keys() {
			switch k.Name() {
			case "role_arn":
				rm.AssumedRoleArn = k.String()
			case "external_id":
				rm.ExternalID = k.String()
			case "duration":
				rm.SessionDuration = k.String()
			default:
				return Table{}, errors.Errorf("section [%s]: unknown key %q", sec.Name(), k.Name())
			}
		}
		env := strings.TrimSpace(strings.TrimPrefix(sec.Name(), iniSectionPrefix))
		m[Environment(env)] = rm
	}
	return newValidatedTable(m)
}

func newValidatedTable(m map[Environment]RoleMapping) (Table, error) {
	if len(m) == 0 {
		return Table{}, errors.New("role file defines no environments")
	}
	for env, rm := range m {
		if _, err := rm.Duration(); err != nil {
			return Table{}, errors.Wrapf(err, "environment %q: invalid sessionDuration", string(env))
		}
		if rm.ExternalID != "" && !rm.AssumesRole() {
			return Table{}, errors.Errorf("environment %q: externalId requires assumedRoleArn", string(env))
		}
	}
	return NewTable(m), nil
}
