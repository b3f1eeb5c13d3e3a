package roles

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	str2duration "github.com/xhit/go-str2duration/v2"
)

type Environment string

const (
	Dev     Environment = "dev"
	Staging Environment = "staging"
	Prod    Environment = "prod"
)

// RoleMapping describes how to obtain credentials for an environment. An
// empty AssumedRoleArn means the ambient credential chain is used.
type RoleMapping struct {
	AssumedRoleArn  string `yaml:"assumedRoleArn"`
	ExternalID      string `yaml:"externalId"`
	SessionDuration string `yaml:"sessionDuration"`
}

// AssumesRole reports whether credentials must come from sts:AssumeRole.
func (m RoleMapping) AssumesRole() bool {
	return m.AssumedRoleArn != ""
}

// Bounds STS accepts for AssumeRole DurationSeconds.
const (
	MinSessionDuration = 15 * time.Minute
	MaxSessionDuration = 12 * time.Hour
)

// Duration returns the parsed session duration, zero when unset. The value
// must be whole seconds within the STS bounds.
func (m RoleMapping) Duration() (time.Duration, error) {
	if m.SessionDuration == "" {
		return 0, nil
	}
	d, err := str2duration.ParseDuration(m.SessionDuration)
	if err != nil {
		return 0, err
	}
	if d%time.Second != 0 {
		return 0, errors.Errorf("session duration %s is not a whole number of seconds", m.SessionDuration)
	}
	if d < MinSessionDuration || d > MaxSessionDuration {
		return 0, errors.Errorf("session duration %s is outside %s..%s", m.SessionDuration, MinSessionDuration, MaxSessionDuration)
	}
	return d, nil
}

// ConfigError is returned when an environment has no role mapping.
type ConfigError struct {
	Env   Environment
	Known []Environment
}

func (e *ConfigError) Error() string {
	known := make([]string, len(e.Known))
	for i, env := range e.Known {
		known[i] = string(env)
	}
	return fmt.Sprintf("no role mapping configured for environment %q (known: %s)", string(e.Env), strings.Join(known, ", "))
}

// Table is a read-only set of role mappings keyed by environment.
type Table struct {
	mappings map[Environment]RoleMapping
}

// NewTable copies m so later changes to it do not leak into the table.
func NewTable(m map[Environment]RoleMapping) Table {
	mappings := make(map[Environment]RoleMapping, len(m))
	for env, rm := range m {
		mappings[env] = rm
	}
	return Table{mappings: mappings}
}

// DefaultTable is used when no role file is given. Dev and staging live in
// separate accounts reached through a service role; prod runs with the
// credentials of the host.
func DefaultTable() Table {
	return NewTable(map[Environment]RoleMapping{
		Dev: {
			AssumedRoleArn: "arn:aws:iam::111111111111:role/secret-replace",
			ExternalID:     "secret-replace-dev",
		},
		Staging: {
			AssumedRoleArn: "arn:aws:iam::222222222222:role/secret-replace",
			ExternalID:     "secret-replace-staging",
		},
		Prod: {},
	})
}

func (t Table) Lookup(env Environment) (RoleMapping, error) {
	m, ok := t.mappings[env]
	if !ok {
		return RoleMapping{}, &ConfigError{Env: env, Known: t.Environments()}
	}
	return m, nil
}

// Environments returns the configured environment names in sorted order.
func (t Table) Environments() []Environment {
	envs := make([]Environment, 0, len(t.mappings))
	for env := range t.mappings {
		envs = append(envs, env)
	}
	sort.Slice(envs, func(i, j int) bool { return envs[i] < envs[j] })
	return envs
}

// Label returns the second segment of a slash-delimited path, so
// "/dev/app/db_password" yields "dev".
func Label(path string) string {
	segments := strings.Split(path, "/")
	if len(segments) < 2 {
		return ""
	}
	return segments[1]
}
