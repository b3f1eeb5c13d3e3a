package roles

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTable_Lookup(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name    string
		env     Environment
		want    RoleMapping
		wantErr bool
	}{
		{
			name: "dev assumes the dev service role",
			env:  Dev,
			want: RoleMapping{
				AssumedRoleArn: "arn:aws:iam::111111111111:role/secret-replace",
				ExternalID:     "secret-replace-dev",
			},
		},
		{
			name: "staging assumes the staging service role",
			env:  Staging,
			want: RoleMapping{
				AssumedRoleArn: "arn:aws:iam::222222222222:role/secret-replace",
				ExternalID:     "secret-replace-staging",
			},
		},
		{
			name: "prod uses ambient credentials",
			env:  Prod,
			want: RoleMapping{},
		},
		{
			name:    "unknown environment",
			env:     "qa",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.Lookup(tt.env)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Table.Lookup() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var cerr *ConfigError
				if !errors.As(err, &cerr) || cerr.Env != tt.env {
					t.Errorf("Table.Lookup() error = %v, want *ConfigError for %q", err, tt.env)
				}
				if !strings.Contains(err.Error(), "known: dev, prod, staging") {
					t.Errorf("Table.Lookup() error = %q, want the known environments listed", err.Error())
				}
				return
			}
			if got != tt.want {
				t.Errorf("Table.Lookup() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNewTable_CopiesInput(t *testing.T) {
	m := map[Environment]RoleMapping{Dev: {AssumedRoleArn: "arn:one"}}
	table := NewTable(m)
	m[Dev] = RoleMapping{AssumedRoleArn: "arn:two"}
	delete(m, Dev)

	got, err := table.Lookup(Dev)
	if err != nil {
		t.Fatal(err)
	}
	if got.AssumedRoleArn != "arn:one" {
		t.Errorf("AssumedRoleArn = %q, want %q", got.AssumedRoleArn, "arn:one")
	}
}

func TestRoleMapping_Duration(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{name: "unset", in: "", want: 0},
		{name: "hours", in: "1h", want: time.Hour},
		{name: "compound", in: "1h30m", want: 90 * time.Minute},
		{name: "lower bound", in: "15m", want: 15 * time.Minute},
		{name: "upper bound", in: "12h", want: 12 * time.Hour},
		{name: "garbage", in: "soon", wantErr: true},
		{name: "sub-second", in: "500ms", wantErr: true},
		{name: "fractional second", in: "20m500ms", wantErr: true},
		{name: "below minimum", in: "10m", wantErr: true},
		{name: "above maximum", in: "13h", wantErr: true},
		{name: "overflows int32 seconds", in: "99999d", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RoleMapping{SessionDuration: tt.in}.Duration()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Duration() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTable_Environments(t *testing.T) {
	got := DefaultTable().Environments()
	want := []Environment{Dev, Prod, Staging}
	if len(got) != len(want) {
		t.Fatalf("Environments() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Environments()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/dev/app/db_password", want: "dev"},
		{path: "/staging/api_key", want: "staging"},
		{path: "dev/app", want: "app"},
		{path: "nopath", want: ""},
		{path: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Label(tt.path); got != tt.want {
				t.Errorf("Label(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
