package secretreplace

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/grezar/secretreplace/provider/awsssm"
	"github.com/grezar/secretreplace/roles"
	mock_secrets "github.com/grezar/secretreplace/secrets/mocks"
)

func TestRunner_Run(t *testing.T) {
	type fields struct {
		content func(dir string) (filename string)
		env     string
		report  bool
		expect  func(m *mock_secrets.MockFetcherMockRecorder)
	}
	tests := []struct {
		name       string
		fields     fields
		wantFile   string
		wantOutput []string
		wantErr    error
	}{
		{
			name: "Render a secret into the template",
			fields: fields{
				content: func(dir string) string {
					filename := filepath.Join(dir, "app.env")
					os.WriteFile(filename, []byte("DB_PASSWORD={{ ssm_path('/dev/app/db_password') }}\n"), 0o600)
					return filename
				},
				expect: func(m *mock_secrets.MockFetcherMockRecorder) {
					m.Fetch(gomock.Any(), "/dev/app/db_password", roles.Dev).Return("s3cr3t", nil)
				},
			},
			wantFile: "DB_PASSWORD=s3cr3t\n",
		},
		{
			name: "Fixed environment and report",
			fields: fields{
				content: func(dir string) string {
					filename := filepath.Join(dir, "app.env")
					os.WriteFile(filename, []byte("KEY={{ ssm_path('/shared/key') }}\n"), 0o600)
					return filename
				},
				env:    "staging",
				report: true,
				expect: func(m *mock_secrets.MockFetcherMockRecorder) {
					m.Fetch(gomock.Any(), "/shared/key", roles.Staging).Return("k", nil)
				},
			},
			wantFile:   "KEY=k\n",
			wantOutput: []string{"/shared/key", "staging"},
		},
		{
			name: "Missing template only warns",
			fields: fields{
				content: func(dir string) string {
					return filepath.Join(dir, "missing.env")
				},
				expect: func(m *mock_secrets.MockFetcherMockRecorder) {},
			},
			wantOutput: []string{"\x1b[33mCould not find secret template file with name: '", "missing.env'\x1b[0m"},
		},
		{
			name: "Parameter not found is returned",
			fields: fields{
				content: func(dir string) string {
					filename := filepath.Join(dir, "app.env")
					os.WriteFile(filename, []byte("X={{ ssm_path('/dev/app/missing') }}\n"), 0o600)
					return filename
				},
				expect: func(m *mock_secrets.MockFetcherMockRecorder) {
					m.Fetch(gomock.Any(), "/dev/app/missing", roles.Dev).Return("", &awsssm.NotFoundError{Path: "/dev/app/missing"})
				},
			},
			wantFile: "X={{ ssm_path('/dev/app/missing') }}\n",
			wantErr:  &awsssm.NotFoundError{Path: "/dev/app/missing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			fetcher := mock_secrets.NewMockFetcher(ctrl)
			tt.fields.expect(fetcher.EXPECT())

			filename := tt.fields.content(t.TempDir())
			stdout := new(bytes.Buffer)
			r, err := NewRunner(Options{
				Filename: filename,
				Env:      tt.fields.env,
				Report:   tt.fields.report,
				Stdout:   stdout,
				Fetcher:  fetcher,
			})
			if err != nil {
				t.Fatal(err)
			}

			err = r.Run(context.Background())
			if (err != nil) != (tt.wantErr != nil) {
				t.Fatalf("Runner.Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil && err.Error() != tt.wantErr.Error() {
				t.Errorf("Runner.Run() error = %q, want %q", err.Error(), tt.wantErr.Error())
			}
			for _, w := range tt.wantOutput {
				if !strings.Contains(stdout.String(), w) {
					t.Errorf("output %q does not contain %q", stdout.String(), w)
				}
			}
			if tt.wantFile != "" {
				got, err := os.ReadFile(filename)
				if err != nil {
					t.Fatal(err)
				}
				if string(got) != tt.wantFile {
					t.Errorf("file = %q, want %q", got, tt.wantFile)
				}
			}
		})
	}
}

func TestNewRunner_BadRolesFile(t *testing.T) {
	_, err := NewRunner(Options{
		Filename:  "app.env",
		RolesFile: filepath.Join(t.TempDir(), "roles.yml"),
	})
	if err == nil {
		t.Fatal("expected error for unreadable role file")
	}
}

func TestNewRunner_FetcherIgnoresStackOptions(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, err := NewRunner(Options{
		Filename:  "app.env",
		RolesFile: filepath.Join(t.TempDir(), "does-not-exist.yml"),
		Region:    "eu-west-1",
		Fetcher:   mock_secrets.NewMockFetcher(ctrl),
	})
	if err != nil {
		t.Fatalf("NewRunner() error = %v, role file must not be read when a Fetcher is given", err)
	}
}
