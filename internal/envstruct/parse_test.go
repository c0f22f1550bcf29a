package envstruct_test

import (
	"github.com/myrjola/crimewatch/internal/envstruct"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
	"time"
)

func TestPopulate(t *testing.T) {
	type args struct {
		v         any
		lookupEnv func(string) (string, bool)
	}
	tests := []struct {
		name    string
		args    args
		want    any
		wantErr error
	}{
		{
			name: "nil",
			args: args{
				v:         nil,
				lookupEnv: func(_ string) (string, bool) { return "", false },
			},
			want:    nil,
			wantErr: envstruct.ErrInvalidValue,
		},
		{
			name: "not pointer",
			args: args{
				v:         struct{}{},
				lookupEnv: func(_ string) (string, bool) { return "", false },
			},
			want:    nil,
			wantErr: envstruct.ErrInvalidValue,
		},
		{
			name: "empty struct",
			args: args{
				v:         &struct{}{},
				lookupEnv: func(_ string) (string, bool) { return "", false },
			},
			want:    &struct{}{},
			wantErr: nil,
		},
		{
			name: "empty env",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					BackendURL string `env:"CRIMEWATCH_BACKEND_URL"`
				}{},
				lookupEnv: func(_ string) (string, bool) { return "", false },
			},
			want:    nil,
			wantErr: envstruct.ErrEnvNotSet,
		},
		{
			name: "env is set",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					BackendURL string `env:"CRIMEWATCH_BACKEND_URL"`
				}{},
				lookupEnv: func(_ string) (string, bool) { return "http://backend", true },
			},
			want:    &struct{ BackendURL string }{BackendURL: "http://backend"},
			wantErr: nil,
		},
		{
			name: "picks correct env variable",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					EnvVar      string `env:"ENV_VAR"`
					EnvVar2     string `env:"ENV_VAR2"`
					OtherValue  string
					OtherValue2 int
				}{},
				lookupEnv: func(s string) (string, bool) { return strings.ToLower(s), true },
			},
			want: &struct {
				EnvVar      string
				EnvVar2     string
				OtherValue  string
				OtherValue2 int
			}{EnvVar: "env_var", EnvVar2: "env_var2", OtherValue: "", OtherValue2: 0},
			wantErr: nil,
		},
		{
			name: "handles default value",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Addr string `env:"CRIMEWATCH_ADDR" envDefault:"localhost:4000"`
				}{},
				lookupEnv: func(_ string) (string, bool) { return "", false },
			},
			want: &struct {
				Addr string
			}{Addr: "localhost:4000"},
			wantErr: nil,
		},
		{
			name: "parses typed values",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Timeout time.Duration `env:"TIMEOUT" envDefault:"5s"`
					Enabled bool          `env:"ENABLED" envDefault:"true"`
					Burst   int           `env:"BURST" envDefault:"3"`
				}{},
				lookupEnv: func(_ string) (string, bool) { return "", false },
			},
			want: &struct {
				Timeout time.Duration
				Enabled bool
				Burst   int
			}{Timeout: 5 * time.Second, Enabled: true, Burst: 3},
			wantErr: nil,
		},
		{
			name: "rejects malformed int",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Burst int `env:"BURST"`
				}{},
				lookupEnv: func(_ string) (string, bool) { return "many", true },
			},
			want:    nil,
			wantErr: envstruct.ErrInvalidValue,
		},
		{
			name: "rejects unsupported types",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Ratio float64 `env:"RATIO"`
				}{},
				lookupEnv: func(_ string) (string, bool) { return "0.5", true },
			},
			want:    nil,
			wantErr: envstruct.ErrInvalidValue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.args.v
			err := envstruct.Populate(v, tt.args.lookupEnv)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				require.EqualValues(t, tt.want, v)
			}
		})
	}
}
