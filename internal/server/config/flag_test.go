package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-k", "postgres", "-d", "db", "-s", "secret", "-v", "15",
			"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
		},
			expected: &Config{
				HTTPAddr:              "127.0.0.1:9090",
				Storage:               "postgres",
				DatabaseDSN:           "db",
				SecretKey:             "secret",
				TokenValidityDuration: 15 * time.Minute,
				S3RootUser:            "user",
				S3RootPassword:        "password",
				S3Bucket:              "bucket",
				S3Region:              "us-west-1",
				S3BaseEndpoint:        "http://endpoint",
			}},
		{name: "issue only", args: []string{"cmd", "-issue", "bob"},
			expected: &Config{IssueToken: "bob"}},
		{name: "incorrect validity", args: []string{"cmd", "-v", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

func TestParseFlags_AbsentValidityKeepsConfiguredValue(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"cmd", "-a", ":1"}
	config := &Config{TokenValidityDuration: 90 * time.Second}
	parseFlags(config)

	assert.Equal(t, 90*time.Second, config.TokenValidityDuration)
}
