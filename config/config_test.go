package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/NomadCrew/feedback-client/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"ENVIRONMENT",
	"LOG_LEVEL",
	"FEEDBACK_API_URL",
	"VITE_API_URL",
	"API_URL",
	"API_BASE_URL",
	"FEEDBACK_PAGE_SIZE",
	"FEEDBACK_STALE_SECONDS",
	"FEEDBACK_TOAST_SECONDS",
	"FEEDBACK_METRICS_ADDR",
	"FEEDBACK_IMPORT_WORKERS",
	"FEEDBACK_IMPORT_QUEUE_SIZE",
	"FEEDBACK_IMPORT_SHUTDOWN_TIMEOUT_SECONDS",
}

// isolate runs the test from an empty directory with every config variable
// cleared, so no .env or feedback.yaml from the repo leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	logger.IsTest = true

	for _, key := range configEnvVars {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 10, cfg.API.PageSize)
	assert.Equal(t, 60, cfg.UI.StaleSeconds)
	assert.Equal(t, 4, cfg.UI.ToastSeconds)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.Equal(t, 4, cfg.WorkerPool.MaxWorkers)
	assert.Equal(t, 64, cfg.WorkerPool.QueueSize)
	assert.Equal(t, 30, cfg.WorkerPool.ShutdownTimeoutSeconds)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_BaseURLOverrides(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		want    string
	}{
		{
			name:    "feedback variable",
			envVars: map[string]string{"FEEDBACK_API_URL": "https://feedback.example.com"},
			want:    "https://feedback.example.com",
		},
		{
			name:    "frontend-style variable",
			envVars: map[string]string{"VITE_API_URL": "http://api.internal:9000/"},
			want:    "http://api.internal:9000",
		},
		{
			name: "feedback variable wins over frontend variable",
			envVars: map[string]string{
				"FEEDBACK_API_URL": "https://primary.example.com",
				"VITE_API_URL":     "https://secondary.example.com",
			},
			want: "https://primary.example.com",
		},
		{
			name:    "empty value keeps default",
			envVars: map[string]string{"FEEDBACK_API_URL": ""},
			want:    DefaultBaseURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := LoadConfig()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.API.BaseURL)
		})
	}
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.Unsetenv("VITE_API_URL"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("VITE_API_URL=https://dotenv.example.com\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("VITE_API_URL") })

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://dotenv.example.com", cfg.API.BaseURL)
}

func TestLoadConfig_ConfigFile(t *testing.T) {
	dir := isolate(t)
	yaml := "api:\n  page_size: 25\nui:\n  stale_seconds: 5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "feedback.yaml"), []byte(yaml), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.API.PageSize)
	assert.Equal(t, 5, cfg.UI.StaleSeconds)
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr string
	}{
		{
			name:    "relative base URL",
			envVars: map[string]string{"FEEDBACK_API_URL": "localhost:8080"},
			wantErr: "invalid API base URL",
		},
		{
			name:    "non-http scheme",
			envVars: map[string]string{"FEEDBACK_API_URL": "ftp://example.com"},
			wantErr: "scheme must be http or https",
		},
		{
			name:    "page size too large",
			envVars: map[string]string{"FEEDBACK_PAGE_SIZE": "500"},
			wantErr: "page size must be between 1 and 100",
		},
		{
			name:    "negative stale window",
			envVars: map[string]string{"FEEDBACK_STALE_SECONDS": "-1"},
			wantErr: "stale seconds must not be negative",
		},
		{
			name:    "zero import workers",
			envVars: map[string]string{"FEEDBACK_IMPORT_WORKERS": "0"},
			wantErr: "worker pool max workers must be positive",
		},
		{
			name:    "unknown environment",
			envVars: map[string]string{"ENVIRONMENT": "staging"},
			wantErr: "invalid environment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := LoadConfig()
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateBaseURL(t *testing.T) {
	assert.NoError(t, ValidateBaseURL("http://localhost:8080"))
	assert.NoError(t, ValidateBaseURL("https://feedback.example.com/prefix"))
	assert.Error(t, ValidateBaseURL(""))
	assert.Error(t, ValidateBaseURL("http://"))
}
