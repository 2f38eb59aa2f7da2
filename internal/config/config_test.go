package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/99designs/keyring"
)

// withMockKeyring sets up a mock keyring for the duration of a test
func withMockKeyring(t *testing.T, ring keyring.Keyring) {
	t.Helper()
	t.Cleanup(SetOpenKeyring(func(cfg keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	}))
}

// withFailingKeyring sets up a keyring that always fails to open
func withFailingKeyring(t *testing.T, err error) {
	t.Helper()
	t.Cleanup(SetOpenKeyring(func(cfg keyring.Config) (keyring.Keyring, error) {
		return nil, err
	}))
}

func clearDirectusEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{envURL, envToken, envAPIVersion, envProfile} {
		t.Setenv(key, "")
	}
}

func TestProfileKey(t *testing.T) {
	tests := []struct {
		name     string
		profile  string
		expected string
	}{
		{"empty profile defaults to accountKey", "", accountKey},
		{"default profile uses accountKey", "default", accountKey},
		{"named profile uses prefix", "staging", profilePrefix + "staging"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := profileKey(tt.profile); got != tt.expected {
				t.Errorf("profileKey(%q) = %q, want %q", tt.profile, got, tt.expected)
			}
		})
	}
}

func TestNormalizeProfiles(t *testing.T) {
	got := normalizeProfiles([]string{" default ", "", "staging", "default", "  "})
	want := []string{"default", "staging"}
	if len(got) != len(want) {
		t.Fatalf("normalizeProfiles = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("normalizeProfiles[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSaveAndLoadProfile(t *testing.T) {
	ring := keyring.NewArrayKeyring(nil)
	withMockKeyring(t, ring)

	profile := Profile{
		URL:         "https://cms.example.com",
		APIVersion:  "1.1",
		AccessToken: "tok",
		Headers:     map[string]string{"X-Tenant": "acme"},
	}
	if err := SaveProfile("staging", profile); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	got, err := LoadProfile("staging")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if got.URL != profile.URL || got.AccessToken != "tok" || got.Headers["X-Tenant"] != "acme" {
		t.Errorf("LoadProfile = %+v, want %+v", got, profile)
	}

	current, err := CurrentProfile()
	if err != nil {
		t.Fatalf("CurrentProfile: %v", err)
	}
	if current != "staging" {
		t.Errorf("CurrentProfile = %q, want staging", current)
	}

	names, err := ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if len(names) != 1 || names[0] != "staging" {
		t.Errorf("ListProfiles = %v, want [staging]", names)
	}
}

func TestProfileJSONOmitEmpty(t *testing.T) {
	data, err := json.Marshal(Profile{URL: "https://x"})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"url":"https://x"}` {
		t.Errorf("json = %s", data)
	}
}

func TestLoadProfile_NotConfigured(t *testing.T) {
	withMockKeyring(t, keyring.NewArrayKeyring(nil))

	_, err := LoadProfile("")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("LoadProfile error = %v, want ErrNotConfigured", err)
	}
}

func TestLoadProfile_InvalidJSON(t *testing.T) {
	withMockKeyring(t, keyring.NewArrayKeyring([]keyring.Item{{Key: accountKey, Data: []byte("{")}}))

	if _, err := LoadProfile("default"); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestKeyringErrors(t *testing.T) {
	withFailingKeyring(t, errors.New("locked"))

	if err := SaveProfile("x", Profile{URL: "https://x"}); err == nil {
		t.Error("SaveProfile: expected error")
	}
	if _, err := LoadProfile("x"); err == nil {
		t.Error("LoadProfile: expected error")
	}
	if err := DeleteProfile("x"); err == nil {
		t.Error("DeleteProfile: expected error")
	}
	if _, err := ListProfiles(); err == nil {
		t.Error("ListProfiles: expected error")
	}
	if _, err := CurrentProfile(); err == nil {
		t.Error("CurrentProfile: expected error")
	}
}

func TestDeleteProfileSwitchesCurrentProfile(t *testing.T) {
	withMockKeyring(t, keyring.NewArrayKeyring(nil))

	if err := SaveProfile("a", Profile{URL: "https://a"}); err != nil {
		t.Fatal(err)
	}
	if err := SaveProfile("b", Profile{URL: "https://b"}); err != nil {
		t.Fatal(err)
	}
	if err := DeleteProfile("b"); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}

	current, _ := CurrentProfile()
	if current != "a" {
		t.Errorf("CurrentProfile = %q, want a", current)
	}
	if _, err := LoadProfile("b"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("LoadProfile(b) error = %v, want ErrNotConfigured", err)
	}
	names, _ := ListProfiles()
	if len(names) != 1 || names[0] != "a" {
		t.Errorf("ListProfiles = %v, want [a]", names)
	}
}

func TestListProfiles_LegacyDefault(t *testing.T) {
	withMockKeyring(t, keyring.NewArrayKeyring([]keyring.Item{{Key: accountKey, Data: []byte(`{"url":"https://x"}`)}}))

	names, err := ListProfiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != defaultProfile {
		t.Errorf("ListProfiles = %v, want [default]", names)
	}
}

func TestKeyringConfig(t *testing.T) {
	t.Setenv(envKeyringBackend, "")
	t.Setenv(envCredentialsDir, "")

	cfg := keyringConfig()
	if cfg.ServiceName != serviceName {
		t.Errorf("ServiceName = %q, want %q", cfg.ServiceName, serviceName)
	}
	if cfg.FileDir == "" {
		t.Error("FileDir should be configured in auto backend mode")
	}
	if cfg.FilePasswordFunc == nil {
		t.Error("FilePasswordFunc should be configured in auto backend mode")
	}
}

func TestKeyringConfig_FileBackendOverride(t *testing.T) {
	t.Setenv(envKeyringBackend, "file")
	base := t.TempDir()
	t.Setenv(envCredentialsDir, base)

	cfg := keyringConfig()
	if len(cfg.AllowedBackends) != 1 || cfg.AllowedBackends[0] != keyring.FileBackend {
		t.Fatalf("AllowedBackends = %v, want [%s]", cfg.AllowedBackends, keyring.FileBackend)
	}
	if want := filepath.Join(base, "keyring"); cfg.FileDir != want {
		t.Fatalf("FileDir = %q, want %q", cfg.FileDir, want)
	}
}

func TestKeyringConfig_SystemBackendOverride(t *testing.T) {
	t.Setenv(envKeyringBackend, "native")

	cfg := keyringConfig()
	if cfg.FileDir != "" || cfg.FilePasswordFunc != nil || len(cfg.AllowedBackends) != 0 {
		t.Fatalf("system backend should leave file settings empty: %+v", cfg)
	}
}

func TestShouldForceFileBackend(t *testing.T) {
	tests := []struct {
		goos, backend, dbus string
		want                bool
	}{
		{"darwin", keyringBackendFile, "ignored", true},
		{"linux", keyringBackendAuto, "", true},
		{"linux", keyringBackendAuto, "unix:path=/run/user/1000/bus", false},
		{"linux", keyringBackendSystem, "", false},
		{"windows", keyringBackendAuto, "", false},
	}
	for _, tt := range tests {
		if got := shouldForceFileBackend(tt.goos, tt.backend, tt.dbus); got != tt.want {
			t.Errorf("shouldForceFileBackend(%q, %q, %q) = %v, want %v", tt.goos, tt.backend, tt.dbus, got, tt.want)
		}
	}
}

func TestKeyringFileDir_DefaultsToUserConfigDir(t *testing.T) {
	t.Setenv(envCredentialsDir, "")
	dir := t.TempDir()
	original := userConfigDir
	userConfigDir = func() (string, error) { return dir, nil }
	t.Cleanup(func() { userConfigDir = original })

	if want := filepath.Join(dir, serviceName, "keyring"); keyringFileDir() != want {
		t.Errorf("keyringFileDir = %q, want %q", keyringFileDir(), want)
	}
}

func TestKeyringFilePassword(t *testing.T) {
	t.Setenv(envKeyringPassword, "hunter2")
	got, err := keyringFilePassword("prompt")
	if err != nil || got != "hunter2" {
		t.Fatalf("keyringFilePassword = %q, %v", got, err)
	}

	t.Setenv(envKeyringPassword, "")
	original := stdinHasTTY
	stdinHasTTY = func() bool { return false }
	t.Cleanup(func() { stdinHasTTY = original })

	if _, err := keyringFilePassword("prompt"); err == nil {
		t.Fatal("expected error without a TTY")
	}
}

func TestResolveClientConfig_ProfileEnvAndOverrides(t *testing.T) {
	clearDirectusEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))
	if err := SaveProfile("default", Profile{
		URL:         "https://stored.example.com/",
		AccessToken: "stored",
		APIVersion:  "1.1",
		Headers:     map[string]string{"X-A": "1"},
	}); err != nil {
		t.Fatal(err)
	}

	cfg, err := ResolveClientConfig(Overrides{})
	if err != nil {
		t.Fatalf("ResolveClientConfig: %v", err)
	}
	if cfg.URL != "https://stored.example.com" || cfg.Token != "stored" || cfg.Headers["X-A"] != "1" {
		t.Errorf("stored config = %+v", cfg)
	}

	t.Setenv(envToken, "from-env")
	t.Setenv(envAPIVersion, "2")
	cfg, err = ResolveClientConfig(Overrides{URL: "http://flag:8080", Headers: map[string]string{"X-B": "2"}})
	if err != nil {
		t.Fatalf("ResolveClientConfig: %v", err)
	}
	if cfg.URL != "http://flag:8080" || cfg.Token != "from-env" || cfg.APIVersion != "2" {
		t.Errorf("merged config = %+v", cfg)
	}
	if cfg.Headers["X-A"] != "1" || cfg.Headers["X-B"] != "2" {
		t.Errorf("headers = %v", cfg.Headers)
	}
}

func TestResolveClientConfig_EnvWithoutProfile(t *testing.T) {
	clearDirectusEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))
	t.Setenv(envURL, "https://env.example.com")

	cfg, err := ResolveClientConfig(Overrides{})
	if err != nil {
		t.Fatalf("ResolveClientConfig: %v", err)
	}
	if cfg.URL != "https://env.example.com" || cfg.Token != "" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestResolveClientConfig_NotConfigured(t *testing.T) {
	clearDirectusEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))

	if _, err := ResolveClientConfig(Overrides{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("error = %v, want ErrNotConfigured", err)
	}
}

func TestResolveClientConfig_InvalidVersion(t *testing.T) {
	clearDirectusEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))

	if _, err := ResolveClientConfig(Overrides{URL: "https://x", APIVersion: "latest"}); err == nil {
		t.Fatal("expected version error")
	}
}

func TestProfileName(t *testing.T) {
	clearDirectusEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))

	if name, _ := ProfileName(""); name != defaultProfile {
		t.Errorf("ProfileName = %q, want default", name)
	}
	t.Setenv(envProfile, "env")
	if name, _ := ProfileName(""); name != "env" {
		t.Errorf("ProfileName = %q, want env", name)
	}
	if name, _ := ProfileName("flag"); name != "flag" {
		t.Errorf("ProfileName = %q, want flag", name)
	}
}

func TestValidateAPIVersion(t *testing.T) {
	for _, v := range []string{"1", "1.1", "2.0.3"} {
		if err := ValidateAPIVersion(v); err != nil {
			t.Errorf("ValidateAPIVersion(%q) = %v", v, err)
		}
	}
	for _, v := range []string{"", "v1.1", "latest", "1.1-beta", "1.x"} {
		if err := ValidateAPIVersion(v); err == nil {
			t.Errorf("ValidateAPIVersion(%q) should fail", v)
		}
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("DIRECTUS_URL=https://dotenv.example.com\nDIRECTUS_TOKEN=abc\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(envURL, "")
	os.Unsetenv(envURL)
	t.Setenv(envToken, "kept")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv(envURL); got != "https://dotenv.example.com" {
		t.Errorf("DIRECTUS_URL = %q", got)
	}
	if got := os.Getenv(envToken); got != "kept" {
		t.Errorf("DIRECTUS_TOKEN = %q, want existing value kept", got)
	}

	if err := LoadEnvFile(""); err != nil {
		t.Errorf("empty path: %v", err)
	}
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
