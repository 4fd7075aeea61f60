package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	yaml "gopkg.in/yaml.v3"
)

func TestSecretString_MarshalYAML(t *testing.T) {
	tests := []struct {
		name  string
		input SecretString
		want  any
	}{
		{name: "empty string", input: "", want: nil},
		{name: "bearer token", input: "Bearer abc123", want: SecretStringValue},
		{name: "short string", input: "a", want: SecretStringValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.input.MarshalYAML()
			if err != nil {
				t.Fatalf("MarshalYAML() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("MarshalYAML() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSecretString_YAML_Integration(t *testing.T) {
	type source struct {
		UserAgent     string       `yaml:"user_agent"`
		Authorization SecretString `yaml:"authorization"`
	}

	tests := []struct {
		name     string
		input    source
		wantYAML string
	}{
		{
			name:     "secret set",
			input:    source{UserAgent: "test", Authorization: "Basic dXNlcjpwYXNz"},
			wantYAML: "user_agent: test\nauthorization: <secret>\n",
		},
		{
			name:     "secret empty",
			input:    source{UserAgent: "test"},
			wantYAML: "user_agent: test\nauthorization: null\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := yaml.Marshal(tt.input)
			if err != nil {
				t.Fatalf("yaml.Marshal() error = %v", err)
			}
			if string(got) != tt.wantYAML {
				t.Errorf("yaml.Marshal() = %s, want %s", got, tt.wantYAML)
			}
			if len(tt.input.Authorization) > 0 && strings.Contains(string(got), string(tt.input.Authorization)) {
				t.Error("Marshaled YAML contains actual secret")
			}
		})
	}
}

func TestSecretString_NoLeakage(t *testing.T) {
	secret := SecretString("Bearer super-secret-token")

	data, err := json.Marshal(secret)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "super-secret") {
		t.Error("Secret leaked in JSON marshaling")
	}

	if s := fmt.Sprintf("%v %s", secret, secret); strings.Contains(s, "super-secret") {
		t.Errorf("Secret leaked in formatted output: %s", s)
	}

	// conversion keeps actual value available to the code
	if string(secret) != "Bearer super-secret-token" {
		t.Errorf("string(secret) = %s", string(secret))
	}
}

func TestSecretString_EmptyString(t *testing.T) {
	var empty SecretString

	data, err := json.Marshal(empty)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if string(data) != "null" {
		t.Errorf("Expected 'null' for empty SecretString, got %v", string(data))
	}
	if empty.String() != "" {
		t.Errorf("String() = %q, want empty", empty.String())
	}
}
