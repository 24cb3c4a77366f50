package errors

import (
	"testing"
)

func TestParseRepoSlug(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{"valid", "DeepLabCut/DeepLabCut", "DeepLabCut", "DeepLabCut", false},
		{"dots and dashes", "epfl-lts2/pygsp.v2", "epfl-lts2", "pygsp.v2", false},
		{"trimmed", "  owner/repo ", "owner", "repo", false},

		{"no slash", "owner", "", "", true},
		{"empty owner", "/repo", "", "", true},
		{"empty repo", "owner/", "", "", true},
		{"nested", "owner/repo/extra", "", "", true},
		{"traversal", "../repo", "", "", true},
		{"space inside", "own er/repo", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseRepoSlug(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRepoSlug(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !Is(err, ErrCodeInvalidInput) {
					t.Errorf("error code = %v, want INVALID_INPUT", GetCode(err))
				}
				return
			}
			if owner != tt.wantOwner || repo != tt.wantRepo {
				t.Errorf("ParseRepoSlug(%q) = %q, %q", tt.input, owner, repo)
			}
		})
	}
}

func TestValidateDatabaseURI(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"neo4j", "neo4j://localhost:7687", false},
		{"neo4j+s", "neo4j+s://abc.databases.neo4j.io", false},
		{"bolt", "bolt://127.0.0.1:7687", false},

		{"empty", "", true},
		{"http", "http://localhost:7474", true},
		{"no host", "neo4j://", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseURI(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDatabaseURI(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidConfig) {
				t.Errorf("error code = %v, want INVALID_CONFIG", GetCode(err))
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://api.ossinsight.io", false},
		{"http://localhost:8080", false},
		{"", true},
		{"ftp://example.com", true},
	}
	for _, tt := range tests {
		if err := ValidateURL(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateFilterPattern(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"", false},
		{"epfl|sdsc", false},
		{"^deeplabcut$", false},
		{"(unclosed", true},
	}
	for _, tt := range tests {
		if err := ValidateFilterPattern(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateFilterPattern(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateFilePrefix(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"", false},
		{"epfl", false},
		{"run-2024_01", false},
		{"a/b", true},
		{`a\b`, true},
		{"..", true},
		{"bad\nname", true},
	}
	for _, tt := range tests {
		if err := ValidateFilePrefix(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateFilePrefix(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
