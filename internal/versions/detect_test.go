package versions

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		command string
		want    Manager
		ok      bool
	}{
		{"npm install react", NPM, true},
		{"npm i", NPM, true},
		{"yarn add lodash", Yarn, true},
		{"pnpm add zod", PNPM, true},
		{"bun install", Bun, true},
		{"pip install requests", Pip, true},
		{"uv pip install requests", Pip, true},
		{"yarn", "", false},
		{"npm run build", "", false},
		{"pip list", "", false},
		{"echo npm install", NPM, true},
	}
	for _, tt := range tests {
		got, ok := Detect(tt.command)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Detect(%q) = (%q, %v), want (%q, %v)", tt.command, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRegistry(t *testing.T) {
	for _, m := range []Manager{NPM, Yarn, PNPM, Bun} {
		if m.Registry() != RegistryNPM {
			t.Errorf("%s.Registry() = %q, want npm", m, m.Registry())
		}
	}
	if Pip.Registry() != RegistryPyPI {
		t.Errorf("pip.Registry() = %q, want pypi", Pip.Registry())
	}
}

func TestCommandPackages(t *testing.T) {
	tests := []struct {
		name    string
		command string
		manager Manager
		want    []string
	}{
		{"bare install", "npm install", NPM, nil},
		{"versions stripped", "npm i react@18 next@^14.1.0", NPM, []string{"react", "next"}},
		{"scoped package", "pnpm add @types/react@18.2.0 @tanstack/query", PNPM, []string{"@types/react", "@tanstack/query"}},
		{"flags dropped", "npm install --save-dev typescript -E", NPM, []string{"typescript"}},
		{"pip specifiers", "pip install requests==2.31.0 flask>=3 uvicorn[standard]", Pip, []string{"requests", "flask", "uvicorn"}},
		{"chain ends args", "yarn add zod && yarn build", Yarn, []string{"zod"}},
		{"lone at sign", "npm i @", NPM, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CommandPackages(tt.command, tt.manager)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("CommandPackages(%q) mismatch (-want +got):\n%s", tt.command, diff)
			}
		})
	}
}

func TestRequirementsFile(t *testing.T) {
	dir := t.TempDir()
	if got := RequirementsFile("pip install requests", dir); got != "" {
		t.Errorf("RequirementsFile without -r = %q, want empty", got)
	}
	if got, want := RequirementsFile("pip install -r reqs/dev.txt", dir), filepath.Join(dir, "reqs", "dev.txt"); got != want {
		t.Errorf("RequirementsFile relative = %q, want %q", got, want)
	}
	if got := RequirementsFile("pip install -r /abs/req.txt", dir); got != "/abs/req.txt" {
		t.Errorf("RequirementsFile absolute = %q, want /abs/req.txt", got)
	}
}

func TestMajor(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"14.0.0", 14, true},
		{"^14.2.0", 14, true},
		{"~3", 3, true},
		{">=2.31", 2, true},
		{"v1.2.3", 1, true},
		{"latest", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := Major(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Major(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
