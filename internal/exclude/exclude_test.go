package exclude

import (
	"strings"
	"testing"

	"github.com/CageChen/hideme/internal/fs"
)

func listing(names ...string) []fs.DirEntry {
	entries := make([]fs.DirEntry, len(names))
	for i, name := range names {
		isDir := strings.HasSuffix(name, "/")
		entries[i] = fs.DirEntry{Name: strings.TrimSuffix(name, "/"), IsDir: isDir}
	}
	return entries
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"", ModePattern, false},
		{"pattern", ModePattern, false},
		{"Literal", ModeLiteral, false},
		{" gitignore ", ModeGitignore, false},
		{"regex", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBuildPatternMode(t *testing.T) {
	entries := []string{"foo.log", "bar", "baz.*"}
	dir := listing("foo.log", "bar/", "baz.txt", "qux")

	got, err := Build(ModePattern, entries, dir)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := Set{"foo.log": true, "bar": true, "baz.txt": true}
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if _, ok := got["qux"]; ok {
		t.Error("expected qux to be absent")
	}
}

func TestBuildPatternModeFullMatchOnly(t *testing.T) {
	dir := listing("foobar", "barfoo", "foo", "xfoox")

	got, err := Build(ModePattern, []string{"foo"}, dir)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !got.Equal(Set{"foo": true}) {
		t.Errorf("expected only the exact match, got %v", got)
	}
}

func TestBuildPatternModeAlternation(t *testing.T) {
	dir := listing("dist", "build", "xdist", "buildx")

	got, err := Build(ModePattern, []string{"dist|build"}, dir)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !got.Equal(Set{"dist": true, "build": true}) {
		t.Errorf("alternation must be anchored as a whole, got %v", got)
	}
}

func TestBuildPatternModeMalformed(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		bad     string
	}{
		{"unclosed group", []string{"ok", "bad("}, "bad("},
		{"group escaping the anchors", []string{"a)|(b"}, "a)|(b"},
		{"stray close paren", []string{"x)"}, "x)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Build(ModePattern, tt.entries, listing("ok", "axyz", "zzb", "x", "qux"))
			if err == nil {
				t.Fatalf("expected error for malformed pattern, got set %v", set)
			}
			if !strings.Contains(err.Error(), tt.bad) {
				t.Errorf("expected error to name the pattern %q, got %v", tt.bad, err)
			}
		})
	}
}

func TestBuildLiteralMode(t *testing.T) {
	entries := []string{"foo.log", "bar", "baz.*"}

	got, err := Build(ModeLiteral, entries, listing("qux"))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := Set{"foo.log": true, "bar": true, "baz.*": true}
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestBuildLiteralModeIgnoresListing(t *testing.T) {
	r, err := Compile(ModeLiteral, []string{"a(", "b"})
	if err != nil {
		t.Fatalf("literal mode must not compile entries: %v", err)
	}
	if r.NeedsListing() {
		t.Error("literal mode should not need a listing")
	}
	if got := r.Build(nil); !got.Equal(Set{"a(": true, "b": true}) {
		t.Errorf("got %v", got)
	}
}

func TestBuildGitignoreMode(t *testing.T) {
	entries := []string{"*.log", "build/", "!keep.log"}
	dir := listing("a.log", "keep.log", "build/", "main.go")

	got, err := Build(ModeGitignore, entries, dir)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := Set{"a.log": true, "build": true}
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestBuildIsFreshEachTime(t *testing.T) {
	dir := listing("old", "new")

	first, err := Build(ModePattern, []string{"old"}, dir)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Build(ModePattern, []string{"new"}, dir)
	if err != nil {
		t.Fatal(err)
	}

	if !first.Equal(Set{"old": true}) {
		t.Errorf("first = %v", first)
	}
	if _, ok := second["old"]; ok {
		t.Error("entries dropped from the list must not survive a rebuild")
	}
}

func TestApply(t *testing.T) {
	fsys := &fs.MapFS{RootPath: "/ws", Files: map[string]string{
		"node_modules/x/index.js": "",
		"src/main.go":             "",
		"debug.log":               "",
	}}

	r, err := Compile(ModePattern, []string{"node_modules", ".*\\.log"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.Apply(fsys)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := Set{"node_modules": true, "debug.log": true}
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSetNames(t *testing.T) {
	s := Set{"b": true, "a": true, "c": false}
	got := s.Names()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Names() = %v", got)
	}
}
