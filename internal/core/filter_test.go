package core

import "testing"

func TestFilterIncludeExclude(t *testing.T) {
	f, err := NewFilter(`\.txt$`, `tmp`)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{"/a/b/file.txt", true},
		{"/a/tmp/file.txt", false},
		{"/a/b/file.log", false},
	}
	for _, tt := range tests {
		if got := f.Accept(tt.path); got != tt.want {
			t.Errorf("Accept(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFilterEmptyAcceptsAll(t *testing.T) {
	f, err := NewFilter("", "")
	if err != nil {
		t.Fatal(err)
	}
	if !f.Accept("/anything/at/all") {
		t.Error("empty filter should accept every path")
	}

	var zero Filter
	if !zero.Accept("/x") {
		t.Error("zero filter should accept every path")
	}
}

func TestFilterSearchesAnywhere(t *testing.T) {
	f, err := NewFilter("src", "")
	if err != nil {
		t.Fatal(err)
	}
	if !f.Accept("/home/me/src/main.go") {
		t.Error("pattern should match inside the path")
	}
}

func TestFilterLookaround(t *testing.T) {
	f, err := NewFilter(`\.go$`, `(?<!_test)\.go$`)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if f.Accept("/p/main.go") {
		t.Error("main.go should be excluded")
	}
	if !f.Accept("/p/main_test.go") {
		t.Error("main_test.go should pass")
	}
}

func TestFilterBadPattern(t *testing.T) {
	if _, err := NewFilter("(", ""); err == nil {
		t.Error("expected error for bad include pattern")
	}
	if _, err := NewFilter("", "[z-a]"); err == nil {
		t.Error("expected error for bad exclude pattern")
	}
}
