package nsname

import (
	"strings"
	"testing"
)

func TestForTestClassProducesValidName(t *testing.T) {
	name, err := ForTestClass("com.example.MyIntegrationTest")
	if err != nil {
		t.Fatalf("ForTestClass: %v", err)
	}
	if !strings.HasPrefix(name, "testpods-") {
		t.Errorf("name %q missing prefix", name)
	}
	if len(name) > 63 {
		t.Errorf("name %q exceeds 63 chars", name)
	}
	if _, err := Fixed(name); err != nil {
		t.Errorf("generated name %q should itself be a valid Fixed name: %v", name, err)
	}
}

func TestForTestClassTruncatesLongNames(t *testing.T) {
	long := strings.Repeat("VeryLongClassNameSegment", 10)
	name, err := ForTestClass(long)
	if err != nil {
		t.Fatalf("ForTestClass: %v", err)
	}
	if len(name) != 63 {
		t.Errorf("expected truncation to exactly 63 chars, got %d (%q)", len(name), name)
	}
}

func TestForTestClassDistinctAcrossCalls(t *testing.T) {
	a, _ := ForTestClass("same")
	b, _ := ForTestClass("same")
	if a == b {
		t.Errorf("expected distinct names across calls, got %q twice", a)
	}
}

func TestFixedValid(t *testing.T) {
	name, err := Fixed("my-namespace")
	if err != nil || name != "my-namespace" {
		t.Fatalf("Fixed(valid) = %q, %v", name, err)
	}
}

func TestFixedInvalid(t *testing.T) {
	cases := []string{"", "UPPER", "-leading-dash", "trailing-dash-", "has_underscore", strings.Repeat("a", 64)}
	for _, c := range cases {
		if _, err := Fixed(c); err == nil {
			t.Errorf("Fixed(%q) should have failed", c)
		}
	}
}
