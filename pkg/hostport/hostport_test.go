package hostport

import "testing"

func TestNewRejectsBadInput(t *testing.T) {
	t.Run("empty host", func(t *testing.T) {
		if _, err := New("", 80); err == nil {
			t.Fatal("expected error for empty host")
		}
	})
	t.Run("port out of range", func(t *testing.T) {
		if _, err := New("localhost", 70000); err == nil {
			t.Fatal("expected error for out-of-range port")
		}
	})
}

func TestStringAndURL(t *testing.T) {
	hp, err := New("127.0.0.1", 5432)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got, want := hp.String(), "127.0.0.1:5432"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := hp.URL("postgres"), "postgres://127.0.0.1:5432"; got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}

func TestParseRoundTrip(t *testing.T) {
	hp, err := Parse("db.testpods.svc:6379")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if hp.Host() != "db.testpods.svc" || hp.Port() != 6379 {
		t.Errorf("Parse() = %+v", hp)
	}
}

func TestZeroValue(t *testing.T) {
	var hp HostAndPort
	if !hp.IsZero() {
		t.Error("zero value should report IsZero")
	}
}
