package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	t.Setenv("PB_TEST_DUR", "750ms")
	if got := Duration("PB_TEST_DUR", time.Second); got != 750*time.Millisecond {
		t.Fatalf("got %v", got)
	}
	t.Setenv("PB_TEST_DUR", "250")
	if got := Duration("PB_TEST_DUR", time.Second); got != 250*time.Millisecond {
		t.Fatalf("bare int should be ms, got %v", got)
	}
	t.Setenv("PB_TEST_DUR", "soon")
	if got := Duration("PB_TEST_DUR", time.Second); got != time.Second {
		t.Fatalf("bad value should fall back, got %v", got)
	}
}

func TestIntBoolString(t *testing.T) {
	t.Setenv("PB_TEST_INT", "x")
	if got := Int("PB_TEST_INT", 4); got != 4 {
		t.Fatalf("got %d", got)
	}
	t.Setenv("PB_TEST_BOOL", "on")
	if !Bool("PB_TEST_BOOL", false) {
		t.Fatalf("expected true")
	}
	if got := String("PB_TEST_UNSET_STRING", "dflt"); got != "dflt" {
		t.Fatalf("got %q", got)
	}
}
