package checksum

import "testing"

func TestSumStable(t *testing.T) {
	a := Sum([]byte(`{"a@x.com":"hello"}`))
	b := Sum([]byte(`{"a@x.com":"hello"}`))
	if a != b {
		t.Fatalf("sum not stable: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("len = %d, want 64", len(a))
	}
}

func TestChanged(t *testing.T) {
	data := []byte("{}")
	if Changed(Sum(data), data) {
		t.Error("identical content reported as changed")
	}
	if !Changed(Sum(data), []byte(`{"x":"y"}`)) {
		t.Error("different content reported as unchanged")
	}
	if !Changed("", data) {
		t.Error("empty fingerprint should count as changed")
	}
}
