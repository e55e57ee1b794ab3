package db

import "testing"

func TestSetBuilderEmpty(t *testing.T) {
	var b setBuilder
	if !b.empty() {
		t.Error("fresh builder should be empty")
	}
	if b.clause() != "" {
		t.Errorf("clause() = %q, want empty", b.clause())
	}
}

func TestSetBuilderSingleAssignment(t *testing.T) {
	var b setBuilder
	b.set("privileges", 3)

	if b.empty() {
		t.Error("builder with one assignment should not be empty")
	}
	if got, want := b.clause(), "privileges = $1"; got != want {
		t.Errorf("clause() = %q, want %q", got, want)
	}
	if len(b.args) != 1 || b.args[0] != 3 {
		t.Errorf("args = %v, want [3]", b.args)
	}
}

func TestSetBuilderPlaceholderNumbering(t *testing.T) {
	var b setBuilder
	b.set("ping_time", int64(100))
	b.set("mode", 3)
	b.set("relax", true)

	if got, want := b.clause(), "ping_time = $1, mode = $2, relax = $3"; got != want {
		t.Errorf("clause() = %q, want %q", got, want)
	}

	// The WHERE argument continues the numbering after the assignments.
	if n := b.arg("some-token"); n != 4 {
		t.Errorf("arg() = %d, want 4", n)
	}
	if len(b.args) != 4 {
		t.Errorf("len(args) = %d, want 4", len(b.args))
	}
}
