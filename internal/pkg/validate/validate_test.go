package validate

import "testing"

func TestRequired(t *testing.T) {
	if Required("") || Required("   ") {
		t.Fatal("blank values must not pass")
	}
	if !Required("hello") {
		t.Fatal("non-blank value must pass")
	}
}

func TestPhone(t *testing.T) {
	valid := []string{"01012345678", "0101234567"}
	for _, v := range valid {
		if !Phone(v) {
			t.Fatalf("expected %q to be valid", v)
		}
	}

	invalid := []string{"", "010-1234-5678", "0212345678", "010123456789", "010abc5678"}
	for _, v := range invalid {
		if Phone(v) {
			t.Fatalf("expected %q to be invalid", v)
		}
	}
}
