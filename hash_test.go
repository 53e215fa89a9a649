package dict

import (
	"strings"
	"testing"
)

func TestHashFunctionSeed(t *testing.T) {
	old := HashFunctionSeed()
	t.Cleanup(func() { SetHashFunctionSeed(old) })

	SetHashFunctionSeed(1)
	if HashFunctionSeed() != 1 {
		t.Fatalf("HashFunctionSeed() = %d", HashFunctionSeed())
	}
	h1 := GenHashFunction([]byte("hello"))
	if h1 != GenHashFunction([]byte("hello")) {
		t.Fatalf("hash is not deterministic")
	}
	if h1 != GenStringHash("hello") {
		t.Fatalf("GenStringHash disagrees with GenHashFunction")
	}

	SetHashFunctionSeed(2)
	if GenHashFunction([]byte("hello")) == h1 {
		t.Fatalf("seed does not affect the hash")
	}
}

func TestGenCaseHashFunction(t *testing.T) {
	long := strings.Repeat("MiXeD-CaSe/", 20)
	for _, s := range []string{"", "KEY", "Hello, World", long} {
		lower := strings.ToLower(s)
		if GenCaseHashFunction([]byte(s)) != GenCaseHashFunction([]byte(lower)) {
			t.Fatalf("case hash differs for %q", s)
		}
		if GenCaseHashFunction([]byte(lower)) != GenStringHash(lower) {
			t.Fatalf("case hash of lower case %q differs from GenStringHash", lower)
		}
	}
	if GenCaseHashFunction([]byte("a")) == GenCaseHashFunction([]byte("b")) {
		t.Fatalf("unexpected collision")
	}
}

func TestCaseStringType(t *testing.T) {
	d := New(CaseStringType[int](), nil)
	if err := d.Add("Key", 1); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"Key", "KEY", "key", "kEy"} {
		e := d.Find(k)
		if e == nil || e.Val() != 1 {
			t.Fatalf("Find(%q) = %v", k, e)
		}
	}
	if err := d.Add("KEY", 2); err == nil {
		t.Fatalf("Add(KEY) succeeded next to Key")
	}
	if d.Find("keys") != nil {
		t.Fatalf("Find(keys) matched")
	}
	if err := d.Delete("kEY"); err != nil {
		t.Fatalf("Delete(kEY) = %v", err)
	}
	if d.Size() != 0 {
		t.Fatalf("Size() = %d", d.Size())
	}
}

func TestEqualFoldASCII(t *testing.T) {
	for _, tc := range []struct {
		a, b string
		want bool
	}{
		{"", "", true},
		{"abc", "ABC", true},
		{"abc", "abd", false},
		{"abc", "ab", false},
		{"[", "{", false},
	} {
		if got := equalFoldASCII(tc.a, tc.b); got != tc.want {
			t.Fatalf("equalFoldASCII(%q, %q) = %v", tc.a, tc.b, got)
		}
	}
}
