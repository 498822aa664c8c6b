package configparser

import (
	"os"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "ts10cfg")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	if _, err := f.WriteString(contents); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	f.Close()
	return f.Name()
}

func TestLoadConfigDispatchesRegisteredModel(t *testing.T) {
	var gotAddr uint32
	var gotOpts []Option
	RegisterModel("TESTDEV", func(addr uint32, opts []Option) error {
		gotAddr = addr
		gotOpts = opts
		return nil
	})

	path := writeConfig(t, "# a comment\n\ntestdev 0760010 vector=0300 level=4\n")
	if err := LoadConfigFile(path); err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if gotAddr != 0760010 {
		t.Errorf("addr = %#o, want 0760010", gotAddr)
	}
	vector, ok := Lookup(gotOpts, "vector")
	if !ok || vector != "0300" {
		t.Errorf("vector option = %q ok=%v, want 0300/true", vector, ok)
	}
}

func TestLoadConfigUnknownModelErrors(t *testing.T) {
	path := writeConfig(t, "nosuchmodel 100\n")
	if err := LoadConfigFile(path); err == nil {
		t.Errorf("expected an error for an unregistered model")
	}
}

func TestUintHelperParsesOctalAndHex(t *testing.T) {
	opts := []Option{{Key: "VECTOR", Value: "0300"}, {Key: "ADDR", Value: "0x760010"}}

	vector, ok, err := Uint(opts, "vector", 16)
	if err != nil || !ok || vector != 0300 {
		t.Errorf("vector = %d ok=%v err=%v, want 0300/true/nil", vector, ok, err)
	}

	addr, ok, err := Uint(opts, "addr", 32)
	if err != nil || !ok || addr != 0x760010 {
		t.Errorf("addr = %#x ok=%v err=%v, want 0x760010/true/nil", addr, ok, err)
	}

	_, ok, err = Uint(opts, "missing", 16)
	if ok || err != nil {
		t.Errorf("missing option: ok=%v err=%v, want false/nil", ok, err)
	}
}

func TestModelLineWithNoLeadingAddress(t *testing.T) {
	gotAddr := uint32(0xffffffff)
	RegisterModel("CPU", func(addr uint32, opts []Option) error {
		gotAddr = addr
		arch, _ := Lookup(opts, "arch")
		if arch != "vax" {
			t.Errorf("arch option = %q, want vax", arch)
		}
		return nil
	})

	path := writeConfig(t, "cpu arch=vax\n")
	if err := LoadConfigFile(path); err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if gotAddr != 0 {
		t.Errorf("addr = %d, want 0 (no leading address field)", gotAddr)
	}
}
