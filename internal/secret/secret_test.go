package secret

import "testing"

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	if v, err := s.Get("missing"); err != nil || len(v) != 0 {
		t.Fatalf("missing key: %q %v", v, err)
	}

	buf := []byte("hunter2")
	if err := s.Set(ExportPasswordKey("t1"), buf); err != nil {
		t.Fatal(err)
	}
	buf[0] = 'X'

	v, err := s.Get("export:t1")
	if err != nil || string(v) != "hunter2" {
		t.Fatalf("get = %q %v", v, err)
	}

	s.Delete("export:t1")
	if v, _ := s.Get("export:t1"); len(v) != 0 {
		t.Errorf("after delete: %q", v)
	}
}

func TestKeychainStore_MissingCommand(t *testing.T) {
	k := &KeychainStore{command: "definitely-not-a-keychain-binary"}
	if k.Available() {
		t.Error("store with a missing command must not be available")
	}
	if err := k.Set("a", []byte("b")); err == nil {
		t.Error("expected error from missing command")
	}
}
