package storage

import (
	"strings"
	"testing"
	"time"
)

func TestObjectKey(t *testing.T) {
	now := time.Unix(1709640000, 123)
	key := ObjectKey("A-104", now)
	if !strings.HasPrefix(key, "images/A-104_") {
		t.Errorf("key = %q, want images/A-104_ prefix", key)
	}
	if !strings.HasSuffix(key, ".jpg") {
		t.Errorf("key = %q, want .jpg suffix", key)
	}
	if key == ObjectKey("A-104", now.Add(time.Nanosecond)) {
		t.Error("keys for distinct instants must differ")
	}
}

func TestKeyFromURL(t *testing.T) {
	s := &ImageStore{bucket: "taller-images"}

	key, ok := s.keyFromURL("https://storage.googleapis.com/taller-images/images/A-104_17.jpg")
	if !ok || key != "images/A-104_17.jpg" {
		t.Errorf("keyFromURL = (%q, %v)", key, ok)
	}

	if _, ok := s.keyFromURL("https://storage.googleapis.com/other-bucket/images/x.jpg"); ok {
		t.Error("foreign bucket URL accepted")
	}
	if _, ok := s.keyFromURL("not a url"); ok {
		t.Error("garbage URL accepted")
	}
}

func TestURLRoundTrip(t *testing.T) {
	s := &ImageStore{bucket: "taller-images"}
	key := ObjectKey("B-7", time.Now())
	gotKey, ok := s.keyFromURL(s.URL(key))
	if !ok || gotKey != key {
		t.Errorf("round trip = (%q, %v), want %q", gotKey, ok, key)
	}
}
