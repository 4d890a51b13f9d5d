package remote

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func TestIsDataURL(t *testing.T) {
	if !IsDataURL("data:image/png;base64,AAAA") {
		t.Error("data URL not recognized")
	}
	if IsDataURL("https://example.com/a.png") {
		t.Error("plain URL misclassified")
	}
	if IsDataURL("") {
		t.Error("empty string misclassified")
	}
}

func TestDecodeDataURL(t *testing.T) {
	raw := []byte{0x89, 0x50, 0x4e, 0x47}
	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	mime, data, err := DecodeDataURL(url)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q", mime)
	}
	if !bytes.Equal(data, raw) {
		t.Errorf("data = %v", data)
	}
}

func TestDecodeDataURL_DefaultMIME(t *testing.T) {
	url := "data:;base64," + base64.StdEncoding.EncodeToString([]byte("hi"))
	mime, _, err := DecodeDataURL(url)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if mime != "application/octet-stream" {
		t.Errorf("mime = %q", mime)
	}
}

func TestDecodeDataURL_Invalid(t *testing.T) {
	for _, bad := range []string{"https://x/y.png", "data:image/png;base64", "data:image/png;base64,@@@"} {
		if _, _, err := DecodeDataURL(bad); err == nil {
			t.Errorf("accepted invalid input %q", bad)
		}
	}
}
