package mail

import (
	"bytes"
	"strings"
	"testing"
)

func TestBuild(t *testing.T) {
	gm, err := build("shop@example.com", Message{
		To:      "owner@example.com",
		Subject: "New order",
		HTML:    "<p>hello</p>",
		Text:    "hello",
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var buf bytes.Buffer
	if _, err := gm.WriteTo(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw := buf.String()
	for _, want := range []string{"Subject: New order", "owner@example.com", "shop@example.com", "text/html"} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestBuildRejectsBadAddress(t *testing.T) {
	if _, err := build("not an address", Message{To: "owner@example.com"}); err == nil {
		t.Fatal("bad from accepted")
	}
	if _, err := build("shop@example.com", Message{To: ""}); err == nil {
		t.Fatal("empty to accepted")
	}
}
