package links

import "testing"

func TestIsSocialLink(t *testing.T) {
	e := Default()
	cases := []struct {
		name string
		text string
		want bool
	}{
		{"full status url", "https://x.com/alice/status/123", true},
		{"bare profile", "x.com/alice", true},
		{"twitter host", "check https://twitter.com/bob/status/9", true},
		{"www prefix", "www.x.com/alice/status/1", true},
		{"uppercase host", "HTTPS://X.COM/alice/status/1", true},
		{"embedded in sentence", "my post: x.com/alice/status/5 please engage", true},
		{"plain chat", "good morning everyone", false},
		{"other host", "https://example.com/x.com/status/1", true}, // host match is substring-based, same as the loose policy
		{"no path", "x.com", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := e.IsSocialLink(tc.text); got != tc.want {
				t.Errorf("IsSocialLink(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestExtractHandle(t *testing.T) {
	e := Default()
	cases := []struct {
		name   string
		text   string
		handle string
		ok     bool
	}{
		{"status link", "https://x.com/alice/status/123", "alice", true},
		{"no scheme", "x.com/Bob_1/status/456789", "Bob_1", true},
		{"twitter host", "https://twitter.com/carol/status/1?s=20", "carol", true},
		{"bare profile is too loose", "https://x.com/alice", "", false},
		{"profile without status id", "x.com/alice/with_replies", "", false},
		{"plain text", "all done", "", false},
		{"first match wins", "x.com/first/status/1 x.com/second/status/2", "first", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, ok := e.ExtractHandle(tc.text)
			if ok != tc.ok || h != tc.handle {
				t.Errorf("ExtractHandle(%q) = (%q, %v), want (%q, %v)", tc.text, h, ok, tc.handle, tc.ok)
			}
		})
	}
}

func TestCustomHosts(t *testing.T) {
	e := New([]string{"Example.ORG"})
	if !e.IsSocialLink("https://example.org/alice/status/1") {
		t.Errorf("custom host should qualify")
	}
	if e.IsSocialLink("https://x.com/alice/status/1") {
		t.Errorf("stock host should not qualify for custom extractor")
	}
	if h, ok := e.ExtractHandle("example.org/alice/status/1"); !ok || h != "alice" {
		t.Errorf("ExtractHandle = (%q, %v), want (alice, true)", h, ok)
	}
}
