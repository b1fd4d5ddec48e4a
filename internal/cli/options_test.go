package cli

import "testing"

func TestParseDefaults(t *testing.T) {
	opts, err := Parse(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.ConfigPath != "config/config.yaml" {
		t.Fatalf("default config path %q", opts.ConfigPath)
	}
	if opts.Port != 0 {
		t.Fatalf("default port %d, want 0", opts.Port)
	}
}

func TestParseOverrides(t *testing.T) {
	opts, err := Parse([]string{"--config=/etc/fleetdesk.yaml", "--port=3100"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.ConfigPath != "/etc/fleetdesk.yaml" {
		t.Fatalf("config path %q", opts.ConfigPath)
	}
	if opts.Port != 3100 {
		t.Fatalf("port %d, want 3100", opts.Port)
	}
}

func TestParseRejectsBadPort(t *testing.T) {
	if _, err := Parse([]string{"--port=70000"}); err == nil {
		t.Fatalf("port 70000 accepted")
	}
}
