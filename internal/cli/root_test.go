package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommand_Help(t *testing.T) {
	out, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out == "" {
		t.Fatal("expected help output, got empty string")
	}
	for _, want := range []string{"simlist", "Reports:", "generate", "stats", "detector"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected help to contain %q", want)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	SetVersion("1.2.3")

	for _, args := range [][]string{{"--version"}, {"-v"}, {"version"}} {
		out, err := runCLI(t, args...)
		if err != nil {
			t.Fatalf("Execute(%v) error = %v", args, err)
		}
		if !strings.Contains(out, "1.2.3") {
			t.Errorf("Execute(%v): expected version output to contain 1.2.3, got %q", args, out)
		}
	}
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"invalid-command"})
	var buf bytes.Buffer
	cmd.SetErr(&buf)

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for invalid command")
	}
}

func TestNewRootCmd_FreshState(t *testing.T) {
	first := newRootCmd()
	first.SetArgs([]string{"detector", "--json", "-t", "1,2", "-P", "/elsewhere", "0"})
	first.SetOut(&bytes.Buffer{})
	if err := first.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	second := newRootCmd()
	for name, want := range map[string]string{
		"json":   "false",
		"tracts": "[3636,3637,3638,3639,3830,3831,3832,4028,4029,4030,4229,4230,4231,4232]",
		"prefix": first.PersistentFlags().Lookup("prefix").DefValue,
	} {
		if got := second.PersistentFlags().Lookup(name).Value.String(); got != want {
			t.Errorf("flag %s = %q on a new tree, want %q", name, got, want)
		}
	}
}

func TestSetVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{"normal version", "1.2.3"},
		{"empty version", ""}, // Should not change if empty
		{"dev version", "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := version
			SetVersion(tt.version)
			want := tt.version
			if want == "" {
				want = before
			}
			if got := newRootCmd().Version; got != want {
				t.Errorf("SetVersion(%q) = %q, want %q", tt.version, got, want)
			}
		})
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	rootCmd := newRootCmd()
	for _, name := range []string{"generate", "stats", "detector", "version", "completion"} {
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := rootCmd.Find([]string{name})
			if err != nil {
				t.Errorf("Find(%q) error = %v", name, err)
			}
			if subCmd == nil || subCmd.Name() != name {
				t.Errorf("Find(%q) returned %v", name, subCmd)
			}
		})
	}
}
