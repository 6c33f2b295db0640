package cmd

import "testing"

func TestSessionsYesFlagIsBool(t *testing.T) {
	if err := sessionsCmd.Flags().Set("yes", "true"); err != nil {
		t.Fatalf("setting flag: %v", err)
	}
	t.Cleanup(func() { _ = sessionsCmd.Flags().Set("yes", "false") })

	yes, err := sessionsCmd.Flags().GetBool("yes")
	if err != nil {
		t.Fatalf("reading flag: %v", err)
	}
	if !yes {
		t.Fatal("expected the yes flag to parse as a bool")
	}
}
