package main

import (
	"testing"

	"github.com/SpiceLabsHQ/Reaper-sub007/internal/disposition"
)

func TestCleanupIntent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		deleteSet    bool
		keepBranch   bool
		deleteBranch string
		want         disposition.Intent
		wantErr      bool
	}{
		{"no flags", false, false, "", disposition.IntentNone, false},
		{"keep", false, true, "", disposition.IntentKeep, false},
		{"delete default", true, false, "local", disposition.IntentDeleteLocal, false},
		{"delete remote", true, false, "remote", disposition.IntentDeleteLocalAndRemote, false},
		{"delete bogus", true, false, "everything", disposition.IntentNone, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := cleanupIntent(tt.deleteSet, tt.keepBranch, tt.deleteBranch)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("intent = %v, want %v", got, tt.want)
			}
		})
	}
}
