package navigate

import (
	"testing"

	"github.com/stlalpha/robotd/internal/protocol"
)

func TestSearch_VisitsAllTwentyFiveCells(t *testing.T) {
	r := &simRobot{pos: DestinationEntry, heading: South, messages: make([]string, 25)}
	s := &Sweeper{Read: r.read, Send: r.send}

	found, err := s.Search(r.pos, r.heading)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if found != "" {
		t.Errorf("found = %q, want empty when no cell carries a message", found)
	}
	if r.messageIdx != 25 {
		t.Errorf("polled %d cells, want 25", r.messageIdx)
	}
}

// TestSearch_StopsAtFirstMessage mirrors the worked example: scanning from
// the entry corner (-2,2) facing East, row 0 runs east across y=2, then
// the serpentine drops to y=1 and scans back toward
// negative x, reaching (0,1) as the third cell of the second row.
func TestSearch_StopsAtFirstMessage(t *testing.T) {
	messages := make([]string, 25)
	messages[7] = "the secret is hidden in the attic"
	r := &simRobot{pos: DestinationEntry, heading: South, messages: messages}
	s := &Sweeper{Read: r.read, Send: r.send}

	found, err := s.Search(r.pos, r.heading)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if found != messages[7] {
		t.Errorf("found = %q, want %q", found, messages[7])
	}
	if r.messageIdx != 8 {
		t.Errorf("polled %d cells before stopping, want 8", r.messageIdx)
	}
	if r.lastCmd != protocol.CmdLogout {
		t.Errorf("last command sent = %q, want LOGOUT", r.lastCmd)
	}
}

// TestSearch_BlockedMoveRetriesWithoutSkippingACell verifies a single
// blocked inter-cell MOVE is retried rather than treated as having
// advanced to the next cell, so the sweep still visits all 25 cells.
func TestSearch_BlockedMoveRetriesWithoutSkippingACell(t *testing.T) {
	r := &simRobot{pos: DestinationEntry, heading: East, messages: make([]string, 25), blockedMove: true}
	s := &Sweeper{Read: r.read, Send: r.send}

	found, err := s.Search(r.pos, r.heading)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if found != "" {
		t.Errorf("found = %q, want empty when no cell carries a message", found)
	}
	if r.messageIdx != 25 {
		t.Errorf("polled %d cells, want 25 (a blocked move must not skip a cell)", r.messageIdx)
	}
}

// TestSearch_ExhaustiveSweepEndsWhereExpected pins down the exact final
// position after a full miss, including the extra row-transition move past
// the last row, as a regression check on the serpentine path itself.
func TestSearch_ExhaustiveSweepEndsWhereExpected(t *testing.T) {
	r := &simRobot{pos: DestinationEntry, heading: South, messages: make([]string, 25)}
	s := &Sweeper{Read: r.read, Send: r.send}

	if _, err := s.Search(r.pos, r.heading); err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := protocol.Position{X: 2, Y: -3}
	if r.pos != want {
		t.Errorf("final position = %v, want %v", r.pos, want)
	}
}
