package landmark

import (
	"testing"
	"time"
)

func TestHand_Wrist(t *testing.T) {
	h := Hand{Points: []Point{{X: 0.3, Y: 0.7}, {X: 0.4, Y: 0.6}}}
	p, ok := h.Wrist()
	if !ok {
		t.Fatal("expected wrist point")
	}
	if p.X != 0.3 || p.Y != 0.7 {
		t.Errorf("wrist = %+v, want index 0 point", p)
	}

	empty := Hand{}
	if _, ok := empty.Wrist(); ok {
		t.Error("hand without points should report no wrist")
	}
}

func TestSelectBest(t *testing.T) {
	if SelectBest(nil) != nil {
		t.Error("no hands should select nil")
	}

	hands := []Hand{
		{Score: 0.6},
		{Score: 0.9},
		{Score: 0.7},
	}
	best := SelectBest(hands)
	if best == nil || best.Score != 0.9 {
		t.Errorf("SelectBest picked %+v, want score 0.9", best)
	}
}

func TestMockDetector_ReplaysScript(t *testing.T) {
	now := time.Now()
	det := NewMockDetector(
		HandAt(0.1, 0.1, now),
		nil, // hand lost
		HandAt(0.2, 0.2, now.Add(100*time.Millisecond)),
	)

	first, err := det.Detect(nil)
	if err != nil || len(first) != 1 {
		t.Fatalf("first Detect = %v hands, err %v", len(first), err)
	}

	second, err := det.Detect(nil)
	if err != nil || second != nil {
		t.Fatalf("second Detect should report no hand, got %v, err %v", second, err)
	}

	// The final entry repeats forever.
	for i := 0; i < 3; i++ {
		hands, err := det.Detect(nil)
		if err != nil || len(hands) != 1 {
			t.Fatalf("replay %d = %v hands, err %v", i, len(hands), err)
		}
		if w, _ := hands[0].Wrist(); w.X != 0.2 {
			t.Errorf("replay %d wrist.X = %v, want 0.2", i, w.X)
		}
	}

	if det.Calls() != 5 {
		t.Errorf("Calls = %d, want 5", det.Calls())
	}

	det.Close()
	if _, err := det.Detect(nil); err != ErrDetectorClosed {
		t.Errorf("Detect after Close = %v, want ErrDetectorClosed", err)
	}
}
