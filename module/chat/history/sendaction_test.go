package history_test

import (
	"testing"
	"time"

	"PHistory/module/chat/history"
)

func TestTypingComposition(t *testing.T) {
	m, _, _, _ := newTestManager(50)
	h := m.History("c1")

	h.RegisterSendAction("bob", history.SendActionTyping, 0)
	if got := h.SendActionString(); got != "bob is typing..." {
		t.Fatalf("status = %q", got)
	}
	h.RegisterSendAction("alice", history.SendActionTyping, 0)
	if got := h.SendActionString(); got != "alice and bob are typing..." {
		t.Fatalf("status = %q", got)
	}
	h.RegisterSendAction("carol", history.SendActionTyping, 0)
	if got := h.SendActionString(); got != "3 members are typing..." {
		t.Fatalf("status = %q", got)
	}
}

func TestUploadActionStatus(t *testing.T) {
	m, _, _, _ := newTestManager(50)
	h := m.History("c1")

	h.RegisterSendAction("bob", history.SendActionUploadPhoto, 40)
	if got := h.SendActionString(); got != "bob is sending a photo..." {
		t.Fatalf("status = %q", got)
	}
	h.RegisterSendAction("bob", history.SendActionCancel, 0)
	if got := h.SendActionString(); got != "" {
		t.Fatalf("status after cancel = %q", got)
	}
}

func TestSweepExpiresActions(t *testing.T) {
	m, _, _, _ := newTestManager(50)
	h := m.History("c1")
	base := time.Unix(1700000000, 0)
	m.Now = func() time.Time { return base }

	h.RegisterSendAction("bob", history.SendActionTyping, 0)
	h.RegisterSendAction("alice", history.SendActionPlayGame, 0)

	// Typing expires at 6s, the game action survives until 10s.
	if active := h.SweepSendActions(base.UnixMilli() + 6001); !active {
		t.Fatal("game action should still be active")
	}
	if got := h.SendActionString(); got != "alice is playing a game..." {
		t.Fatalf("status = %q", got)
	}
	if active := h.SweepSendActions(base.UnixMilli() + 10001); active {
		t.Fatal("everything should have expired")
	}
	if got := h.SendActionString(); got != "" {
		t.Fatalf("status = %q", got)
	}
}

func TestMessageClearsAuthorAction(t *testing.T) {
	m, _, _, _ := newTestManager(50)
	h := m.History("c1")
	h.AddNewerSlice(nil)

	h.RegisterSendAction("u1", history.SendActionTyping, 0)
	m.IngestPush(unreadMsg("c1", 1), true) // From u1
	if got := h.SendActionString(); got != "" {
		t.Fatalf("status = %q, author's message should clear it", got)
	}
}

func TestOwnActionHalfTTL(t *testing.T) {
	m, _, _, _ := newTestManager(50)
	h := m.History("c1")
	now := time.Unix(1700000000, 0)
	m.Now = func() time.Time { return now }

	if !h.UpdateOwnSendAction(history.SendActionTyping) {
		t.Fatal("first announcement must push")
	}
	now = now.Add(3 * time.Second)
	if h.UpdateOwnSendAction(history.SendActionTyping) {
		t.Fatal("inside the first half of the TTL a repeat is suppressed")
	}
	now = now.Add(3 * time.Second)
	if !h.UpdateOwnSendAction(history.SendActionTyping) {
		t.Fatal("past the half TTL the announcement refreshes")
	}
	if !h.UpdateOwnSendAction(history.SendActionCancel) {
		t.Fatal("cancel of an active announcement must push")
	}
	if h.UpdateOwnSendAction(history.SendActionCancel) {
		t.Fatal("cancel with nothing active is a no-op")
	}
}
