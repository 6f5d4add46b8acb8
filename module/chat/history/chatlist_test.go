package history_test

import (
	"testing"

	chatmodel "PHistory/module/chat/model"
)

func TestProjectionSkipsMigrationBoundary(t *testing.T) {
	m, _, _, reg := newTestManager(50)
	m.UpsertPeer(chatmodel.Peer{ID: "g1", Kind: chatmodel.PeerGroup})
	h := m.History("g1")
	h.AddNewerSlice(nil)

	m.IngestPush(textMsg("g1", 1), false)
	m.IngestPush(serviceMsg("g1", 2, chatmodel.ActionMigrateTo), false)

	item, known := h.ChatListMessage()
	if !known || item == nil || item.ID != 1 {
		t.Fatalf("projection = (%v, %v), want id 1", item, known)
	}
	if reg.Item("g1", 2) == nil {
		t.Fatal("boundary event itself must stay loaded")
	}
}

func TestProjectionUnknownWithoutTail(t *testing.T) {
	m, req, _, _ := newTestManager(50)
	m.UpsertPeer(chatmodel.Peer{ID: "g2", Kind: chatmodel.PeerGroup})
	h := m.History("g2")

	// Bottom edge unknown: the boundary event is only tracked, so there is
	// nothing local to walk back over.
	m.IngestPush(serviceMsg("g2", 9, chatmodel.ActionMigrateTo), false)

	if _, known := h.ChatListMessage(); known {
		t.Fatal("projection should be unknown")
	}
	if len(req.chatList) == 0 {
		t.Fatal("unknown projection must trigger a remote fetch")
	}

	m.ApplyChatListMessage("g2", &chatmodel.RawMessage{
		ConversationID: "g2", ID: 8, Date: 1008, Kind: chatmodel.MsgKindText, Text: "m8",
	})
	item, known := h.ChatListMessage()
	if !known || item == nil || item.ID != 8 {
		t.Fatalf("projection = (%v, %v), want id 8", item, known)
	}
}

func TestProjectionUnknownWhenBoundaryOnly(t *testing.T) {
	m, req, _, _ := newTestManager(50)
	m.UpsertPeer(chatmodel.Peer{ID: "g3", Kind: chatmodel.PeerGroup})
	h := m.History("g3")
	h.AddNewerSlice(nil)

	// The only loaded item is the boundary event; the walk-back exhausts the
	// window, and with the top edge unknown older real messages may exist.
	m.IngestPush(serviceMsg("g3", 5, chatmodel.ActionMigrateTo), false)

	if _, known := h.ChatListMessage(); known {
		t.Fatal("projection should be unknown")
	}
	if len(req.chatList) == 0 {
		t.Fatal("unknown projection must trigger a remote fetch")
	}

	m.ApplyChatListMessage("g3", nil)
	if item, known := h.ChatListMessage(); !known || item != nil {
		t.Fatalf("projection = (%v, %v), want known-empty", item, known)
	}
}

func TestSupergroupDelegatesToLegacyWindow(t *testing.T) {
	m, _, _, _ := newTestManager(50)
	m.UpsertPeer(chatmodel.Peer{ID: "g1", Kind: chatmodel.PeerGroup})
	legacy := m.History("g1")
	legacy.AddNewerSlice(nil)
	m.IngestPush(textMsg("g1", 1), false)
	m.IngestPush(serviceMsg("g1", 2, chatmodel.ActionMigrateTo), false)

	m.MigrateGroup("g1", "s1")
	super := m.History("s1")
	super.AddNewerSlice(nil)
	m.IngestPush(serviceMsg("s1", 1, chatmodel.ActionMigrateFrom), false)

	item, known := super.ChatListMessage()
	if !known || item == nil {
		t.Fatalf("projection = (%v, %v)", item, known)
	}
	if item.ID != 1 || item.History() != legacy {
		t.Fatalf("projection should come from the legacy window, got %v in %v",
			item.ID, item.History().ConvID)
	}
}

func TestProjectionRecomputedOnRemoval(t *testing.T) {
	m, _, _, reg := newTestManager(50)
	h := m.History("c1")
	h.AddNewerSlice(nil)
	m.IngestPush(textMsg("c1", 1), false)
	m.IngestPush(textMsg("c1", 2), false)

	reg.Item("c1", 2).Destroy()
	item, known := h.ChatListMessage()
	if !known || item == nil || item.ID != 1 {
		t.Fatalf("projection = (%v, %v), want id 1", item, known)
	}
}
