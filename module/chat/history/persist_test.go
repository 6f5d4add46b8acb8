package history_test

import (
	"testing"

	"PHistory/module/chat/history"
	chatmodel "PHistory/module/chat/model"
)

type stubPersister struct {
	saved  map[string]history.WindowSnapshot
	states map[string]history.WindowSnapshot
	drafts map[string]chatmodel.RawDraft
}

func newStubPersister() *stubPersister {
	return &stubPersister{
		saved:  make(map[string]history.WindowSnapshot),
		states: make(map[string]history.WindowSnapshot),
		drafts: make(map[string]chatmodel.RawDraft),
	}
}

func (p *stubPersister) SaveWindowState(conv string, s history.WindowSnapshot) {
	p.saved[conv] = s
}

func (p *stubPersister) LoadWindowState(conv string) (history.WindowSnapshot, bool) {
	s, ok := p.states[conv]
	return s, ok
}

func (p *stubPersister) LoadDraft(conv string) (*chatmodel.RawDraft, bool) {
	d, ok := p.drafts[conv]
	if !ok {
		return nil, false
	}
	return &d, true
}

func TestHydrateFromSnapshot(t *testing.T) {
	m, _, _, _ := newTestManager(50)
	p := newStubPersister()
	p.states["c1"] = history.WindowSnapshot{
		InboxReadBefore: 8,
		UnreadCount:     2,
		UnreadMark:      true,
		MentionsCount:   1,
	}
	p.drafts["c1"] = chatmodel.RawDraft{ConversationID: "c1", Text: "resume", Date: 90}
	m.SetPersister(p)

	// 首次引用即恢复落盘快照
	h := m.History("c1")
	if before, ok := h.InboxReadBefore(); !ok || before != 8 {
		t.Fatalf("cursor = %d (%v), want 8", before, ok)
	}
	if h.UnreadCount() != 2 {
		t.Fatalf("unread = %d, want 2", h.UnreadCount())
	}
	if !h.UnreadMark() {
		t.Fatal("unread mark lost")
	}
	if h.UnreadMentionsCount() != 1 {
		t.Fatalf("mentions = %d, want 1", h.UnreadMentionsCount())
	}
	if d := h.LocalDraft(); d == nil || d.Text != "resume" {
		t.Fatalf("draft = %v, want resumed text", d)
	}
}

func TestCursorAdvancePersists(t *testing.T) {
	m, _, _, _ := newTestManager(50)
	p := newStubPersister()
	m.SetPersister(p)

	h := m.History("c1")
	h.AddNewerSlice(nil)
	for id := int64(1); id <= 3; id++ {
		m.IngestPush(unreadMsg("c1", id), true)
	}
	h.ReadInbox()
	s, ok := p.saved["c1"]
	if !ok || s.InboxReadBefore != 4 || s.UnreadCount != 0 {
		t.Fatalf("saved snapshot = %+v (%v)", s, ok)
	}

	m.ApplyDialogSummary(chatmodel.DialogSummary{ConversationID: "c1", UnreadCount: 5})
	if s := p.saved["c1"]; s.UnreadCount != 5 {
		t.Fatalf("saved unread = %d, want 5", s.UnreadCount)
	}

	h.OutboxRead(2)
	if s := p.saved["c1"]; s.OutboxReadBefore != 3 {
		t.Fatalf("saved outbox cursor = %d, want 3", s.OutboxReadBefore)
	}
}
