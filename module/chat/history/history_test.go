package history_test

import (
	"fmt"
	"testing"
	"time"

	"PHistory/global"
	"PHistory/module/chat/history"
	chatmodel "PHistory/module/chat/model"
)

type readPush struct {
	conv   string
	outbox bool
	upTo   int64
}

type stubRequester struct {
	older    []int64
	newer    []int64
	chatList []string
	drafts   []chatmodel.RawDraft
	reads    []readPush
}

func (r *stubRequester) RequestOlderPage(conv string, beforeID int64) {
	r.older = append(r.older, beforeID)
}
func (r *stubRequester) RequestNewerPage(conv string, afterID int64) {
	r.newer = append(r.newer, afterID)
}
func (r *stubRequester) RequestChatListMessage(conv string) {
	r.chatList = append(r.chatList, conv)
}
func (r *stubRequester) PushDraft(conv string, draft chatmodel.RawDraft) {
	r.drafts = append(r.drafts, draft)
}
func (r *stubRequester) PushReadTill(conv string, outbox bool, upTo int64) {
	r.reads = append(r.reads, readPush{conv, outbox, upTo})
}

type stubObserver struct {
	prevChanged []*history.Item
	nextRemoved []*history.Item
	detached    []*history.Item
}

func (o *stubObserver) PrevNeighborChanged(item *history.Item) {
	o.prevChanged = append(o.prevChanged, item)
}
func (o *stubObserver) NextNeighborRemoved(item *history.Item) {
	o.nextRemoved = append(o.nextRemoved, item)
}
func (o *stubObserver) ItemDetached(item *history.Item) {
	o.detached = append(o.detached, item)
}

func newTestManager(blockSize int) (*history.Manager, *stubRequester, *stubObserver, *history.Registry) {
	reg := history.NewRegistry()
	req := &stubRequester{}
	obs := &stubObserver{}
	cfg := global.Default()
	cfg.BlockSize = blockSize
	m := history.NewManager(reg, req, obs, cfg)
	m.Now = func() time.Time { return time.Unix(1700000000, 0) }
	return m, req, obs, reg
}

func textMsg(conv string, id int64) chatmodel.RawMessage {
	return chatmodel.RawMessage{
		ConversationID: conv,
		ID:             id,
		Date:           1000 + id,
		From:           fmt.Sprintf("u%d", id%3),
		Kind:           chatmodel.MsgKindText,
		Text:           fmt.Sprintf("m%d", id),
	}
}

func unreadMsg(conv string, id int64) chatmodel.RawMessage {
	m := textMsg(conv, id)
	m.Unread = true
	return m
}

func serviceMsg(conv string, id int64, action string) chatmodel.RawMessage {
	m := textMsg(conv, id)
	m.Kind = chatmodel.MsgKindService
	m.Text = ""
	m.Service = &chatmodel.RawService{Action: action}
	return m
}

func windowIDs(h *history.History) []int64 {
	var ids []int64
	for _, b := range h.Blocks() {
		for _, it := range b.Items() {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

func wantIDs(t *testing.T, h *history.History, want ...int64) {
	t.Helper()
	got := windowIDs(h)
	if len(got) != len(want) {
		t.Fatalf("window ids = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("window ids = %v, want %v", got, want)
		}
	}
}

func TestPushKeepsTailOrder(t *testing.T) {
	m, _, _, _ := newTestManager(50)
	h := m.History("c1")
	h.AddNewerSlice(nil) // bottom edge known, tail splices from now on

	for id := int64(1); id <= 5; id++ {
		m.IngestPush(textMsg("c1", id), false)
	}
	wantIDs(t, h, 1, 2, 3, 4, 5)
	if last := h.LastMessage(); last == nil || last.ID != 5 {
		t.Fatalf("last message = %v", last)
	}
	if !h.LoadedAtBottom() {
		t.Fatal("bottom edge should stay loaded")
	}
}

func TestBlockCapacityRollsOver(t *testing.T) {
	m, _, _, _ := newTestManager(3)
	h := m.History("c1")
	h.AddNewerSlice(nil)

	for id := int64(1); id <= 7; id++ {
		m.IngestPush(textMsg("c1", id), false)
	}
	blocks := h.Blocks()
	if len(blocks) != 3 {
		t.Fatalf("blocks = %d, want 3", len(blocks))
	}
	wantLens := []int{3, 3, 1}
	for i, b := range blocks {
		if b.Len() != wantLens[i] {
			t.Fatalf("block %d len = %d, want %d", i, b.Len(), wantLens[i])
		}
		if b.IndexInWindow() != i {
			t.Fatalf("block %d index = %d", i, b.IndexInWindow())
		}
	}
}

func TestSameIDNeverDuplicates(t *testing.T) {
	m, _, _, reg := newTestManager(50)
	h := m.History("c1")
	h.AddNewerSlice(nil)
	first := m.IngestPush(textMsg("c1", 7), false)

	// The same id coming back inside an older page must reuse the item.
	h.AddOlderSlice([]chatmodel.RawMessage{textMsg("c1", 7), textMsg("c1", 6)})
	wantIDs(t, h, 6, 7)
	if got := reg.Item("c1", 7); got != first {
		t.Fatalf("identity broken: %p vs %p", got, first)
	}
}

func TestEmptyOlderSliceMarksTopOnly(t *testing.T) {
	m, req, _, _ := newTestManager(50)
	h := m.History("c1")
	h.AddNewerSlice(nil)
	m.IngestPush(textMsg("c1", 3), false)

	h.AddOlderSlice(nil)
	if !h.LoadedAtTop() {
		t.Fatal("top edge should be loaded")
	}
	wantIDs(t, h, 3)

	h.LoadOlder()
	if len(req.older) != 0 {
		t.Fatalf("loaded-at-top window requested older pages: %v", req.older)
	}
}

func TestOlderSpliceNotifiesBoundaryOnce(t *testing.T) {
	m, _, obs, _ := newTestManager(50)
	h := m.History("c1")
	h.AddNewerSlice(nil)
	m.IngestPush(textMsg("c1", 4), false)
	m.IngestPush(textMsg("c1", 5), false)

	obs.prevChanged = nil
	obs.nextRemoved = nil
	h.AddOlderSlice([]chatmodel.RawMessage{textMsg("c1", 3), textMsg("c1", 2), textMsg("c1", 1)})

	wantIDs(t, h, 1, 2, 3, 4, 5)
	if len(obs.prevChanged) != 1 || obs.prevChanged[0].ID != 4 {
		t.Fatalf("prev-changed = %v", obs.prevChanged)
	}
	if len(obs.nextRemoved) != 0 {
		t.Fatalf("unexpected next-removed: %v", obs.nextRemoved)
	}
}

func TestInsertUserJoinedByDate(t *testing.T) {
	m, _, obs, _ := newTestManager(50)
	h := m.History("c1")
	h.AddNewerSlice(nil)
	for id := int64(1); id <= 3; id++ {
		m.IngestPush(textMsg("c1", id), false) // dates 1001..1003
	}

	obs.prevChanged = nil
	joined := h.InsertUserJoined(1001, "newcomer", false)
	wantIDs(t, h, 1, joined.ID, 2, 3)
	if len(obs.prevChanged) != 1 || obs.prevChanged[0].ID != 2 {
		t.Fatalf("prev-changed = %v", obs.prevChanged)
	}
}

func TestUnreadPushAndReadInbox(t *testing.T) {
	m, req, _, _ := newTestManager(50)
	h := m.History("c1")
	h.AddNewerSlice(nil)
	for id := int64(1); id <= 5; id++ {
		m.IngestPush(textMsg("c1", id), false)
	}
	item := m.IngestPush(unreadMsg("c1", 6), true)

	if h.UnreadCount() != 1 {
		t.Fatalf("unread = %d, want 1", h.UnreadCount())
	}
	if !h.HasNotification() || h.CurrentNotification() != item {
		t.Fatal("unread push should queue a notification")
	}

	h.ReadInbox()
	if h.UnreadCount() != 0 {
		t.Fatalf("unread after read = %d", h.UnreadCount())
	}
	if h.HasNotification() {
		t.Fatal("notification queue should drain on read")
	}
	if item.Unread() {
		t.Fatal("loaded item should be marked read")
	}
	if len(req.reads) != 1 || req.reads[0] != (readPush{"c1", false, 6}) {
		t.Fatalf("read pushes = %v", req.reads)
	}
	if before, ok := h.InboxReadBefore(); !ok || before != 7 {
		t.Fatalf("inbox cursor = %d (%v)", before, ok)
	}
}

func TestNotLoadedAtBottomOnlyTracks(t *testing.T) {
	m, _, _, _ := newTestManager(50)
	h := m.History("c1")
	// bottom edge unknown: a push must not splice into the window
	item := m.IngestPush(unreadMsg("c1", 40), true)

	if !h.IsEmpty() {
		t.Fatalf("window should stay empty, got %v", windowIDs(h))
	}
	if h.LastMessage() != item {
		t.Fatal("last message should still advance")
	}
	if h.UnreadCount() != 1 {
		t.Fatalf("unread = %d, want 1", h.UnreadCount())
	}
}

func TestUnloadAndClear(t *testing.T) {
	m, _, _, reg := newTestManager(50)
	h := m.History("c1")
	h.AddNewerSlice(nil)
	for id := int64(1); id <= 3; id++ {
		m.IngestPush(unreadMsg("c1", id), true)
	}

	h.Unload()
	if !h.IsEmpty() || h.LoadedAtBottom() {
		t.Fatal("unload should drop blocks and the bottom edge")
	}
	if reg.Item("c1", 2) == nil {
		t.Fatal("unload must keep items alive")
	}
	if h.UnreadCount() != 3 {
		t.Fatalf("unload must keep the unread count, got %d", h.UnreadCount())
	}

	h.AddNewerSlice([]chatmodel.RawMessage{textMsg("c1", 3), textMsg("c1", 2), textMsg("c1", 1)})
	h.Clear()
	if !h.IsEmpty() || !h.LoadedAtBottom() {
		t.Fatal("clear should empty the window but keep the bottom edge loaded")
	}
	if reg.Item("c1", 2) != nil {
		t.Fatal("clear must drop items")
	}
	if h.UnreadCount() != 0 {
		t.Fatalf("clear must zero the unread count, got %d", h.UnreadCount())
	}
}

func TestClearUpTillConvertsBoundary(t *testing.T) {
	m, _, _, _ := newTestManager(50)
	h := m.History("c1")
	h.AddNewerSlice(nil)
	for id := int64(1); id <= 5; id++ {
		m.IngestPush(textMsg("c1", id), false)
	}

	h.ClearUpTill(3)
	wantIDs(t, h, 3, 4, 5)
	boundary := h.Blocks()[0].Items()[0]
	sc, ok := boundary.Content().(history.ServiceContent)
	if !ok || sc.Kind != history.ServiceHistoryClear {
		t.Fatalf("boundary content = %#v", boundary.Content())
	}
}

func TestLastSentMessageSkipsServiceAndInbound(t *testing.T) {
	m, _, _, _ := newTestManager(50)
	h := m.History("c1")
	h.AddNewerSlice(nil)

	mine := textMsg("c1", 1)
	mine.Out = true
	m.IngestPush(mine, false)
	m.IngestPush(textMsg("c1", 2), false)
	m.IngestPush(serviceMsg("c1", 3, chatmodel.ActionPinnedChanged), false)

	got := h.LastSentMessage()
	if got == nil || got.ID != 1 {
		t.Fatalf("last sent = %v", got)
	}
}

func TestRangeForDifferenceRequest(t *testing.T) {
	m, _, _, _ := newTestManager(50)
	h := m.History("c1")
	h.AddNewerSlice(nil)
	if from, till := h.RangeForDifferenceRequest(); from != 0 || till != 0 {
		t.Fatalf("empty window range = [%d, %d)", from, till)
	}
	for id := int64(4); id <= 9; id++ {
		m.IngestPush(textMsg("c1", id), false)
	}
	h.AddLocalMessage("pending") // local ids must not leak into the range
	if from, till := h.RangeForDifferenceRequest(); from != 4 || till != 10 {
		t.Fatalf("range = [%d, %d), want [4, 10)", from, till)
	}
}
