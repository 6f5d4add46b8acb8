package history

import (
	"time"

	"PHistory/global"
	chatmodel "PHistory/module/chat/model"
	"PHistory/tools/safe"
)

// Requester is the outbound face of the remote-sync collaborator. The window
// issues these opportunistically; responses re-enter via the ingestion API
// and may arrive arbitrarily late.
type Requester interface {
	RequestOlderPage(conv string, beforeID int64)
	RequestNewerPage(conv string, afterID int64)
	RequestChatListMessage(conv string)
	PushDraft(conv string, draft chatmodel.RawDraft)
	PushReadTill(conv string, outbox bool, upTo int64)
}

// WindowSnapshot is the window's scalar persistence unit: read cursors,
// unread counters and the mark. Cursors are stored in "read before" form.
type WindowSnapshot struct {
	InboxReadBefore  int64
	OutboxReadBefore int64
	UnreadCount      int
	UnreadMark       bool
	MentionsCount    int
}

// Persister is the storage collaborator for the persistence unit. Loads run
// on first window reference, before any remote data; Save may complete
// asynchronously.
type Persister interface {
	SaveWindowState(conv string, s WindowSnapshot)
	LoadWindowState(conv string) (WindowSnapshot, bool)
	LoadDraft(conv string) (*chatmodel.RawDraft, bool)
}

// Observer is the UI/rendering collaborator. All callbacks are optional
// (a nil observer is fine) and must not call back into the window.
type Observer interface {
	// PrevNeighborChanged fires when the item's previous-in-window changed
	// because of a structural mutation (splice, insert, removal).
	PrevNeighborChanged(item *Item)
	// NextNeighborRemoved fires for the new tail item when its successor
	// disappeared.
	NextNeighborRemoved(item *Item)
	// ItemDetached fires when an item's visual attachment is severed.
	ItemDetached(item *Item)
}

type itemKey struct {
	conv string
	id   int64
}

// Registry is the process-wide item identity table: any window can find any
// item by (conversation, id). It is injected into the Manager and torn down
// with the owning session; it is not ambient global state.
type Registry struct {
	items    map[itemKey]*Item
	localSeq int64
}

func NewRegistry() *Registry {
	return &Registry{items: make(map[itemKey]*Item)}
}

func (r *Registry) Item(conv string, id int64) *Item {
	return r.items[itemKey{conv, id}]
}

func (r *Registry) put(it *Item) {
	r.items[itemKey{it.history.ConvID, it.ID}] = it
}

func (r *Registry) remove(conv string, id int64) {
	delete(r.items, itemKey{conv, id})
}

// NextLocalID allocates an id in the local (negative) id space for items that
// are not yet server-confirmed.
func (r *Registry) NextLocalID() int64 {
	r.localSeq--
	return r.localSeq
}

func (r *Registry) teardown() {
	r.items = make(map[itemKey]*Item)
}

// Manager owns one lazily-created window per conversation. A conversation
// never has two windows alive at once.
type Manager struct {
	registry  *Registry
	requester Requester
	observer  Observer
	persister Persister
	cfg       global.AppConfig

	peers   map[string]*chatmodel.Peer
	windows map[string]*History

	// Now is the injected clock; tests override it.
	Now func() time.Time
}

func NewManager(reg *Registry, req Requester, obs Observer, cfg global.AppConfig) *Manager {
	safe.MustNotNil(reg, "registry")
	safe.MustNotNil(req, "requester")
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = 50
	}
	return &Manager{
		registry:  reg,
		requester: req,
		observer:  obs,
		cfg:       cfg,
		peers:     make(map[string]*chatmodel.Peer),
		windows:   make(map[string]*History),
		Now:       time.Now,
	}
}

func (m *Manager) nowMs() int64   { return m.Now().UnixMilli() }
func (m *Manager) nowUnix() int64 { return m.Now().Unix() }

// SetPersister attaches the storage collaborator; windows created afterwards
// hydrate from its snapshot.
func (m *Manager) SetPersister(p Persister) { m.persister = p }

// UpsertPeer records what is known about a conversation counterpart; the
// stored record is shared with the window.
func (m *Manager) UpsertPeer(p chatmodel.Peer) *chatmodel.Peer {
	if stored, ok := m.peers[p.ID]; ok {
		*stored = p
		return stored
	}
	cp := p
	m.peers[p.ID] = &cp
	return &cp
}

func (m *Manager) Peer(conv string) *chatmodel.Peer {
	if p, ok := m.peers[conv]; ok {
		return p
	}
	return m.UpsertPeer(chatmodel.Peer{ID: conv, Kind: chatmodel.PeerUser})
}

// History returns the window for conv, creating it lazily on first reference.
func (m *Manager) History(conv string) *History {
	if h, ok := m.windows[conv]; ok {
		return h
	}
	h := newHistory(m, conv)
	m.windows[conv] = h
	if m.persister != nil {
		h.hydrate(m.persister)
	}
	return h
}

// HistoryLoaded returns the window only if it already exists.
func (m *Manager) HistoryLoaded(conv string) *History {
	return m.windows[conv]
}

// MigrateGroup links a legacy group to the supergroup it became and moves the
// composing draft across, the way the boundary behaves for a user mid-typing.
func (m *Manager) MigrateGroup(legacyID, superID string) {
	legacyPeer := m.Peer(legacyID)
	legacyPeer.Kind = chatmodel.PeerGroup
	legacyPeer.MigratedTo = superID
	superPeer := m.Peer(superID)
	superPeer.Kind = chatmodel.PeerSupergroup
	superPeer.MigratedFrom = legacyID

	if legacy := m.HistoryLoaded(legacyID); legacy != nil {
		m.History(superID).TakeLocalDraft(legacy)
		legacy.refreshChatListMessage()
	}
}

// Teardown drops all windows and the identity table. Used when the owning
// session ends or under idle memory pressure.
func (m *Manager) Teardown() {
	for _, h := range m.windows {
		h.Unload()
	}
	m.windows = make(map[string]*History)
	m.registry.teardown()
}

// —— ingestion facade used by the sync collaborator ——

// IngestPush applies one live-pushed message.
func (m *Manager) IngestPush(raw chatmodel.RawMessage, unread bool) *Item {
	typ := NewMessageLast
	if unread {
		typ = NewMessageUnread
	}
	return m.History(raw.ConversationID).AddNewMessage(raw, typ)
}

// IngestRange applies a fetched page. Pages arrive newest-first.
func (m *Manager) IngestRange(conv string, older bool, msgs []chatmodel.RawMessage) {
	h := m.History(conv)
	if older {
		h.AddOlderSlice(msgs)
	} else {
		h.AddNewerSlice(msgs)
	}
}

func (m *Manager) ApplyDialogSummary(s chatmodel.DialogSummary) {
	m.History(s.ConversationID).ApplyDialogSummary(s)
}

func (m *Manager) ApplyCloudDraft(d chatmodel.RawDraft) {
	m.History(d.ConversationID).ApplyCloudDraft(d)
}

// ApplyDeleted removes a deleted message; an id the cache never loaded still
// adjusts the unread count when it sat past the inbound cursor.
func (m *Manager) ApplyDeleted(conv string, id int64) {
	h := m.HistoryLoaded(conv)
	if h == nil {
		return
	}
	if item := m.registry.Item(conv, id); item != nil {
		item.Destroy()
	} else {
		h.UnknownMessageDeleted(id)
	}
}

// ApplyChatListMessage resolves a remote projection fetch; nil means the
// conversation row is known-empty.
func (m *Manager) ApplyChatListMessage(conv string, raw *chatmodel.RawMessage) {
	h := m.History(conv)
	if raw == nil {
		h.setChatListMessage(nil)
		return
	}
	h.ApplyChatListMessage(*raw)
}

// SweepSendActions expires stale typing/upload entries across all windows in
// one pass. The owner drives it from a ticker.
func (m *Manager) SweepSendActions() {
	now := m.nowMs()
	for _, h := range m.windows {
		h.SweepSendActions(now)
	}
}
