package history

import (
	"fmt"

	"go.uber.org/zap"

	"PHistory/logger"
	chatmodel "PHistory/module/chat/model"
)

// NewMessageType tells AddNewMessage how a pushed message relates to the
// window: a live unread push, the known last message (e.g. from the dialog
// list), or a message that should only be tracked, not spliced.
type NewMessageType int

const (
	NewMessageUnread NewMessageType = iota
	NewMessageLast
	NewMessageExisting
)

type buildingBlock struct {
	block    *Block
	expected int
}

// ScrollAnchor preserves the visual position across structural mutation. It
// is a non-owning reference set by the UI collaborator and invalidated when
// the anchored item is removed or the window unloads.
type ScrollAnchor struct {
	Item   *Item
	Offset int
}

// History is the per-conversation window: a partial, paginated view of the
// remote message log plus the derived summary state other components consume.
// All mutation must happen on one control goroutine (the Manager's owner
// serializes sync and UI calls); there is no internal locking.
type History struct {
	owner  *Manager
	ConvID string
	peer   *chatmodel.Peer

	blocks        []*Block
	buildingFront *buildingBlock

	loadedAtTop    bool
	loadedAtBottom bool

	lastMessage      *Item
	lastMessageKnown bool
	chatListMessage  *Item
	chatListKnown    bool

	inboxReadBefore  *int64
	outboxReadBefore *int64
	unreadCount      *int
	unreadMark       bool

	unreadMentions      map[int64]struct{}
	unreadMentionsCount *int

	firstUnread     *Item
	unreadBar       *Item
	unreadBarCount  int
	unreadBarFrozen bool

	scrollAnchor *ScrollAnchor

	localDraft        *Draft
	cloudDraft        *Draft
	editDraft         *Draft
	lastSentDraftText *string
	lastSentDraftTime int64

	lastKeyboardInited bool
	lastKeyboardID     int64
	lastKeyboardFrom   string

	typing           map[string]int64
	sendActions      map[string]sendAction
	myActions        map[SendActionType]int64
	sendActionString string

	notifies []*Item
}

func newHistory(m *Manager, conv string) *History {
	return &History{
		owner:          m,
		ConvID:         conv,
		peer:           m.Peer(conv),
		unreadMentions: make(map[int64]struct{}),
		typing:         make(map[string]int64),
		sendActions:    make(map[string]sendAction),
		myActions:      make(map[SendActionType]int64),
	}
}

func (h *History) Peer() *chatmodel.Peer { return h.peer }
func (h *History) Blocks() []*Block      { return h.blocks }
func (h *History) IsEmpty() bool         { return len(h.blocks) == 0 }
func (h *History) LoadedAtTop() bool     { return h.loadedAtTop }
func (h *History) LoadedAtBottom() bool  { return h.loadedAtBottom }

func (h *History) notifyPrevChanged(item *Item) {
	if h.owner.observer != nil && item != nil {
		h.owner.observer.PrevNeighborChanged(item)
	}
}

func (h *History) notifyNextRemoved(item *Item) {
	if h.owner.observer != nil && item != nil {
		h.owner.observer.NextNeighborRemoved(item)
	}
}

func (h *History) notifyDetached(item *Item) {
	if h.owner.observer != nil && item != nil {
		h.owner.observer.ItemDetached(item)
	}
}

// —— item creation ——

// CreateOrUpdate reuses an existing item with the same identity anywhere in
// the process, refreshing mutable content in place; detachExisting severs its
// previous visual attachment first. Two ingests of the same id never produce
// two items.
func (h *History) CreateOrUpdate(raw chatmodel.RawMessage, detachExisting bool) *Item {
	if raw.ID == 0 {
		logger.Warn("message without id dropped", zap.String("conv", h.ConvID))
		return nil
	}
	if existing := h.owner.registry.Item(h.ConvID, raw.ID); existing != nil {
		if detachExisting && existing.MainView() {
			existing.removeMainView()
			h.notifyDetached(existing)
		}
		if raw.Kind == chatmodel.MsgKindMedia {
			existing.updateSentMedia(raw.Media)
		}
		return existing
	}
	item := newItem(h, raw)
	h.owner.registry.put(item)
	return item
}

// createItems builds items for a newest-first page so the result is ordered
// oldest-to-newest.
func (h *History) createItems(msgs []chatmodel.RawMessage) []*Item {
	result := make([]*Item, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		const detachExistingItem = true
		if item := h.CreateOrUpdate(msgs[i], detachExistingItem); item != nil {
			result = append(result, item)
		}
	}
	return result
}

func (h *History) addToHistory(raw chatmodel.RawMessage) *Item {
	const detachExistingItem = false
	return h.CreateOrUpdate(raw, detachExistingItem)
}

// AddNewMessage ingests one pushed message. If the window is not loaded at
// the bottom edge (or the peer migrated away) the item is tracked and only
// lastMessage is updated; it is not spliced into the visible tail.
func (h *History) AddNewMessage(raw chatmodel.RawMessage, typ NewMessageType) *Item {
	if typ == NewMessageExisting {
		return h.addToHistory(raw)
	}
	if !h.loadedAtBottom || h.peer.MigratedTo != "" {
		if item := h.addToHistory(raw); item != nil {
			h.setLastMessage(item)
			if typ == NewMessageUnread {
				h.newItemAdded(item)
			}
			return item
		}
		return nil
	}
	return h.addNewToLastBlock(raw, typ)
}

func (h *History) addNewToLastBlock(raw chatmodel.RawMessage, typ NewMessageType) *Item {
	if typ == NewMessageExisting {
		panic("history: existing message in addNewToLastBlock")
	}
	detachExisting := typ != NewMessageLast
	item := h.CreateOrUpdate(raw, detachExisting)
	if item == nil || item.MainView() {
		return item
	}
	result := h.addNewItem(item, typ == NewMessageUnread)
	h.checkForLoadedAtTop(result)
	return result
}

// AddLocalMessage appends a locally-composed, not-yet-confirmed message to
// the tail, in the local (negative) id space.
func (h *History) AddLocalMessage(text string) *Item {
	raw := chatmodel.RawMessage{
		ConversationID: h.ConvID,
		ID:             h.owner.registry.NextLocalID(),
		Date:           h.owner.nowUnix(),
		Out:            true,
		Kind:           chatmodel.MsgKindText,
		Text:           text,
	}
	item := newItem(h, raw)
	h.owner.registry.put(item)
	if h.loadedAtBottom {
		return h.addNewItem(item, false)
	}
	h.setLastMessage(item)
	return item
}

func (h *History) checkForLoadedAtTop(added *Item) {
	if h.peer.IsGroup() {
		if added.IsGroupEssential() && !added.IsGroupMigrate() {
			// We added the first message about group creation.
			h.loadedAtTop = true
		}
	} else if h.peer.IsSupergroup() {
		if added.ID == 1 {
			h.loadedAtTop = true
		}
	}
}

// addNewItem splices an item into the tail and applies the derived-state side
// effects atomically from the caller's perspective.
func (h *History) addNewItem(item *Item, unread bool) *Item {
	if h.buildingFront != nil {
		panic("history: append during front block build")
	}
	h.addItemToBlock(item)

	if item.From != "" && item.DefinesReplyKeyboard() {
		h.trackReplyKeyboard(item)
	}

	h.setLastMessage(item)
	if unread {
		h.newItemAdded(item)
	}
	return item
}

// trackReplyKeyboard maintains the (id, author) pair of the last keyboard-
// defining message, honoring the hide sentinel and the selective rule.
func (h *History) trackReplyKeyboard(item *Item) {
	kb := item.keyboard
	if kb.Selective && !item.mentionsMe {
		return
	}
	if kb.Hide {
		if h.lastKeyboardFrom == item.From ||
			(!h.lastKeyboardInited && h.peer.IsUser() && !item.out) {
			h.clearLastKeyboard()
		}
		return
	}
	botNotInChat := false
	if h.peer.IsGroup() {
		botNotInChat = h.peer.MembersKnown && !h.peer.HasMember(item.From)
	} else if h.peer.IsSupergroup() {
		botNotInChat = h.peer.BotsKnown && !h.peer.HasBot(item.From)
	}
	if botNotInChat {
		h.clearLastKeyboard()
	} else {
		h.lastKeyboardInited = true
		h.lastKeyboardID = item.ID
		h.lastKeyboardFrom = item.From
	}
}

func (h *History) clearLastKeyboard() {
	h.lastKeyboardInited = false
	h.lastKeyboardID = 0
	h.lastKeyboardFrom = ""
}

// LastKeyboard returns the tracked keyboard-defining (id, author) pair.
func (h *History) LastKeyboard() (id int64, from string, ok bool) {
	return h.lastKeyboardID, h.lastKeyboardFrom, h.lastKeyboardInited
}

// newItemAdded runs the unread/notification side effects for a freshly
// ingested item.
func (h *History) newItemAdded(item *Item) {
	if item.From != "" {
		h.ClearSendAction(item.From)
	}
	if item.out {
		h.DestroyUnreadBar()
		if !item.unread {
			// Remote store already reports it read: advance the outbound
			// cursor instead of waiting for the read-receipt push.
			if item.IsServerID() {
				h.OutboxRead(item.ID)
			}
		}
	} else if item.unread {
		h.notifies = append(h.notifies, item)
		h.changeUnreadCount(1)
		if item.isMention {
			h.AddToUnreadMentions(item.ID, UnreadMentionNew)
		}
	} else if item.IsServerID() {
		h.InboxRead(item.ID)
	}
}

// —— block management ——

func (h *History) blockSize() int { return h.owner.cfg.BlockSize }

func (h *History) prepareBlockForAddingItem() *Block {
	if h.buildingFront != nil {
		if h.buildingFront.block != nil {
			return h.buildingFront.block
		}
		b := &Block{history: h}
		h.blocks = append([]*Block{b}, h.blocks...)
		for i := range h.blocks {
			h.blocks[i].index = i
		}
		b.items = make([]*Item, 0, h.buildingFront.expected)
		h.buildingFront.block = b
		return b
	}

	addNewBlock := len(h.blocks) == 0 ||
		len(h.blocks[len(h.blocks)-1].items) >= h.blockSize()
	if addNewBlock {
		b := &Block{history: h, index: len(h.blocks)}
		b.items = make([]*Item, 0, h.blockSize())
		h.blocks = append(h.blocks, b)
	}
	return h.blocks[len(h.blocks)-1]
}

func (h *History) addItemToBlock(item *Item) {
	if item.MainView() {
		panic("history: item already attached to a block")
	}
	b := h.prepareBlockForAddingItem()
	b.items = append(b.items, item)
	item.block = b
	item.indexInBlock = len(b.items) - 1
	item.history = h

	if h.buildingFront != nil && h.buildingFront.expected > 0 {
		h.buildingFront.expected--
	}
}

func (h *History) startBuildingFrontBlock(expected int) {
	if h.buildingFront != nil {
		panic("history: front block build already in progress")
	}
	if expected <= 0 {
		panic("history: front block build without items")
	}
	h.buildingFront = &buildingBlock{expected: expected}
}

// finishBuildingFrontBlock re-links the boundary between the new front block
// and the previous one so neighbor notifications fire exactly once.
func (h *History) finishBuildingFrontBlock() {
	if h.buildingFront == nil {
		panic("history: finishing an absent front block build")
	}
	bb := h.buildingFront
	h.buildingFront = nil
	if bb.block == nil {
		return
	}
	if len(h.blocks) > 1 {
		// ... item, item, item, last ], [ first, item, item ...
		h.notifyPrevChanged(h.blocks[1].items[0])
	} else {
		h.notifyNextRemoved(bb.block.lastItem())
	}
}

func (h *History) removeBlock(b *Block) {
	if len(b.items) != 0 {
		panic("history: removing a non-empty block")
	}
	if h.buildingFront != nil && h.buildingFront.block == b {
		h.buildingFront.block = nil
	}
	index := b.index
	h.blocks = append(h.blocks[:index], h.blocks[index+1:]...)
	if index < len(h.blocks) {
		for i := index; i < len(h.blocks); i++ {
			h.blocks[i].index = i
		}
		h.notifyPrevChanged(h.blocks[index].items[0])
	} else if len(h.blocks) > 0 {
		if last := h.blocks[len(h.blocks)-1].lastItem(); last != nil {
			h.notifyNextRemoved(last)
		}
	}
}

// —— page splicing ——

// AddOlderSlice splices a newest-first page of older messages onto the head
// inside a front-block build. An empty page marks the top edge as loaded.
func (h *History) AddOlderSlice(msgs []chatmodel.RawMessage) {
	if len(msgs) == 0 {
		h.loadedAtTop = true
		return
	}
	if added := h.createItems(msgs); len(added) != 0 {
		h.startBuildingFrontBlock(len(added))
		for _, item := range added {
			h.addItemToBlock(item)
		}
		h.finishBuildingFrontBlock()
		if h.loadedAtBottom {
			h.addItemsToLists(added)
		}
	} else {
		// If no items were added it means we've loaded everything old.
		h.loadedAtTop = true
	}
	h.checkLastMessage()
}

// AddNewerSlice grows the tail symmetrically. An empty page marks the bottom
// edge as loaded and resolves lastMessage if it was unknown.
func (h *History) AddNewerSlice(msgs []chatmodel.RawMessage) {
	wasLoadedAtBottom := h.loadedAtBottom

	if len(msgs) == 0 {
		h.loadedAtBottom = true
		if h.LastMessage() == nil {
			h.setLastMessage(h.lastAvailableMessage())
		}
	}
	if added := h.createItems(msgs); len(added) != 0 {
		if h.buildingFront != nil {
			panic("history: tail growth during front block build")
		}
		for _, item := range added {
			h.addItemToBlock(item)
		}
	} else {
		h.loadedAtBottom = true
		h.setLastMessage(h.lastAvailableMessage())
	}
	if !wasLoadedAtBottom {
		h.checkAddAllToUnreadMentions()
	}
	h.checkLastMessage()
}

func (h *History) checkLastMessage() {
	if last := h.LastMessage(); last != nil {
		if !h.loadedAtBottom && last.MainView() {
			h.loadedAtBottom = true
			h.checkAddAllToUnreadMentions()
		}
	} else if h.loadedAtBottom {
		h.setLastMessage(h.lastAvailableMessage())
	}
}

// addItemsToLists runs the historical-ingest bookkeeping for a freshly
// spliced older page when the tail is loaded: existing-mention admission and
// keyboard initialization from the newest inbound keyboard-defining item.
func (h *History) addItemsToLists(items []*Item) {
	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		if item.isMention {
			h.AddToUnreadMentions(item.ID, UnreadMentionExisting)
		}
		if !h.lastKeyboardInited && item.DefinesReplyKeyboard() && !item.out {
			h.trackReplyKeyboard(item)
		}
	}
}

func (h *History) checkAddAllToUnreadMentions() {
	if !h.loadedAtBottom {
		return
	}
	for _, b := range h.blocks {
		for _, item := range b.items {
			if item.isMention {
				h.AddToUnreadMentions(item.ID, UnreadMentionExisting)
			}
		}
	}
}

// AddNewInTheMiddle inserts a synthetic structural event strictly between two
// loaded items, renumbering the index caches after the insertion point and
// firing exactly one neighbor notification.
func (h *History) AddNewInTheMiddle(item *Item, blockIndex, itemIndex int) *Item {
	if blockIndex < 0 || blockIndex >= len(h.blocks) {
		panic(fmt.Sprintf("history: block index %d out of range %d", blockIndex, len(h.blocks)))
	}
	b := h.blocks[blockIndex]
	if itemIndex < 0 || itemIndex > len(b.items) {
		panic(fmt.Sprintf("history: item index %d out of range %d", itemIndex, len(b.items)))
	}
	if item.MainView() {
		panic("history: item already attached to a block")
	}

	b.items = append(b.items, nil)
	copy(b.items[itemIndex+1:], b.items[itemIndex:])
	b.items[itemIndex] = item
	item.block = b
	item.indexInBlock = itemIndex
	item.history = h

	if itemIndex+1 < len(b.items) {
		for i := itemIndex + 1; i < len(b.items); i++ {
			b.items[i].indexInBlock = i
		}
		h.notifyPrevChanged(b.items[itemIndex+1])
	} else if blockIndex+1 < len(h.blocks) && len(h.blocks[blockIndex+1].items) > 0 {
		h.notifyPrevChanged(h.blocks[blockIndex+1].items[0])
	} else {
		h.notifyNextRemoved(item)
	}
	return item
}

// InsertUserJoined places a synthetic "user joined" marker at the position
// its timestamp dictates inside the loaded window.
func (h *History) InsertUserJoined(date int64, user string, unread bool) *Item {
	raw := chatmodel.RawMessage{
		ConversationID: h.ConvID,
		ID:             h.owner.registry.NextLocalID(),
		Date:           date,
		From:           user,
		Kind:           chatmodel.MsgKindService,
		Service:        &chatmodel.RawService{Action: chatmodel.ActionUserJoined, Arg: user},
	}
	item := newItem(h, raw)
	h.owner.registry.put(item)

	if h.IsEmpty() {
		return h.addNewItem(item, unread)
	}
	for blockIndex := len(h.blocks); blockIndex > 0; {
		blockIndex--
		b := h.blocks[blockIndex]
		for itemIndex := len(b.items); itemIndex > 0; {
			itemIndex--
			if b.items[itemIndex].Date <= date {
				return h.AddNewInTheMiddle(item, blockIndex, itemIndex+1)
			}
		}
	}
	return h.AddNewInTheMiddle(item, 0, 0)
}

// —— removal ——

// mainViewRemoved fixes the anchors that referenced the removed attachment.
func (h *History) mainViewRemoved(b *Block, item *Item) {
	if h.firstUnread == item {
		h.getNextFirstUnreadMessage(b, item.indexInBlock)
	}
	if h.unreadBar == item {
		h.unreadBar = nil
	}
	if h.scrollAnchor != nil && h.scrollAnchor.Item == item {
		h.scrollAnchor = nil
	}
}

// itemRemoved runs the window-level bookkeeping after an item is destroyed.
func (h *History) itemRemoved(item *Item) {
	if h.lastMessageKnown && h.lastMessage == item {
		h.lastMessage = nil
		h.lastMessageKnown = false
		if h.loadedAtBottom {
			if last := h.lastAvailableMessage(); last != nil {
				h.setLastMessage(last)
			}
		}
	}
	h.checkChatListMessageRemoved(item)
	h.itemVanished(item)
	if h.peer.IsGroup() && h.peer.MigratedTo != "" {
		if sibling := h.owner.HistoryLoaded(h.peer.MigratedTo); sibling != nil {
			sibling.checkChatListMessageRemoved(item)
		}
	}
}

func (h *History) itemVanished(item *Item) {
	h.removeNotification(item)
	if h.lastKeyboardID == item.ID {
		h.clearLastKeyboard()
	}
	if item.isMention {
		h.EraseFromUnreadMentions(item.ID)
	}
	if !item.out && item.unread && h.UnreadCount() > 0 {
		h.changeUnreadCount(-1)
	}
}

// UnknownMessageDeleted accounts for the deletion of a message the window
// never loaded.
func (h *History) UnknownMessageDeleted(id int64) {
	if h.inboxReadBefore != nil && id >= *h.inboxReadBefore {
		h.changeUnreadCount(-1)
	}
}

// —— last message ——

func (h *History) LastMessage() *Item {
	return h.lastMessage
}

func (h *History) LastMessageKnown() bool { return h.lastMessageKnown }

func (h *History) lastAvailableMessage() *Item {
	if h.IsEmpty() {
		return nil
	}
	return h.blocks[len(h.blocks)-1].lastItem()
}

func (h *History) setLastMessage(item *Item) {
	if h.lastMessageKnown {
		if h.lastMessage == item {
			return
		}
		if h.lastMessage != nil && item != nil &&
			!h.lastMessage.IsServerID() &&
			h.lastMessage.Date > item.Date {
			// A pending local message stays newest until confirmed.
			return
		}
	}
	h.lastMessage = item
	h.lastMessageKnown = true
	h.chatListMessage = nil
	h.chatListKnown = false
	if h.peer.MigratedTo == "" {
		// We don't want to request the projection for deactivated chats:
		// skipping the migration message needs a two-item fetch there.
		h.requestChatListMessage()
	}
}

// LastSentMessage returns the newest own confirmed non-service message, the
// natural edit target.
func (h *History) LastSentMessage() *Item {
	if !h.loadedAtBottom {
		return nil
	}
	for i := len(h.blocks); i > 0; {
		i--
		items := h.blocks[i].items
		for j := len(items); j > 0; {
			j--
			item := items[j]
			if item.IsServerID() && !item.IsService() && item.out {
				return item
			}
		}
	}
	return nil
}

// —— id range helpers for the sync collaborator ——

func (h *History) MinMsgID() int64 {
	for _, b := range h.blocks {
		for _, item := range b.items {
			if item.IsServerID() {
				return item.ID
			}
		}
	}
	return 0
}

func (h *History) MaxMsgID() int64 {
	for i := len(h.blocks); i > 0; {
		i--
		items := h.blocks[i].items
		for j := len(items); j > 0; {
			j--
			if items[j].IsServerID() {
				return items[j].ID
			}
		}
	}
	return 0
}

// RangeForDifferenceRequest is the [from, till) server-id span the sync
// collaborator should re-check for gaps.
func (h *History) RangeForDifferenceRequest() (from, till int64) {
	from = h.MinMsgID()
	if from == 0 {
		return 0, 0
	}
	return from, h.MaxMsgID() + 1
}

// MsgIDForRead is the id the inbound cursor advances to on "mark read".
func (h *History) MsgIDForRead() int64 {
	var result int64
	if last := h.LastMessage(); last != nil && last.IsServerID() {
		result = last.ID
	}
	if h.loadedAtBottom {
		if m := h.MaxMsgID(); m > result {
			result = m
		}
	}
	return result
}

// —— edge loading requests ——

// LoadOlder asks the sync collaborator for the next older page when the top
// edge is not loaded yet.
func (h *History) LoadOlder() {
	if h.loadedAtTop || h.buildingFront != nil {
		return
	}
	h.owner.requester.RequestOlderPage(h.ConvID, h.MinMsgID())
}

// LoadNewer asks for the next newer page when the bottom edge is not loaded.
func (h *History) LoadNewer() {
	if h.loadedAtBottom {
		return
	}
	h.owner.requester.RequestNewerPage(h.ConvID, h.MaxMsgID())
}

// —— scroll anchor ——

func (h *History) SetScrollAnchor(item *Item, offset int) {
	if item == nil {
		h.scrollAnchor = nil
		return
	}
	h.scrollAnchor = &ScrollAnchor{Item: item, Offset: offset}
}

func (h *History) GetScrollAnchor() (*Item, int, bool) {
	if h.scrollAnchor == nil {
		return nil, 0, false
	}
	return h.scrollAnchor.Item, h.scrollAnchor.Offset, true
}

// —— teardown ——

// Clear destroys the window's blocks and items (history deleted remotely).
func (h *History) Clear() {
	h.clearBlocks(false)
}

// Unload drops the blocks to free memory while keeping items referenced
// elsewhere alive. Always safe; cancels an in-progress front-block build and
// invalidates every anchor in the same step.
func (h *History) Unload() {
	h.clearBlocks(true)
}

func (h *History) clearBlocks(leaveItems bool) {
	h.unreadBar = nil
	h.unreadBarCount = 0
	h.unreadBarFrozen = false
	h.firstUnread = nil
	h.scrollAnchor = nil
	h.buildingFront = nil

	if !leaveItems {
		if h.peer.IsSupergroup() {
			// We left the conversation; everything is simply gone.
			h.lastMessage = nil
			h.lastMessageKnown = false
		} else {
			// History was deleted: the emptiness is known.
			h.setLastMessage(nil)
		}
		h.notifies = nil
	}
	for _, b := range h.blocks {
		for _, item := range b.items {
			item.block = nil
			item.indexInBlock = -1
			if !leaveItems {
				h.owner.registry.remove(h.ConvID, item.ID)
			}
		}
	}
	h.blocks = nil
	if leaveItems {
		h.lastKeyboardInited = false
	} else {
		h.changeUnreadCount(-h.UnreadCount())
		h.clearLastKeyboard()
	}
	h.loadedAtTop = false
	h.loadedAtBottom = !leaveItems
}

// ClearUpTill destroys the window's prefix below availableMinID, converting
// the boundary item into a history-clear marker when the ids collide.
func (h *History) ClearUpTill(availableMinID int64) {
	minID := h.MinMsgID()
	if minID == 0 || minID > availableMinID {
		return
	}
	for !h.IsEmpty() {
		item := h.blocks[0].items[0]
		itemID := item.ID
		if item.IsServerID() && itemID >= availableMinID {
			if itemID == availableMinID {
				item.applyEdition(ServiceContent{Kind: ServiceHistoryClear})
			}
			break
		}
		item.Destroy()
	}
	h.requestChatListMessage()
}
