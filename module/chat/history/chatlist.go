package history

import (
	chatmodel "PHistory/module/chat/model"
)

// The chat-list projection is the message a conversation row shows. It is
// usually lastMessage, except around a group migration boundary: the
// migration service event itself never represents the conversation, so the
// projection skips it.

// ChatListMessage returns the projection item and whether it is known.
// A known nil means the conversation row has nothing to show.
func (h *History) ChatListMessage() (*Item, bool) {
	return h.chatListMessage, h.chatListKnown
}

func (h *History) setChatListMessage(item *Item) {
	h.chatListMessage = item
	h.chatListKnown = true
}

// refreshChatListMessage recomputes the projection from scratch, e.g. after a
// migration link changed which window owns the row.
func (h *History) refreshChatListMessage() {
	h.chatListMessage = nil
	h.chatListKnown = false
	h.requestChatListMessage()
}

// requestChatListMessage computes the projection locally when the loaded
// window suffices and falls back to a remote fetch when it does not.
func (h *History) requestChatListMessage() {
	if !h.lastMessageKnown {
		h.owner.requester.RequestChatListMessage(h.ConvID)
		return
	}
	h.setChatListMessageFromLast()
	if !h.chatListKnown {
		h.owner.requester.RequestChatListMessage(h.ConvID)
	}
}

func (h *History) setChatListMessageFromLast() {
	if item, known := h.computeChatListMessageFromLast(); known {
		h.setChatListMessage(item)
	} else {
		h.chatListMessage = nil
		h.chatListKnown = false
	}
}

// computeChatListMessageFromLast derives the projection from lastMessage.
// When the last message is the migration boundary:
//   - in the legacy group we walk back past boundary noise to the last real
//     message, which only works if the tail is loaded;
//   - in the supergroup we reuse the legacy window's projection, since the
//     pre-boundary messages live there.
func (h *History) computeChatListMessageFromLast() (*Item, bool) {
	if !h.lastMessageKnown {
		return nil, false
	}
	last := h.lastMessage
	if last == nil || !last.IsGroupMigrate() {
		return last, true
	}
	if h.peer.IsGroup() {
		if h.loadedAtBottom && last.MainView() {
			if before, found := h.walkBackSkippingEssential(last); found {
				return before, true
			}
			if h.loadedAtTop {
				// The whole window is boundary noise; known-empty row.
				return nil, true
			}
		}
		return nil, false
	}
	if h.peer.IsSupergroup() && h.peer.MigratedFrom != "" {
		if legacy := h.owner.HistoryLoaded(h.peer.MigratedFrom); legacy != nil && legacy.chatListKnown {
			return legacy.chatListMessage, true
		}
		return nil, false
	}
	return last, true
}

func (h *History) walkBackSkippingEssential(from *Item) (*Item, bool) {
	b := from.block
	idx := from.indexInBlock
	for {
		idx--
		for idx < 0 {
			if b.index == 0 {
				return nil, false
			}
			b = h.blocks[b.index-1]
			idx = len(b.items) - 1
		}
		if item := b.items[idx]; !item.IsGroupEssential() {
			return item, true
		}
	}
}

// checkChatListMessageRemoved re-derives the projection when its item left.
func (h *History) checkChatListMessageRemoved(item *Item) {
	if !h.chatListKnown || h.chatListMessage != item {
		return
	}
	h.chatListMessage = nil
	h.chatListKnown = false
	h.refreshChatListMessage()
}

// ApplyChatListMessage resolves a remote projection fetch: the returned
// message is tracked and becomes both lastMessage and the projection.
func (h *History) ApplyChatListMessage(raw chatmodel.RawMessage) {
	item := h.addToHistory(raw)
	if item == nil {
		h.setChatListMessage(nil)
		return
	}
	if !h.lastMessageKnown {
		// Do not route through setLastMessage: that would re-request the
		// projection we are resolving right now.
		h.lastMessage = item
		h.lastMessageKnown = true
	}
	h.setChatListMessage(item)
}
