package history

import (
	"go.uber.org/zap"

	"PHistory/logger"
	chatmodel "PHistory/module/chat/model"
)

// UnreadMentionKind distinguishes a live mention push from an id replayed
// out of a fetched page.
type UnreadMentionKind int

const (
	UnreadMentionNew UnreadMentionKind = iota
	UnreadMentionExisting
)

// Read cursors are stored as "read before id": an item is read iff
// item.ID < cursor. Both cursors only ever move forward.

func (h *History) setInboxReadTill(upTo int64) {
	v := upTo + 1
	if h.inboxReadBefore == nil || *h.inboxReadBefore < v {
		h.inboxReadBefore = &v
	}
}

func (h *History) setOutboxReadTill(upTo int64) {
	v := upTo + 1
	if h.outboxReadBefore == nil || *h.outboxReadBefore < v {
		h.outboxReadBefore = &v
	}
}

func (h *History) InboxReadBefore() (int64, bool) {
	if h.inboxReadBefore == nil {
		return 0, false
	}
	return *h.inboxReadBefore, true
}

func (h *History) OutboxReadBefore() (int64, bool) {
	if h.outboxReadBefore == nil {
		return 0, false
	}
	return *h.outboxReadBefore, true
}

// IsServerSideUnread reports whether the item sits at-or-past the relevant
// cursor; an unknown cursor means "assume unread".
func (h *History) IsServerSideUnread(item *Item) bool {
	readTill := h.inboxReadBefore
	if item.out {
		readTill = h.outboxReadBefore
	}
	return readTill == nil || item.ID >= *readTill
}

// InboxRead applies a remote inbound-cursor advance (this account read the
// conversation elsewhere). The unread count is recomputed locally when the
// loaded window allows it, otherwise it becomes unknown until the next
// dialog summary.
func (h *History) InboxRead(upTo int64) {
	if still, ok := h.countStillUnreadLocal(upTo); ok {
		h.setUnreadCount(still)
	} else {
		h.unreadCount = nil
	}
	h.setInboxReadTill(upTo)
	h.markReadTill(upTo, false)
	h.removeNotificationsTill(upTo)
	h.persistWindowState()
}

// OutboxRead applies a read receipt from the counterpart.
func (h *History) OutboxRead(upTo int64) {
	h.setOutboxReadTill(upTo)
	h.markReadTill(upTo, true)
	h.persistWindowState()
}

// ReadInbox is the user-driven "mark read": it zeroes the unread state,
// advances the cursor to the newest readable id and pushes the acknowledgment
// out through the sync collaborator.
func (h *History) ReadInbox() {
	upTo := h.MsgIDForRead()
	if h.UnreadCount() > 0 {
		h.DestroyUnreadBar()
	}
	h.setUnreadCount(0)
	h.unreadMark = false
	h.notifies = nil
	if upTo > 0 {
		h.setInboxReadTill(upTo)
		h.markReadTill(upTo, false)
		h.owner.requester.PushReadTill(h.ConvID, false, upTo)
	}
	h.persistWindowState()
}

func (h *History) markReadTill(upTo int64, outgoing bool) {
	for _, b := range h.blocks {
		for _, item := range b.items {
			if item.out == outgoing && item.IsServerID() && item.ID <= upTo {
				item.markRead()
			}
		}
	}
}

// countUnread counts inbound unread items newer than upTo, scanning backward
// and stopping at the first server id at-or-below the cursor.
func (h *History) countUnread(upTo int64) int {
	result := 0
	for i := len(h.blocks); i > 0; {
		i--
		items := h.blocks[i].items
		for j := len(items); j > 0; {
			j--
			item := items[j]
			if item.IsServerID() && item.ID <= upTo {
				return result
			}
			if !item.out && item.unread {
				result++
			}
		}
	}
	return result
}

// countStillUnreadLocal answers "after reading till readTill, how many stay
// unread" from loaded data alone, when the loaded span covers the question.
func (h *History) countStillUnreadLocal(readTill int64) (int, bool) {
	if h.IsEmpty() {
		return 0, false
	}
	if h.inboxReadBefore != nil {
		if h.MinMsgID() <= *h.inboxReadBefore && h.MaxMsgID() >= readTill {
			result := 0
			for _, b := range h.blocks {
				for _, item := range b.items {
					if item.IsServerID() && item.ID > readTill && !item.out && item.unread {
						result++
					}
				}
			}
			return result, true
		}
	}
	if h.loadedAtBottom && h.MinMsgID() <= readTill {
		return h.countUnread(readTill), true
	}
	return 0, false
}

// —— unread count ——

func (h *History) UnreadCount() int {
	if h.unreadCount == nil {
		return 0
	}
	return *h.unreadCount
}

func (h *History) UnreadCountKnown() bool { return h.unreadCount != nil }

func (h *History) UnreadMark() bool     { return h.unreadMark }
func (h *History) SetUnreadMark(v bool) { h.unreadMark = v }

func (h *History) changeUnreadCount(delta int) {
	if delta == 0 || h.unreadCount == nil {
		if delta > 0 && h.unreadCount == nil {
			// Count unknown: a fresh unread still has to surface somewhere.
			h.setUnreadCount(delta)
		}
		return
	}
	n := *h.unreadCount + delta
	if n < 0 {
		n = 0
	}
	if h.unreadBar != nil && !h.unreadBarFrozen && delta > 0 {
		h.unreadBarCount += delta
	}
	h.setUnreadCount(n)
}

// setUnreadCount also maintains the first-unread anchor and, for the trivial
// counts, re-derives the inbound cursor from the last message.
func (h *History) setUnreadCount(n int) {
	if h.unreadCount != nil && *h.unreadCount == n {
		return
	}
	switch {
	case n == 1:
		if h.loadedAtBottom {
			h.firstUnread = h.lastAvailableMessage()
		}
		if last := h.lastMessage; last != nil && last.IsServerID() {
			h.setInboxReadTill(last.ID - 1)
		}
	case n == 0:
		h.firstUnread = nil
		if last := h.lastMessage; last != nil && last.IsServerID() {
			h.setInboxReadTill(last.ID)
		}
	default:
		if h.firstUnread == nil && h.unreadBar == nil && h.loadedAtBottom {
			h.calculateFirstUnreadMessage()
		}
	}
	h.unreadCount = &n
}

// —— first unread / unread bar ——

func (h *History) FirstUnreadMessage() *Item { return h.firstUnread }

func (h *History) calculateFirstUnreadMessage() {
	if h.inboxReadBefore == nil {
		return
	}
	for i := len(h.blocks); i > 0; {
		i--
		items := h.blocks[i].items
		for j := len(items); j > 0; {
			j--
			item := items[j]
			if !item.IsServerID() {
				continue
			}
			if item.ID < *h.inboxReadBefore {
				return
			}
			if !item.out {
				h.firstUnread = item
			}
		}
	}
}

// getNextFirstUnreadMessage re-anchors firstUnread after its item left the
// window: the next attached non-service item takes over, else the anchor dies.
func (h *History) getNextFirstUnreadMessage(b *Block, index int) {
	for i := index + 1; i < len(b.items); i++ {
		if !b.items[i].IsService() {
			h.firstUnread = b.items[i]
			return
		}
	}
	for bi := b.index + 1; bi < len(h.blocks); bi++ {
		for _, item := range h.blocks[bi].items {
			if !item.IsService() {
				h.firstUnread = item
				return
			}
		}
	}
	h.firstUnread = nil
}

// AddUnreadBar pins the "unread messages" divider at the first unread item.
// The shown count keeps growing with fresh unreads until the bar is frozen.
func (h *History) AddUnreadBar() {
	if h.unreadBar != nil || h.firstUnread == nil || !h.UnreadCountKnown() {
		return
	}
	h.unreadBar = h.firstUnread
	h.unreadBarCount = h.UnreadCount()
	h.unreadBarFrozen = false
}

func (h *History) FreezeUnreadBar() {
	if h.unreadBar != nil {
		h.unreadBarFrozen = true
	}
}

func (h *History) DestroyUnreadBar() {
	h.unreadBar = nil
	h.unreadBarCount = 0
	h.unreadBarFrozen = false
}

func (h *History) UnreadBar() (item *Item, count int, ok bool) {
	if h.unreadBar == nil {
		return nil, 0, false
	}
	return h.unreadBar, h.unreadBarCount, true
}

// —— unread mentions ——

// AddToUnreadMentions admits an id into the unread-mention set. Only live
// pushes are admitted while the set is still short of the server total;
// replayed ids would make the count ambiguous before then.
func (h *History) AddToUnreadMentions(id int64, kind UnreadMentionKind) {
	if !chatmodel.IsServerMsgID(id) {
		return
	}
	if _, ok := h.unreadMentions[id]; ok {
		return
	}
	complete := h.unreadMentionsCount != nil &&
		len(h.unreadMentions) >= *h.unreadMentionsCount
	if kind == UnreadMentionNew {
		h.unreadMentions[id] = struct{}{}
		if h.unreadMentionsCount != nil {
			*h.unreadMentionsCount++
		}
		return
	}
	if complete {
		h.unreadMentions[id] = struct{}{}
		if len(h.unreadMentions) > *h.unreadMentionsCount {
			logger.Warn("unread mention set exceeds server count",
				zap.String("conv", h.ConvID),
				zap.Int("local", len(h.unreadMentions)),
				zap.Int("server", *h.unreadMentionsCount))
			*h.unreadMentionsCount = len(h.unreadMentions)
		}
	}
}

func (h *History) EraseFromUnreadMentions(id int64) {
	if _, ok := h.unreadMentions[id]; !ok {
		return
	}
	delete(h.unreadMentions, id)
	if h.unreadMentionsCount != nil && *h.unreadMentionsCount > 0 {
		*h.unreadMentionsCount--
	}
}

// SetUnreadMentionsCount reconciles the server total with the local set; a
// larger local set wins, the divergence is only logged.
func (h *History) SetUnreadMentionsCount(n int) {
	if len(h.unreadMentions) > n {
		logger.Warn("server mention count below local set, keeping local",
			zap.String("conv", h.ConvID),
			zap.Int("local", len(h.unreadMentions)),
			zap.Int("server", n))
		n = len(h.unreadMentions)
	}
	h.unreadMentionsCount = &n
}

func (h *History) UnreadMentionsCount() int {
	if h.unreadMentionsCount == nil {
		return len(h.unreadMentions)
	}
	return *h.unreadMentionsCount
}

func (h *History) HasUnreadMentions() bool { return h.UnreadMentionsCount() > 0 }

// —— persistence unit ——

// hydrate applies the persisted snapshot before any remote data arrives; the
// counters carry over as a conservative starting point until the next dialog
// summary reconciles them.
func (h *History) hydrate(p Persister) {
	if s, ok := p.LoadWindowState(h.ConvID); ok {
		if s.InboxReadBefore > 0 {
			h.setInboxReadTill(s.InboxReadBefore - 1)
		}
		if s.OutboxReadBefore > 0 {
			h.setOutboxReadTill(s.OutboxReadBefore - 1)
		}
		if s.UnreadCount > 0 {
			h.setUnreadCount(s.UnreadCount)
		}
		h.unreadMark = s.UnreadMark
		if s.MentionsCount > 0 {
			h.SetUnreadMentionsCount(s.MentionsCount)
		}
	}
	if d, ok := p.LoadDraft(h.ConvID); ok && d != nil {
		h.localDraft = draftFromRaw(*d)
	}
}

// Snapshot exports the scalar persistence unit.
func (h *History) Snapshot() WindowSnapshot {
	var s WindowSnapshot
	if h.inboxReadBefore != nil {
		s.InboxReadBefore = *h.inboxReadBefore
	}
	if h.outboxReadBefore != nil {
		s.OutboxReadBefore = *h.outboxReadBefore
	}
	s.UnreadCount = h.UnreadCount()
	s.UnreadMark = h.unreadMark
	s.MentionsCount = h.UnreadMentionsCount()
	return s
}

func (h *History) persistWindowState() {
	if h.owner.persister != nil {
		h.owner.persister.SaveWindowState(h.ConvID, h.Snapshot())
	}
}

// —— dialog summary ——

// ApplyDialogSummary folds a server-side conversation summary into the
// window: top message, cursors, unread counters. The top message is resolved
// before the counters so the anchor rules see it.
func (h *History) ApplyDialogSummary(s chatmodel.DialogSummary) {
	if s.TopMessageID > 0 {
		if item := h.owner.registry.Item(h.ConvID, s.TopMessageID); item != nil {
			h.setLastMessage(item)
		} else {
			h.lastMessage = nil
			h.lastMessageKnown = false
			h.chatListMessage = nil
			h.chatListKnown = false
			h.owner.requester.RequestChatListMessage(h.ConvID)
		}
	}
	if s.InboxReadMaxID > 0 {
		h.setInboxReadTill(s.InboxReadMaxID)
		h.markReadTill(s.InboxReadMaxID, false)
	}
	if s.OutboxReadMaxID > 0 {
		h.setOutboxReadTill(s.OutboxReadMaxID)
		h.markReadTill(s.OutboxReadMaxID, true)
	}
	h.setUnreadCount(s.UnreadCount)
	h.unreadMark = s.UnreadMark
	h.SetUnreadMentionsCount(s.UnreadMentionsCount)
	h.persistWindowState()
}
