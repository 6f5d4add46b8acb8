package history

// Pending notifications are the inbound unread items the alerting collaborator
// has not consumed yet, in arrival order. Reading the conversation or losing
// the item drains them.

func (h *History) HasNotification() bool { return len(h.notifies) > 0 }

func (h *History) CurrentNotification() *Item {
	if len(h.notifies) == 0 {
		return nil
	}
	return h.notifies[0]
}

// SkipNotification drops the front of the queue after it was shown.
func (h *History) SkipNotification() {
	if len(h.notifies) > 0 {
		h.notifies = h.notifies[1:]
	}
}

// PopNotification retracts the newest queued item if it matches, for the case
// where the item was deleted right after arriving.
func (h *History) PopNotification(item *Item) {
	if n := len(h.notifies); n > 0 && h.notifies[n-1] == item {
		h.notifies = h.notifies[:n-1]
	}
}

func (h *History) ClearNotifications() { h.notifies = nil }

func (h *History) removeNotification(item *Item) {
	for i, it := range h.notifies {
		if it == item {
			h.notifies = append(h.notifies[:i], h.notifies[i+1:]...)
			return
		}
	}
}

// removeNotificationsTill drains queued items made read by a cursor advance.
func (h *History) removeNotificationsTill(upTo int64) {
	kept := h.notifies[:0]
	for _, it := range h.notifies {
		if it.IsServerID() && it.ID <= upTo {
			continue
		}
		kept = append(kept, it)
	}
	h.notifies = kept
}
