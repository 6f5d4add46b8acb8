package history

import (
	"time"

	chatmodel "PHistory/module/chat/model"
)

// Draft is one composing state. Local is what's in the input box here, cloud
// is the synced copy, edit is the in-progress message edit. Cloud drafts won
// by timestamp, so Date travels with the text.
type Draft struct {
	Text      string
	ReplyTo   int64
	CursorPos int
	Date      int64
}

func (d *Draft) IsEmpty() bool {
	return d == nil || (d.Text == "" && d.ReplyTo == 0)
}

func draftFromRaw(raw chatmodel.RawDraft) *Draft {
	return &Draft{
		Text:      raw.Text,
		ReplyTo:   raw.ReplyTo,
		CursorPos: raw.CursorPos,
		Date:      raw.Date,
	}
}

func (h *History) LocalDraft() *Draft { return h.localDraft }
func (h *History) CloudDraft() *Draft { return h.cloudDraft }
func (h *History) EditDraft() *Draft  { return h.editDraft }

// DraftShown is the composing state the UI presents: an edit in progress
// shadows the local draft, which shadows the synced one.
func (h *History) DraftShown() *Draft {
	if h.editDraft != nil {
		return h.editDraft
	}
	if h.localDraft != nil {
		return h.localDraft
	}
	return h.cloudDraft
}

func (h *History) SetLocalDraft(d *Draft) {
	if d != nil && d.Date == 0 {
		d.Date = h.owner.nowUnix()
	}
	h.localDraft = d
}

func (h *History) ClearLocalDraft() { h.localDraft = nil }
func (h *History) SetEditDraft(d *Draft) {
	h.editDraft = d
}
func (h *History) ClearEditDraft() { h.editDraft = nil }

// TakeLocalDraft moves the composing draft over from another window, used at
// the group migration boundary so mid-typed text survives. The reply target
// does not: message ids mean nothing across the boundary.
func (h *History) TakeLocalDraft(from *History) {
	d := from.localDraft
	if d == nil || d.Text == "" || h.localDraft != nil {
		return
	}
	from.localDraft = nil
	d.ReplyTo = 0
	h.localDraft = d
}

// SaveLocalDraftToCloud pushes the local draft out if it differs from the
// synced copy, and records the sent text for echo suppression.
func (h *History) SaveLocalDraftToCloud() {
	d := h.localDraft
	if d.IsEmpty() && h.cloudDraft.IsEmpty() {
		return
	}
	if !d.IsEmpty() && !h.cloudDraft.IsEmpty() &&
		d.Text == h.cloudDraft.Text && d.ReplyTo == h.cloudDraft.ReplyTo {
		return
	}
	raw := chatmodel.RawDraft{ConversationID: h.ConvID, Date: h.owner.nowUnix()}
	if !d.IsEmpty() {
		raw.Text = d.Text
		raw.ReplyTo = d.ReplyTo
		raw.CursorPos = d.CursorPos
	}
	h.SetSentDraftText(raw.Text)
	h.owner.requester.PushDraft(h.ConvID, raw)
}

func (h *History) SetSentDraftText(text string) {
	h.lastSentDraftText = &text
}

// ClearSentDraftText ends the echo-suppression window for a pushed draft once
// the push is acknowledged.
func (h *History) ClearSentDraftText(text string) {
	if h.lastSentDraftText != nil && *h.lastSentDraftText == text {
		h.lastSentDraftText = nil
	}
	if now := h.owner.nowUnix(); now > h.lastSentDraftTime {
		h.lastSentDraftTime = now
	}
}

// skipCloudDraft suppresses the echo of a draft we just pushed ourselves: the
// same text, or any cloud draft dated within the debounce window after our
// last push.
func (h *History) skipCloudDraft(text string, replyTo int64, date int64) bool {
	if text == "" && replyTo == 0 && date > 0 &&
		date <= h.lastSentDraftTime+int64(h.owner.cfg.DraftSkipDebounce/time.Second) {
		return true
	}
	if h.lastSentDraftText != nil && *h.lastSentDraftText == text {
		return true
	}
	return false
}

// ApplyCloudDraft folds a synced draft in; a newer cloud draft replaces the
// local composing state, an older one only updates the synced copy.
func (h *History) ApplyCloudDraft(raw chatmodel.RawDraft) {
	if h.skipCloudDraft(raw.Text, raw.ReplyTo, raw.Date) {
		return
	}
	d := draftFromRaw(raw)
	if d.IsEmpty() {
		h.cloudDraft = nil
	} else {
		h.cloudDraft = d
	}
	if h.localDraft == nil || h.localDraft.Date <= d.Date {
		switch {
		case d.IsEmpty():
			h.localDraft = nil
		case h.localDraft != nil:
			// 原地覆盖，保持 UI 持有的指针不失效
			*h.localDraft = *d
		default:
			cp := *d
			h.localDraft = &cp
		}
	}
}
