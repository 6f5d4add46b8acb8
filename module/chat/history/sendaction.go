package history

import (
	"fmt"
	"sort"
	"strings"
)

// SendActionType is the composing activity a participant announced.
type SendActionType int

const (
	SendActionTyping SendActionType = iota + 1
	SendActionCancel
	SendActionRecordVoice
	SendActionUploadVoice
	SendActionRecordVideo
	SendActionUploadVideo
	SendActionUploadPhoto
	SendActionUploadFile
	SendActionChooseLocation
	SendActionChooseContact
	SendActionPlayGame
)

const (
	// how long an announced action stays visible without a refresh
	typingExpireMs   = 6000
	playGameExpireMs = 10000
	// how long our own announcement covers on the remote side
	myActionForMs = 10000
)

type sendAction struct {
	typ      SendActionType
	untilMs  int64
	progress int
}

func (h *History) typingTTLMs() int64 {
	if d := h.owner.cfg.TypingExpire; d > 0 {
		return d.Milliseconds()
	}
	return typingExpireMs
}

func (h *History) myActionTTLMs() int64 {
	if d := h.owner.cfg.MyActionTTL; d > 0 {
		return d.Milliseconds()
	}
	return myActionForMs
}

// RegisterSendAction records a participant's announced activity with its
// expiry. Typing and the other actions are mutually exclusive per user.
func (h *History) RegisterSendAction(user string, typ SendActionType, progress int) {
	now := h.owner.nowMs()
	switch typ {
	case SendActionCancel:
		delete(h.typing, user)
		delete(h.sendActions, user)
	case SendActionTyping:
		h.typing[user] = now + h.typingTTLMs()
		delete(h.sendActions, user)
	case SendActionPlayGame:
		h.sendActions[user] = sendAction{typ: typ, untilMs: now + playGameExpireMs, progress: progress}
		delete(h.typing, user)
	default:
		h.sendActions[user] = sendAction{typ: typ, untilMs: now + h.typingTTLMs(), progress: progress}
		delete(h.typing, user)
	}
	h.updateSendActionString()
}

// ClearSendAction drops a user's activity immediately; a message from that
// user supersedes any "is typing" state.
func (h *History) ClearSendAction(user string) {
	_, hadTyping := h.typing[user]
	_, hadAction := h.sendActions[user]
	if !hadTyping && !hadAction {
		return
	}
	delete(h.typing, user)
	delete(h.sendActions, user)
	h.updateSendActionString()
}

// SweepSendActions expires stale entries; reports whether anything is still
// active so the owner's ticker knows to keep going.
func (h *History) SweepSendActions(nowMs int64) bool {
	changed := false
	for user, until := range h.typing {
		if until <= nowMs {
			delete(h.typing, user)
			changed = true
		}
	}
	for user, a := range h.sendActions {
		if a.untilMs <= nowMs {
			delete(h.sendActions, user)
			changed = true
		}
	}
	if changed {
		h.updateSendActionString()
	}
	return len(h.typing) > 0 || len(h.sendActions) > 0
}

// SendActionString is the rendered composite status line, empty when idle.
func (h *History) SendActionString() string { return h.sendActionString }

func (h *History) updateSendActionString() {
	if len(h.typing) > 0 {
		users := make([]string, 0, len(h.typing))
		for u := range h.typing {
			users = append(users, u)
		}
		sort.Strings(users)
		switch len(users) {
		case 1:
			h.sendActionString = fmt.Sprintf("%s is typing...", users[0])
		case 2:
			h.sendActionString = fmt.Sprintf("%s and %s are typing...", users[0], users[1])
		default:
			h.sendActionString = fmt.Sprintf("%d members are typing...", len(users))
		}
		return
	}
	if len(h.sendActions) == 0 {
		h.sendActionString = ""
		return
	}
	users := make([]string, 0, len(h.sendActions))
	for u := range h.sendActions {
		users = append(users, u)
	}
	sort.Strings(users)
	if len(users) == 1 {
		u := users[0]
		h.sendActionString = fmt.Sprintf("%s is %s...", u, sendActionVerb(h.sendActions[u].typ))
		return
	}
	verbs := make([]string, 0, len(users))
	for _, u := range users {
		verbs = append(verbs, fmt.Sprintf("%s is %s", u, sendActionVerb(h.sendActions[u].typ)))
	}
	h.sendActionString = strings.Join(verbs, ", ") + "..."
}

func sendActionVerb(typ SendActionType) string {
	switch typ {
	case SendActionRecordVoice:
		return "recording a voice message"
	case SendActionUploadVoice:
		return "sending a voice message"
	case SendActionRecordVideo:
		return "recording a video"
	case SendActionUploadVideo:
		return "sending a video"
	case SendActionUploadPhoto:
		return "sending a photo"
	case SendActionUploadFile:
		return "sending a file"
	case SendActionChooseLocation:
		return "picking a location"
	case SendActionChooseContact:
		return "picking a contact"
	case SendActionPlayGame:
		return "playing a game"
	}
	return "typing"
}

// UpdateOwnSendAction records our own announcement of typ and reports whether
// it actually needs pushing: within the first half of the announce TTL a
// repeat is suppressed, past it the announcement is refreshed.
func (h *History) UpdateOwnSendAction(typ SendActionType) bool {
	now := h.owner.nowMs()
	if typ == SendActionCancel {
		if len(h.myActions) == 0 {
			return false
		}
		h.myActions = make(map[SendActionType]int64)
		return true
	}
	ttl := h.myActionTTLMs()
	if until, ok := h.myActions[typ]; ok && now < until-ttl/2 {
		return false
	}
	h.myActions[typ] = now + ttl
	return true
}
