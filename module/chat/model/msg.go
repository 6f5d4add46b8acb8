package model

// Raw wire records pushed by the sync side. The cache decodes only the fields
// it needs; everything else rides along opaquely in Ex.

const (
	MsgKindText    = "text"
	MsgKindMedia   = "media"
	MsgKindService = "service"
)

// Service actions the cache gives structural meaning to.
const (
	ActionGroupCreated  = "group_created"
	ActionMigrateTo     = "migrate_to"   // legacy group -> supergroup boundary
	ActionMigrateFrom   = "migrate_from" // first event inside the supergroup
	ActionHistoryClear  = "history_clear"
	ActionUserJoined    = "user_joined"
	ActionPinnedChanged = "pinned_changed"
)

type RawMessage struct {
	ConversationID string `json:"conversation_id" bson:"conversation_id"`
	ID             int64  `json:"id" bson:"id"`     // >0 server-confirmed, <0 local pending
	Date           int64  `json:"date" bson:"date"` // unix seconds
	From           string `json:"from" bson:"from"`
	Out            bool   `json:"out" bson:"out"`
	Unread         bool   `json:"unread" bson:"unread"`
	MentionsMe     bool   `json:"mentions_me" bson:"mentions_me"`
	IsMention      bool   `json:"is_mention" bson:"is_mention"` // carries an unread mention of us

	Kind    string       `json:"kind" bson:"kind"`
	Text    string       `json:"text,omitempty" bson:"text,omitempty"`
	Media   *RawMedia    `json:"media,omitempty" bson:"media,omitempty"`
	Service *RawService  `json:"service,omitempty" bson:"service,omitempty"`
	Markup  *RawKeyboard `json:"markup,omitempty" bson:"markup,omitempty"`

	MediaGroupID string         `json:"media_group_id,omitempty" bson:"media_group_id,omitempty"`
	Ex           map[string]any `json:"ex,omitempty" bson:"ex,omitempty"`
}

type RawMedia struct {
	Type    string `json:"type" bson:"type"` // photo / video / file / voice ...
	Ref     string `json:"ref" bson:"ref"`
	Caption string `json:"caption,omitempty" bson:"caption,omitempty"`
}

type RawService struct {
	Action string `json:"action" bson:"action"`
	Arg    string `json:"arg,omitempty" bson:"arg,omitempty"`
}

// RawKeyboard is the reply-keyboard descriptor. Hide is the sentinel that
// clears the tracked keyboard instead of setting it.
type RawKeyboard struct {
	Selective bool       `json:"selective,omitempty" bson:"selective,omitempty"`
	Hide      bool       `json:"hide,omitempty" bson:"hide,omitempty"`
	Rows      [][]string `json:"rows,omitempty" bson:"rows,omitempty"`
}

type RawDraft struct {
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
	ReplyTo        int64  `json:"reply_to,omitempty"`
	CursorPos      int    `json:"cursor_pos,omitempty"`
	Date           int64  `json:"date"`
}

// DialogSummary is the authoritative per-conversation summary the remote
// store reports alongside the dialog list.
type DialogSummary struct {
	ConversationID      string `json:"conversation_id"`
	UnreadCount         int    `json:"unread_count"`
	InboxReadMaxID      int64  `json:"read_inbox_max_id"`
	OutboxReadMaxID     int64  `json:"read_outbox_max_id"`
	UnreadMentionsCount int    `json:"unread_mentions_count"`
	UnreadMark          bool   `json:"unread_mark"`
	TopMessageID        int64  `json:"top_message"`
}

// IsServerMsgID reports whether id lives in the server-confirmed id space.
func IsServerMsgID(id int64) bool { return id > 0 }
