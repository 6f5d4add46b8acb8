package history

import (
	chatmodel "PHistory/module/chat/model"
)

// ServiceKind classifies service events the window gives structural meaning to.
type ServiceKind int

const (
	ServiceCustom ServiceKind = iota
	ServiceGroupCreated
	ServiceMigrateTo // legacy group -> supergroup boundary
	ServiceMigrateFrom
	ServiceHistoryClear
	ServiceUserJoined
)

func serviceKindOf(action string) ServiceKind {
	switch action {
	case chatmodel.ActionGroupCreated:
		return ServiceGroupCreated
	case chatmodel.ActionMigrateTo:
		return ServiceMigrateTo
	case chatmodel.ActionMigrateFrom:
		return ServiceMigrateFrom
	case chatmodel.ActionHistoryClear:
		return ServiceHistoryClear
	case chatmodel.ActionUserJoined:
		return ServiceUserJoined
	}
	return ServiceCustom
}

// Content is the tagged payload variant of an Item. Dispatch is by type
// switch; there is no deep hierarchy behind it.
type Content interface{ content() }

type TextContent struct {
	Text string
}

type MediaContent struct {
	Type    string
	Ref     string
	Caption string
}

type ServiceContent struct {
	Kind ServiceKind
	Text string
}

func (TextContent) content()    {}
func (MediaContent) content()   {}
func (ServiceContent) content() {}

// Keyboard is the reply-keyboard descriptor carried by an Item. Hide is the
// sentinel that clears the tracked keyboard instead of setting it.
type Keyboard struct {
	Selective bool
	Hide      bool
	Rows      [][]string
}

// Item is a single message or service event. Identity (conversation id,
// message id) is stable process-wide: two ingests of the same id always yield
// the same Item. Content is mutable, identity is not.
type Item struct {
	history *History

	ID   int64 // >0 server-confirmed, <0 local pending
	Date int64
	From string

	out        bool
	unread     bool
	mentionsMe bool
	isMention  bool

	content    Content
	keyboard   *Keyboard
	mediaGroup string

	// main view attachment: position inside the owning window's blocks
	block        *Block
	indexInBlock int
}

func newItem(h *History, raw chatmodel.RawMessage) *Item {
	it := &Item{
		history:    h,
		ID:         raw.ID,
		Date:       raw.Date,
		From:       raw.From,
		out:        raw.Out,
		unread:     raw.Unread,
		mentionsMe: raw.MentionsMe,
		isMention:  raw.IsMention,
		mediaGroup: raw.MediaGroupID,
	}
	it.content = contentOf(raw)
	if raw.Markup != nil {
		it.keyboard = &Keyboard{
			Selective: raw.Markup.Selective,
			Hide:      raw.Markup.Hide,
			Rows:      raw.Markup.Rows,
		}
	}
	return it
}

func contentOf(raw chatmodel.RawMessage) Content {
	switch raw.Kind {
	case chatmodel.MsgKindService:
		if raw.Service != nil {
			return ServiceContent{Kind: serviceKindOf(raw.Service.Action), Text: raw.Service.Arg}
		}
		return ServiceContent{Kind: ServiceCustom}
	case chatmodel.MsgKindMedia:
		if raw.Media != nil {
			return MediaContent{Type: raw.Media.Type, Ref: raw.Media.Ref, Caption: raw.Media.Caption}
		}
		return MediaContent{}
	}
	return TextContent{Text: raw.Text}
}

func (i *Item) History() *History { return i.history }
func (i *Item) Content() Content  { return i.content }
func (i *Item) Out() bool         { return i.out }
func (i *Item) Unread() bool      { return i.unread }
func (i *Item) MentionsMe() bool  { return i.mentionsMe }
func (i *Item) Keyboard() *Keyboard {
	return i.keyboard
}
func (i *Item) MediaGroupID() string { return i.mediaGroup }

func (i *Item) markRead() { i.unread = false }

// IsServerID reports whether the item lives in the server-confirmed id space.
func (i *Item) IsServerID() bool { return chatmodel.IsServerMsgID(i.ID) }

func (i *Item) IsService() bool {
	_, ok := i.content.(ServiceContent)
	return ok
}

// IsGroupMigrate reports whether this is the migration-boundary service
// event, on either side of the boundary.
func (i *Item) IsGroupMigrate() bool {
	sc, ok := i.content.(ServiceContent)
	return ok && (sc.Kind == ServiceMigrateTo || sc.Kind == ServiceMigrateFrom)
}

// IsGroupEssential: creation/migration events that anchor the top edge.
func (i *Item) IsGroupEssential() bool {
	sc, ok := i.content.(ServiceContent)
	return ok && (sc.Kind == ServiceGroupCreated || sc.Kind == ServiceMigrateTo || sc.Kind == ServiceMigrateFrom)
}

func (i *Item) DefinesReplyKeyboard() bool { return i.keyboard != nil }

// MainView reports whether the item is currently spliced into its window's
// visible block sequence.
func (i *Item) MainView() bool { return i.block != nil }

// removeMainView severs the visual attachment without destroying the item.
func (i *Item) removeMainView() {
	if i.block != nil {
		i.block.remove(i)
	}
}

// updateSentMedia refreshes mutable media content in place, keeping identity.
func (i *Item) updateSentMedia(raw *chatmodel.RawMedia) {
	if raw == nil {
		return
	}
	i.content = MediaContent{Type: raw.Type, Ref: raw.Ref, Caption: raw.Caption}
}

// applyEdition replaces the content payload (last-writer-wins, as delivered).
func (i *Item) applyEdition(c Content) {
	i.content = c
}

// Destroy removes the item from its window and from the registry.
func (i *Item) Destroy() {
	h := i.history
	i.removeMainView()
	h.itemRemoved(i)
	h.owner.registry.remove(h.ConvID, i.ID)
}
