package model

type PeerKind int32

const (
	PeerUser       PeerKind = 100 // 单聊
	PeerGroup      PeerKind = 200 // 旧式群
	PeerSupergroup PeerKind = 300
)

// Peer is the conversation counterpart as known to the cache. Member and bot
// lists may be unknown (nil + flag false), which is different from empty.
type Peer struct {
	ID   string   `json:"id"`
	Kind PeerKind `json:"kind"`

	// Migration links. A legacy group that was converted carries MigratedTo;
	// the supergroup it became carries MigratedFrom.
	MigratedTo   string `json:"migrated_to,omitempty"`
	MigratedFrom string `json:"migrated_from,omitempty"`

	MembersKnown bool     `json:"members_known,omitempty"`
	Members      []string `json:"members,omitempty"`
	BotsKnown    bool     `json:"bots_known,omitempty"`
	Bots         []string `json:"bots,omitempty"`
}

func (p *Peer) IsUser() bool       { return p.Kind == PeerUser }
func (p *Peer) IsGroup() bool      { return p.Kind == PeerGroup }
func (p *Peer) IsSupergroup() bool { return p.Kind == PeerSupergroup }

func (p *Peer) HasMember(user string) bool {
	for _, m := range p.Members {
		if m == user {
			return true
		}
	}
	return false
}

func (p *Peer) HasBot(user string) bool {
	for _, b := range p.Bots {
		if b == user {
			return true
		}
	}
	return false
}
