package storage

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"PHistory/logger"
	"PHistory/module/chat/history"
	chatmodel "PHistory/module/chat/model"
	"PHistory/tools/safe"
)

// Persist 把每个会话的小标量状态（读游标、未读数、草稿）落到 redis，
// 重启后在收到首个会话摘要之前先用这份快照兜底。
type Persist struct {
	rdb *redis.Client
}

func NewPersist(rdb *redis.Client) *Persist { return &Persist{rdb: rdb} }

func winKey(conv string) string   { return "phistory:win:" + conv }
func draftKey(conv string) string { return "phistory:draft:" + conv }

// WindowState 是会话窗口可持久化的标量部分。
type WindowState struct {
	InboxReadBefore  int64
	OutboxReadBefore int64
	UnreadCount      int
	UnreadMark       bool
	MentionsCount    int
}

func (p *Persist) SaveWindowState(ctx context.Context, conv string, st WindowState) error {
	mark := 0
	if st.UnreadMark {
		mark = 1
	}
	err := p.rdb.HSet(ctx, winKey(conv), map[string]any{
		"inbox_read_before":  st.InboxReadBefore,
		"outbox_read_before": st.OutboxReadBefore,
		"unread_count":       st.UnreadCount,
		"unread_mark":        mark,
		"mentions_count":     st.MentionsCount,
	}).Err()
	return errors.Wrapf(err, "save window state %s", conv)
}

// LoadWindowState returns (nil, nil) when nothing was stored for conv.
func (p *Persist) LoadWindowState(ctx context.Context, conv string) (*WindowState, error) {
	m, err := p.rdb.HGetAll(ctx, winKey(conv)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "load window state %s", conv)
	}
	if len(m) == 0 {
		return nil, nil
	}
	st := &WindowState{
		InboxReadBefore:  parseI64(m["inbox_read_before"]),
		OutboxReadBefore: parseI64(m["outbox_read_before"]),
		UnreadCount:      int(parseI64(m["unread_count"])),
		UnreadMark:       m["unread_mark"] == "1",
		MentionsCount:    int(parseI64(m["mentions_count"])),
	}
	return st, nil
}

// ConservativeUnread 给会话列表一个保守的未读角标：落盘快照里的未读数。
// 拿不到快照时按 0 处理，宁可少亮不多亮。
func (p *Persist) ConservativeUnread(ctx context.Context, conv string) int {
	v, err := p.rdb.HGet(ctx, winKey(conv), "unread_count").Result()
	if err == redis.Nil || err != nil {
		return 0
	}
	if n := parseI64(v); n > 0 {
		return int(n)
	}
	return 0
}

func (p *Persist) SaveDraft(ctx context.Context, d chatmodel.RawDraft) error {
	if d.Text == "" && d.ReplyTo == 0 {
		return errors.Wrapf(p.rdb.Del(ctx, draftKey(d.ConversationID)).Err(),
			"clear draft %s", d.ConversationID)
	}
	err := p.rdb.HSet(ctx, draftKey(d.ConversationID), map[string]any{
		"text":       d.Text,
		"reply_to":   d.ReplyTo,
		"cursor_pos": d.CursorPos,
		"date":       d.Date,
	}).Err()
	return errors.Wrapf(err, "save draft %s", d.ConversationID)
}

func (p *Persist) LoadDraft(ctx context.Context, conv string) (*chatmodel.RawDraft, error) {
	m, err := p.rdb.HGetAll(ctx, draftKey(conv)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "load draft %s", conv)
	}
	if len(m) == 0 {
		return nil, nil
	}
	return &chatmodel.RawDraft{
		ConversationID: conv,
		Text:           m["text"],
		ReplyTo:        parseI64(m["reply_to"]),
		CursorPos:      int(parseI64(m["cursor_pos"])),
		Date:           parseI64(m["date"]),
	}, nil
}

func parseI64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

const persistTimeout = 3 * time.Second

// WindowPersister 把 Persist 适配到窗口侧的 Persister 接口：
// 读在窗口首次引用时同步执行，写走后台 goroutine，不阻塞应用循环。
type WindowPersister struct {
	p *Persist
}

func NewWindowPersister(p *Persist) *WindowPersister { return &WindowPersister{p: p} }

func (w *WindowPersister) SaveWindowState(conv string, s history.WindowSnapshot) {
	st := WindowState{
		InboxReadBefore:  s.InboxReadBefore,
		OutboxReadBefore: s.OutboxReadBefore,
		UnreadCount:      s.UnreadCount,
		UnreadMark:       s.UnreadMark,
		MentionsCount:    s.MentionsCount,
	}
	safe.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := w.p.SaveWindowState(ctx, conv, st); err != nil {
			logger.Errorf("persist window state: %v", err)
		}
	})
}

func (w *WindowPersister) LoadWindowState(conv string) (history.WindowSnapshot, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	st, err := w.p.LoadWindowState(ctx, conv)
	if err != nil {
		logger.Errorf("load window state: %v", err)
		// 整体快照读不到时退回保守未读角标
		if n := w.p.ConservativeUnread(ctx, conv); n > 0 {
			return history.WindowSnapshot{UnreadCount: n}, true
		}
		return history.WindowSnapshot{}, false
	}
	if st == nil {
		return history.WindowSnapshot{}, false
	}
	return history.WindowSnapshot{
		InboxReadBefore:  st.InboxReadBefore,
		OutboxReadBefore: st.OutboxReadBefore,
		UnreadCount:      st.UnreadCount,
		UnreadMark:       st.UnreadMark,
		MentionsCount:    st.MentionsCount,
	}, true
}

func (w *WindowPersister) LoadDraft(conv string) (*chatmodel.RawDraft, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	d, err := w.p.LoadDraft(ctx, conv)
	if err != nil {
		logger.Errorf("load draft: %v", err)
		return nil, false
	}
	if d == nil {
		return nil, false
	}
	return d, true
}
