package sync

import (
	"context"
	"encoding/json"
	"time"

	"PHistory/logger"
	"PHistory/module/chat/history"
	chatmodel "PHistory/module/chat/model"
	"PHistory/service/storage"
	"PHistory/tools/errs"
	"PHistory/tools/safe"
)

// Consumer 订阅事件面并串行应用：窗口的全部变更都发生在 Run 的 goroutine
// 里，核心包因此不需要锁。
type Consumer struct {
	client *Client
	mgr    *history.Manager
	pages  *storage.PageStore // 可选，本地页归档
	apply  chan func()
}

func NewConsumer(client *Client, mgr *history.Manager, pages *storage.PageStore) *Consumer {
	return &Consumer{
		client: client,
		mgr:    mgr,
		pages:  pages,
		apply:  make(chan func(), 1024),
	}
}

// Enqueue 把一个闭包排进串行应用队列，供其它协作方回灌用。
func (c *Consumer) Enqueue(fn func()) { c.apply <- fn }

// Run 挂上全部订阅后进入应用循环，ctx 取消时退出。
func (c *Consumer) Run(ctx context.Context) error {
	handlers := map[string]func([]byte){
		SubjectPush:     c.onPush,
		SubjectDialog:   c.onDialog,
		SubjectDraft:    c.onDraft,
		SubjectTyping:   c.onTyping,
		SubjectRead:     c.onRead,
		SubjectPage:     c.onPage,
		SubjectChatList: c.onChatList,
		SubjectDeleted:  c.onDeleted,
	}
	for subject, fn := range handlers {
		if err := c.client.Subscribe(subject, fn); err != nil {
			return err
		}
	}
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-c.apply:
			fn()
		case <-ticker.C:
			c.mgr.SweepSendActions()
		}
	}
}

// 事件信封

type pushEvent struct {
	Unread  bool                 `json:"unread"`
	Message chatmodel.RawMessage `json:"message"`
}

type pageEvent struct {
	ConversationID string                 `json:"conversation_id"`
	Older          bool                   `json:"older"`
	Messages       []chatmodel.RawMessage `json:"messages"` // 最新在前
}

type readEvent struct {
	ConversationID string `json:"conversation_id"`
	Outbox         bool   `json:"outbox"`
	UpTo           int64  `json:"up_to"`
}

type typingEvent struct {
	ConversationID string `json:"conversation_id"`
	User           string `json:"user"`
	Action         int    `json:"action"`
	Progress       int    `json:"progress"`
}

type deletedEvent struct {
	ConversationID string `json:"conversation_id"`
	ID             int64  `json:"id"`
}

type chatListEvent struct {
	ConversationID string                `json:"conversation_id"`
	Message        *chatmodel.RawMessage `json:"message"`
}

func decodeEvent[T any](data []byte) (*T, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errs.NewCodeError(errs.CodeUnexpectedPayload, "bad json").WithDetail(err.Error())
	}
	return chatmodel.DecodeInto[T](m)
}

func (c *Consumer) onPush(data []byte) {
	ev, err := decodeEvent[pushEvent](data)
	if err != nil {
		logger.Errorf("push event: %v", err)
		return
	}
	c.Enqueue(func() { c.mgr.IngestPush(ev.Message, ev.Unread) })
}

func (c *Consumer) onPage(data []byte) {
	ev, err := decodeEvent[pageEvent](data)
	if err != nil {
		logger.Errorf("page event: %v", err)
		return
	}
	c.Enqueue(func() { c.mgr.IngestRange(ev.ConversationID, ev.Older, ev.Messages) })
	if c.pages != nil && len(ev.Messages) > 0 {
		msgs := ev.Messages
		safe.SafeGo(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := c.pages.ArchivePage(ctx, msgs); err != nil {
				logger.Errorf("archive page: %v", err)
			}
		})
	}
}

func (c *Consumer) onDialog(data []byte) {
	ev, err := decodeEvent[chatmodel.DialogSummary](data)
	if err != nil {
		logger.Errorf("dialog event: %v", err)
		return
	}
	c.Enqueue(func() { c.mgr.ApplyDialogSummary(*ev) })
}

func (c *Consumer) onDraft(data []byte) {
	ev, err := decodeEvent[chatmodel.RawDraft](data)
	if err != nil {
		logger.Errorf("draft event: %v", err)
		return
	}
	c.Enqueue(func() { c.mgr.ApplyCloudDraft(*ev) })
}

func (c *Consumer) onTyping(data []byte) {
	ev, err := decodeEvent[typingEvent](data)
	if err != nil {
		logger.Errorf("typing event: %v", err)
		return
	}
	c.Enqueue(func() {
		c.mgr.History(ev.ConversationID).
			RegisterSendAction(ev.User, history.SendActionType(ev.Action), ev.Progress)
	})
}

func (c *Consumer) onRead(data []byte) {
	ev, err := decodeEvent[readEvent](data)
	if err != nil {
		logger.Errorf("read event: %v", err)
		return
	}
	c.Enqueue(func() {
		h := c.mgr.History(ev.ConversationID)
		if ev.Outbox {
			h.OutboxRead(ev.UpTo)
		} else {
			h.InboxRead(ev.UpTo)
		}
	})
}

func (c *Consumer) onDeleted(data []byte) {
	ev, err := decodeEvent[deletedEvent](data)
	if err != nil {
		logger.Errorf("deleted event: %v", err)
		return
	}
	c.Enqueue(func() { c.mgr.ApplyDeleted(ev.ConversationID, ev.ID) })
}

func (c *Consumer) onChatList(data []byte) {
	ev, err := decodeEvent[chatListEvent](data)
	if err != nil {
		logger.Errorf("chatlist event: %v", err)
		return
	}
	c.Enqueue(func() { c.mgr.ApplyChatListMessage(ev.ConversationID, ev.Message) })
}
