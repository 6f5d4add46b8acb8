package sync

import (
	"context"
	"encoding/json"
	"time"

	"PHistory/logger"
	chatmodel "PHistory/module/chat/model"
	"PHistory/service/storage"
	"PHistory/tools/safe"
)

// Producer 是窗口的出站面：分页请求、读回执、草稿与输入状态的上行。
// 实现 history.Requester；全部方法都是机会性的，失败只记日志。
type Producer struct {
	client   *Client
	pages    *storage.PageStore // 可选，本地归档命中则省一次网络
	persist  *storage.Persist   // 可选，游标/草稿落盘
	enqueue  func(func())       // 串行应用队列（本地页回灌用）
	ingest   func(conv string, older bool, msgs []chatmodel.RawMessage)
	pageSize int
}

func NewProducer(client *Client, pageSize int) *Producer {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &Producer{client: client, pageSize: pageSize}
}

// Bind 接上本地归档与串行应用队列；不绑则所有请求直接走网络。
func (p *Producer) Bind(
	pages *storage.PageStore,
	persist *storage.Persist,
	enqueue func(func()),
	ingest func(conv string, older bool, msgs []chatmodel.RawMessage),
) {
	p.pages = pages
	p.persist = persist
	p.enqueue = enqueue
	p.ingest = ingest
}

type pageRequest struct {
	ConversationID string `json:"conversation_id"`
	FromID         int64  `json:"from_id"`
	Limit          int    `json:"limit"`
}

type chatListRequest struct {
	ConversationID string `json:"conversation_id"`
}

type readRequest struct {
	ConversationID string `json:"conversation_id"`
	Outbox         bool   `json:"outbox"`
	UpTo           int64  `json:"up_to"`
}

func (p *Producer) publish(subject string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Errorf("marshal %s: %v", subject, err)
		return
	}
	if err := p.client.Publish(subject, data); err != nil {
		logger.Errorf("publish %s: %v", subject, err)
	}
}

func (p *Producer) localPagesBound() bool {
	return p.pages != nil && p.enqueue != nil && p.ingest != nil
}

func (p *Producer) RequestOlderPage(conv string, beforeID int64) {
	if !p.localPagesBound() {
		p.publish(SubjectReqOlder, pageRequest{ConversationID: conv, FromID: beforeID, Limit: p.pageSize})
		return
	}
	safe.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		msgs, err := p.pages.FindOlder(ctx, conv, beforeID, p.pageSize)
		if err == nil && len(msgs) >= p.pageSize {
			// 整页命中才算数，残页交给网络补齐
			p.enqueue(func() { p.ingest(conv, true, msgs) })
			return
		}
		p.publish(SubjectReqOlder, pageRequest{ConversationID: conv, FromID: beforeID, Limit: p.pageSize})
	})
}

func (p *Producer) RequestNewerPage(conv string, afterID int64) {
	p.publish(SubjectReqNewer, pageRequest{ConversationID: conv, FromID: afterID, Limit: p.pageSize})
}

func (p *Producer) RequestChatListMessage(conv string) {
	p.publish(SubjectReqChatList, chatListRequest{ConversationID: conv})
}

func (p *Producer) PushDraft(conv string, draft chatmodel.RawDraft) {
	p.publish(SubjectReqDraft, draft)
	if p.persist != nil {
		d := draft
		safe.SafeGo(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := p.persist.SaveDraft(ctx, d); err != nil {
				logger.Errorf("persist draft: %v", err)
			}
		})
	}
}

func (p *Producer) PushReadTill(conv string, outbox bool, upTo int64) {
	p.publish(SubjectReqRead, readRequest{ConversationID: conv, Outbox: outbox, UpTo: upTo})
}

type typingRequest struct {
	ConversationID string `json:"conversation_id"`
	Action         int    `json:"action"`
	Progress       int    `json:"progress"`
}

// PushTyping 上行本端输入状态，调用方先过半 TTL 去重再调。
func (p *Producer) PushTyping(conv string, action int, progress int) {
	p.publish(SubjectReqTyping, typingRequest{ConversationID: conv, Action: action, Progress: progress})
}
