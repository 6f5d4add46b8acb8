package sync

import (
	"strings"
	gosync "sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"PHistory/global"
)

// 订阅面（服务端 -> 本端）
const (
	SubjectPush     = "phistory.evt.push"     // 新消息推送
	SubjectDialog   = "phistory.evt.dialog"   // 会话摘要
	SubjectDraft    = "phistory.evt.draft"    // 云草稿
	SubjectTyping   = "phistory.evt.typing"   // 对端输入状态
	SubjectRead     = "phistory.evt.read"     // 读游标推进
	SubjectPage     = "phistory.evt.page"     // 分页响应
	SubjectChatList = "phistory.evt.chatlist" // 会话列表投影响应
	SubjectDeleted  = "phistory.evt.deleted"  // 消息删除
)

// 请求面（本端 -> 服务端）
const (
	SubjectReqOlder    = "phistory.req.older"
	SubjectReqNewer    = "phistory.req.newer"
	SubjectReqChatList = "phistory.req.chatlist"
	SubjectReqDraft    = "phistory.req.draft"
	SubjectReqRead     = "phistory.req.read"
	SubjectReqTyping   = "phistory.req.typing"
)

// Client 同步链路的 NATS 客户端，订阅表按 subject 维度维护。
type Client struct {
	cfg global.NatsConfig
	nc  *nats.Conn

	mu   gosync.Mutex
	subs map[string]*nats.Subscription
}

func NewClient(cfg global.NatsConfig) (*Client, error) {
	if len(cfg.Servers) == 0 {
		return nil, errors.New("nats servers missing")
	}
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 500 * time.Millisecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 3 * time.Second
	}
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.ReconnectJitter(100*time.Millisecond, 500*time.Millisecond),
		nats.Timeout(cfg.Timeout),
	}
	nc, err := nats.Connect(strings.Join(cfg.Servers, ","), opts...)
	if err != nil {
		return nil, errors.Wrap(err, "connect nats")
	}
	return &Client{
		cfg:  cfg,
		nc:   nc,
		subs: make(map[string]*nats.Subscription),
	}, nil
}

func (c *Client) Publish(subject string, data []byte) error {
	return errors.Wrapf(c.nc.Publish(subject, data), "publish %s", subject)
}

func (c *Client) Subscribe(subject string, cb func(data []byte)) error {
	sub, err := c.nc.Subscribe(subject, func(m *nats.Msg) {
		cb(append([]byte(nil), m.Data...))
	})
	if err != nil {
		return errors.Wrapf(err, "subscribe %s", subject)
	}
	_ = sub.SetPendingLimits(1_000_000, 64*1024*1024)
	c.mu.Lock()
	c.subs[subject] = sub
	c.mu.Unlock()
	return nil
}

// Close 优雅关闭
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for subject, sub := range c.subs {
		_ = sub.Drain()
		delete(c.subs, subject)
	}
	if c.nc != nil {
		return c.nc.Drain()
	}
	return nil
}
