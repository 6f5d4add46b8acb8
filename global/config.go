package global

import (
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

type AppConfig struct {
	NodeId    string `json:"node_id"`
	SelfUser  string `json:"self_user"` // 本端用户 id
	LogLevel  string `json:"log_level"`
	BlockSize int    `json:"block_size"` // 每个 Block 的容量，默认 50

	// 云草稿防抖窗口：空文本草稿在该窗口内不再回传
	DraftSkipDebounce time.Duration `json:"draft_skip_debounce"`

	// 输入状态 TTL，0 用内置默认（6s / 10s）
	TypingExpire time.Duration `json:"typing_expire"`
	MyActionTTL  time.Duration `json:"my_action_ttl"`

	Nats  NatsConfig  `json:"nats"`
	Redis RedisConfig `json:"redis"`
	Mongo MongoConfig `json:"mongo"`
}

type NatsConfig struct {
	Servers       []string      `json:"servers"`
	Name          string        `json:"name"`
	ReconnectWait time.Duration `json:"reconnect_wait"`
	Timeout       time.Duration `json:"timeout"`
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

type MongoConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
	MsgColl  string `json:"msg_coll"`
}

// Default returns the config used when a field is absent from the decoded map.
func Default() AppConfig {
	return AppConfig{
		NodeId:            "phistory-0",
		LogLevel:          "debug",
		BlockSize:         50,
		DraftSkipDebounce: 3 * time.Second,
		TypingExpire:      6 * time.Second,
		MyActionTTL:       10 * time.Second,
		Nats: NatsConfig{
			Servers:       []string{"nats://127.0.0.1:4222"},
			Name:          "phistory",
			ReconnectWait: 500 * time.Millisecond,
			Timeout:       3 * time.Second,
		},
		Redis: RedisConfig{Addr: "127.0.0.1:6379", PoolSize: 16},
		Mongo: MongoConfig{URI: "mongodb://127.0.0.1:27017", Database: "phistory", MsgColl: "message"},
	}
}

// DecodeConfig 将弱类型 map（json 解出的）解码到 AppConfig，
// 字段读取使用 `json` tag，缺省值来自 Default()。
func DecodeConfig(m map[string]any) (AppConfig, error) {
	out := Default()
	decCfg := &mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &out,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	}
	dec, err := mapstructure.NewDecoder(decCfg)
	if err != nil {
		return out, errors.Wrap(err, "build config decoder")
	}
	if err := dec.Decode(m); err != nil {
		return out, errors.Wrap(err, "decode config")
	}
	if out.BlockSize <= 0 {
		out.BlockSize = 50
	}
	return out, nil
}
