package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"PHistory/global"
	chatmodel "PHistory/module/chat/model"
)

// PageStore 本地消息页归档：同步层拉回的分页顺手写一份，翻历史时先查
// 本地，命中就省一次网络往返。只归档服务端已确认的消息。
type PageStore struct {
	coll *mongo.Collection
}

func InitMongo(cfg global.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}
	if err := cli.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "ping mongo")
	}
	return cli, nil
}

func NewPageStore(cli *mongo.Client, cfg global.MongoConfig) *PageStore {
	return &PageStore{coll: cli.Database(cfg.Database).Collection(cfg.MsgColl)}
}

// ArchivePage upsert 一页消息，键为 (conversation_id, id)。
func (s *PageStore) ArchivePage(ctx context.Context, msgs []chatmodel.RawMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(msgs))
	for _, m := range msgs {
		if !chatmodel.IsServerMsgID(m.ID) {
			continue
		}
		filter := bson.M{"conversation_id": m.ConversationID, "id": m.ID}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(filter).SetReplacement(m).SetUpsert(true))
	}
	if len(models) == 0 {
		return nil
	}
	_, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return errors.Wrap(err, "archive page")
}

// FindOlder 返回 conv 中 id < beforeID 的一页，最新在前。beforeID<=0 表示
// 从最新开始。页不满视为未命中，交给网络补齐。
func (s *PageStore) FindOlder(ctx context.Context, conv string, beforeID int64, limit int) ([]chatmodel.RawMessage, error) {
	filter := bson.M{"conversation_id": conv}
	if beforeID > 0 {
		filter["id"] = bson.M{"$lt": beforeID}
	}
	return s.findPage(ctx, filter, -1, limit)
}

// FindNewer 返回 conv 中 id > afterID 的一页，最新在前。
func (s *PageStore) FindNewer(ctx context.Context, conv string, afterID int64, limit int) ([]chatmodel.RawMessage, error) {
	filter := bson.M{
		"conversation_id": conv,
		"id":              bson.M{"$gt": afterID},
	}
	msgs, err := s.findPage(ctx, filter, 1, limit)
	if err != nil {
		return nil, err
	}
	// 升序取最邻近的一页，再翻成最新在前
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (s *PageStore) findPage(ctx context.Context, filter bson.M, order int, limit int) ([]chatmodel.RawMessage, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "id", Value: order}}).
		SetLimit(int64(limit))
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find page")
	}
	defer cur.Close(ctx)
	var msgs []chatmodel.RawMessage
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, errors.Wrap(err, "decode page")
	}
	return msgs, nil
}
