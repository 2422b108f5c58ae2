package store

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// slotKey is the legacy single-slot document id in the shared container.
// Hosts that predate the id-keyed store read only this document.
const slotKey = "widgetData"

type containerDoc struct {
	Key      string `bson:"_id"`
	Value    []byte `bson:"value"`
	WidgetID string `bson:"widget_id,omitempty"`
}

// MongoKV is the shared-container backend: one document per key in a named
// collection accessible to both the app and the widget extension. It also
// maintains the legacy widgetData slot (see slotMirror).
type MongoKV struct {
	col *mongo.Collection
}

// NewMongoKV uses the named container collection within db.
func NewMongoKV(db *mongo.Database, container string) *MongoKV {
	return &MongoKV{col: db.Collection(container)}
}

func (m *MongoKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc containerDoc
	err := m.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return doc.Value, true, nil
}

func (m *MongoKV) Set(ctx context.Context, key string, value []byte) error {
	_, err := m.col.ReplaceOne(ctx,
		bson.M{"_id": key},
		containerDoc{Key: key, Value: value},
		options.Replace().SetUpsert(true))
	return err
}

func (m *MongoKV) Delete(ctx context.Context, key string) error {
	_, err := m.col.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (m *MongoKV) Keys(ctx context.Context, prefix string) ([]string, error) {
	filter := bson.M{"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
	opts := options.Find().SetProjection(bson.M{"_id": 1})

	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var keys []string
	for cur.Next(ctx) {
		var doc struct {
			Key string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			continue
		}
		keys = append(keys, doc.Key)
	}
	return keys, cur.Err()
}

// SetSlot mirrors the most recently saved record into the legacy slot.
func (m *MongoKV) SetSlot(ctx context.Context, widgetID string, payload []byte) error {
	_, err := m.col.ReplaceOne(ctx,
		bson.M{"_id": slotKey},
		containerDoc{Key: slotKey, Value: payload, WidgetID: widgetID},
		options.Replace().SetUpsert(true))
	return err
}

// ClearSlot removes the legacy slot only when it still belongs to widgetID,
// so deleting an old widget doesn't blank a slot another widget now owns.
func (m *MongoKV) ClearSlot(ctx context.Context, widgetID string) error {
	_, err := m.col.DeleteOne(ctx, bson.M{"_id": slotKey, "widget_id": widgetID})
	return err
}
