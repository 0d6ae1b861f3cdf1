package history

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOptions configures a MongoStore.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps summaries in a MongoDB collection indexed by taken_at.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects, pings and ensures the taken_at index.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.Database == "" {
		opts.Database = "skyline"
	}
	if opts.Collection == "" {
		opts.Collection = "snapshots"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "taken_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return &MongoStore{client: client, coll: coll}, nil
}

type rankedDoc struct {
	Name  string  `bson:"name"`
	Total float64 `bson:"total"`
}

type summaryDoc struct {
	ID        string      `bson:"_id"`
	TakenAt   time.Time   `bson:"taken_at"`
	Metric    string      `bson:"metric"`
	Entries   int         `bson:"entries"`
	Processes int         `bson:"processes"`
	Top       []rankedDoc `bson:"top"`
}

func toDoc(s Summary) summaryDoc {
	d := summaryDoc{
		ID:        s.ID,
		TakenAt:   s.TakenAt.UTC(),
		Metric:    s.Metric,
		Entries:   s.Entries,
		Processes: s.Processes,
		Top:       make([]rankedDoc, len(s.Top)),
	}
	for i, r := range s.Top {
		d.Top[i] = rankedDoc(r)
	}
	return d
}

func fromDoc(d summaryDoc) Summary {
	s := Summary{
		ID:        d.ID,
		TakenAt:   d.TakenAt,
		Metric:    d.Metric,
		Entries:   d.Entries,
		Processes: d.Processes,
		Top:       make([]Ranked, len(d.Top)),
	}
	for i, r := range d.Top {
		s.Top[i] = Ranked(r)
	}
	return s
}

// Record upserts s by snapshot ID.
func (m *MongoStore) Record(ctx context.Context, s Summary) error {
	_, err := m.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: s.ID}},
		toDoc(s),
		options.Replace().SetUpsert(true),
	)
	return err
}

func (m *MongoStore) Recent(ctx context.Context, limit int) ([]Summary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "taken_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := m.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []summaryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Summary, len(docs))
	for i, d := range docs {
		out[i] = fromDoc(d)
	}
	return out, nil
}

func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
