// Package mongo is the document database backend. Each entity lives in
// its own collection keyed by a string uuid.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"outreach/internal/core"
	"outreach/internal/store"
)

const credentialsCollection = "admin_credentials"

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

var _ store.Backend = (*Store)(nil)

// Open connects to uri, verifies the connection and ensures indexes.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := &Store{client: client, db: client.Database(database), now: time.Now}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := map[string]bson.D{
		store.CollectionOrganizations: {{Key: "created_at", Value: -1}},
		store.CollectionPerformances:  {{Key: "date", Value: -1}},
		store.CollectionExpenditures:  {{Key: "budget_item_id", Value: 1}},
	}
	for coll, keys := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys}); err != nil {
			return fmt.Errorf("create index on %s: %w", coll, err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ping reports whether the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) coll(name string) *mongo.Collection { return s.db.Collection(name) }

func findAll[D any](ctx context.Context, c *mongo.Collection, opts *options.FindOptions) ([]D, error) {
	cur, err := c.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	docs := []D{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func findOne[D any](ctx context.Context, c *mongo.Collection, id string) (D, error) {
	var doc D
	err := c.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, core.ErrNotFound
	}
	return doc, err
}

func replaceOne(ctx context.Context, c *mongo.Collection, id string, doc any) error {
	res, err := c.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return core.ErrNotFound
	}
	return nil
}

func deleteOne(ctx context.Context, c *mongo.Collection, id string) error {
	res, err := c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return core.ErrNotFound
	}
	return nil
}

func byCreation(dir int) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "created_at", Value: dir}, {Key: "_id", Value: 1}})
}

func (s *Store) ListOrganizations(ctx context.Context) ([]core.Organization, error) {
	docs, err := findAll[orgDoc](ctx, s.coll(store.CollectionOrganizations), byCreation(-1))
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	out := make([]core.Organization, len(docs))
	for i, d := range docs {
		out[i] = d.domain()
	}
	return out, nil
}

func (s *Store) GetOrganization(ctx context.Context, id string) (core.Organization, error) {
	d, err := findOne[orgDoc](ctx, s.coll(store.CollectionOrganizations), id)
	return d.domain(), err
}

func (s *Store) AddOrganization(ctx context.Context, o core.Organization) (core.Organization, error) {
	now := s.now().UTC()
	o.ID = uuid.NewString()
	o.CreatedAt, o.UpdatedAt = now, now
	if _, err := s.coll(store.CollectionOrganizations).InsertOne(ctx, fromOrg(o)); err != nil {
		return core.Organization{}, fmt.Errorf("insert organization: %w", err)
	}
	return o, nil
}

func (s *Store) UpdateOrganization(ctx context.Context, id string, p core.OrganizationPatch) (core.Organization, error) {
	cur, err := s.GetOrganization(ctx, id)
	if err != nil {
		return core.Organization{}, err
	}
	p.Apply(&cur)
	cur.UpdatedAt = s.now().UTC()
	if err := replaceOne(ctx, s.coll(store.CollectionOrganizations), id, fromOrg(cur)); err != nil {
		return core.Organization{}, err
	}
	return cur, nil
}

func (s *Store) DeleteOrganization(ctx context.Context, id string) error {
	return deleteOne(ctx, s.coll(store.CollectionOrganizations), id)
}

func (s *Store) ListPerformances(ctx context.Context) ([]core.PerformanceRecord, error) {
	// '' sorts below any date, so dateless records come last
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: 1}})
	docs, err := findAll[perfDoc](ctx, s.coll(store.CollectionPerformances), opts)
	if err != nil {
		return nil, fmt.Errorf("list performances: %w", err)
	}
	out := make([]core.PerformanceRecord, len(docs))
	for i, d := range docs {
		out[i] = d.domain()
	}
	return out, nil
}

func (s *Store) GetPerformance(ctx context.Context, id string) (core.PerformanceRecord, error) {
	d, err := findOne[perfDoc](ctx, s.coll(store.CollectionPerformances), id)
	return d.domain(), err
}

func (s *Store) AddPerformance(ctx context.Context, p core.PerformanceRecord) (core.PerformanceRecord, error) {
	now := s.now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	if _, err := s.coll(store.CollectionPerformances).InsertOne(ctx, fromPerf(p)); err != nil {
		return core.PerformanceRecord{}, fmt.Errorf("insert performance: %w", err)
	}
	return p, nil
}

func (s *Store) UpdatePerformance(ctx context.Context, id string, p core.PerformancePatch) (core.PerformanceRecord, error) {
	cur, err := s.GetPerformance(ctx, id)
	if err != nil {
		return core.PerformanceRecord{}, err
	}
	p.Apply(&cur)
	cur.UpdatedAt = s.now().UTC()
	if err := replaceOne(ctx, s.coll(store.CollectionPerformances), id, fromPerf(cur)); err != nil {
		return core.PerformanceRecord{}, err
	}
	return cur, nil
}

func (s *Store) DeletePerformance(ctx context.Context, id string) error {
	return deleteOne(ctx, s.coll(store.CollectionPerformances), id)
}

func (s *Store) ListBudgetItems(ctx context.Context) ([]core.BudgetItem, error) {
	docs, err := findAll[itemDoc](ctx, s.coll(store.CollectionBudgetItems), byCreation(1))
	if err != nil {
		return nil, fmt.Errorf("list budget items: %w", err)
	}
	out := make([]core.BudgetItem, len(docs))
	for i, d := range docs {
		out[i] = d.domain()
	}
	// a missing order counts as 0, which a server-side sort cannot express
	store.SortBudgetItems(out)
	return out, nil
}

func (s *Store) GetBudgetItem(ctx context.Context, id string) (core.BudgetItem, error) {
	d, err := findOne[itemDoc](ctx, s.coll(store.CollectionBudgetItems), id)
	return d.domain(), err
}

func (s *Store) AddBudgetItem(ctx context.Context, b core.BudgetItem) (core.BudgetItem, error) {
	now := s.now().UTC()
	b.ID = uuid.NewString()
	b.CreatedAt, b.UpdatedAt = now, now
	if _, err := s.coll(store.CollectionBudgetItems).InsertOne(ctx, fromItem(b)); err != nil {
		return core.BudgetItem{}, fmt.Errorf("insert budget item: %w", err)
	}
	return b, nil
}

func (s *Store) UpdateBudgetItem(ctx context.Context, id string, p core.BudgetItemPatch) (core.BudgetItem, error) {
	cur, err := s.GetBudgetItem(ctx, id)
	if err != nil {
		return core.BudgetItem{}, err
	}
	p.Apply(&cur)
	cur.UpdatedAt = s.now().UTC()
	if err := replaceOne(ctx, s.coll(store.CollectionBudgetItems), id, fromItem(cur)); err != nil {
		return core.BudgetItem{}, err
	}
	return cur, nil
}

func (s *Store) DeleteBudgetItem(ctx context.Context, id string) error {
	return deleteOne(ctx, s.coll(store.CollectionBudgetItems), id)
}

// SetBudgetOrder writes every order in one unordered bulk request.
func (s *Store) SetBudgetOrder(ctx context.Context, orders map[string]int) error {
	if len(orders) == 0 {
		return nil
	}
	now := s.now().UTC()
	models := make([]mongo.WriteModel, 0, len(orders))
	for id, order := range orders {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": bson.M{"order": order, "updated_at": now}}))
	}
	_, err := s.coll(store.CollectionBudgetItems).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("set budget order: %w", err)
	}
	return nil
}

func (s *Store) ListExpenditures(ctx context.Context) ([]core.Expenditure, error) {
	docs, err := findAll[expDoc](ctx, s.coll(store.CollectionExpenditures), byCreation(1))
	if err != nil {
		return nil, fmt.Errorf("list expenditures: %w", err)
	}
	out := make([]core.Expenditure, len(docs))
	for i, d := range docs {
		out[i] = d.domain()
	}
	return out, nil
}

func (s *Store) GetExpenditure(ctx context.Context, id string) (core.Expenditure, error) {
	d, err := findOne[expDoc](ctx, s.coll(store.CollectionExpenditures), id)
	return d.domain(), err
}

func (s *Store) AddExpenditure(ctx context.Context, e core.Expenditure) (core.Expenditure, error) {
	now := s.now().UTC()
	e.ID = uuid.NewString()
	e.CreatedAt, e.UpdatedAt = now, now
	if _, err := s.coll(store.CollectionExpenditures).InsertOne(ctx, fromExp(e)); err != nil {
		return core.Expenditure{}, fmt.Errorf("insert expenditure: %w", err)
	}
	return e, nil
}

func (s *Store) UpdateExpenditure(ctx context.Context, id string, p core.ExpenditurePatch) (core.Expenditure, error) {
	cur, err := s.GetExpenditure(ctx, id)
	if err != nil {
		return core.Expenditure{}, err
	}
	p.Apply(&cur)
	cur.UpdatedAt = s.now().UTC()
	if err := replaceOne(ctx, s.coll(store.CollectionExpenditures), id, fromExp(cur)); err != nil {
		return core.Expenditure{}, err
	}
	return cur, nil
}

func (s *Store) DeleteExpenditure(ctx context.Context, id string) error {
	return deleteOne(ctx, s.coll(store.CollectionExpenditures), id)
}

func (s *Store) GetAdminCredential(ctx context.Context) (*core.AdminCredential, error) {
	d, err := findOne[credDoc](ctx, s.coll(credentialsCollection), core.AdminUsername)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get admin credential: %w", err)
	}
	return &core.AdminCredential{Username: d.Username, PasswordHash: d.PasswordHash, UpdatedAt: d.UpdatedAt.UTC()}, nil
}

func (s *Store) SaveAdminCredential(ctx context.Context, c core.AdminCredential) error {
	if c.Username == "" {
		c.Username = core.AdminUsername
	}
	doc := credDoc{Username: c.Username, PasswordHash: c.PasswordHash, UpdatedAt: s.now().UTC()}
	_, err := s.coll(credentialsCollection).ReplaceOne(ctx, bson.M{"_id": c.Username}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save admin credential: %w", err)
	}
	return nil
}
