package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/ranch/internal/domain/models"
)

const (
	collAnimals         = "cattle"
	collPens            = "pens"
	collFeedAllocations = "feed_allocations"
	collPenFeedActivity = "pen_feed_activities"
	collMedicationActs  = "medication_activities"
	collHealthRecords   = "health_records"
	collInventory       = "inventory"
	collHerdReports     = "herd_reports"
)

// MongoDBRepository is the document store for the ranch. Every read goes to
// the database; nothing is cached in process.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{client: client, db: client.Database(dbName)}, nil
}

// NewRepositoryFromDatabase wraps an already connected database handle.
func NewRepositoryFromDatabase(db *mongo.Database) *MongoDBRepository {
	return &MongoDBRepository{client: db.Client(), db: db}
}

// GetAnimal loads one animal by ID.
func (r *MongoDBRepository) GetAnimal(ctx context.Context, id string) (models.Animal, error) {
	var a models.Animal
	if err := r.findOne(ctx, collAnimals, bson.M{"_id": id}, &a); err != nil {
		return models.Animal{}, fmt.Errorf("find animal %s: %w", id, err)
	}
	return a, nil
}

// FindAnimalByTag loads one animal by its ear tag.
func (r *MongoDBRepository) FindAnimalByTag(ctx context.Context, tag string) (models.Animal, error) {
	var a models.Animal
	if err := r.findOne(ctx, collAnimals, bson.M{"tag": tag}, &a); err != nil {
		return models.Animal{}, fmt.Errorf("find animal by tag %s: %w", tag, err)
	}
	return a, nil
}

// ListAnimalsByPen returns the animals currently housed in a pen. Sold,
// deceased and transferred animals are no longer members.
func (r *MongoDBRepository) ListAnimalsByPen(ctx context.Context, penID string) ([]models.Animal, error) {
	filter := bson.M{"pen_id": penID, "status": bson.M{"$in": bson.A{models.StatusActive, "", nil}}}
	var out []models.Animal
	if err := r.find(ctx, collAnimals, filter, bson.D{{Key: "tag", Value: 1}}, &out); err != nil {
		return nil, fmt.Errorf("list animals for pen %s: %w", penID, err)
	}
	return out, nil
}

// ListAnimalsByBatch returns every animal purchased in a batch.
func (r *MongoDBRepository) ListAnimalsByBatch(ctx context.Context, batchID string) ([]models.Animal, error) {
	var out []models.Animal
	if err := r.find(ctx, collAnimals, bson.M{"batch_id": batchID}, bson.D{{Key: "tag", Value: 1}}, &out); err != nil {
		return nil, fmt.Errorf("list animals for batch %s: %w", batchID, err)
	}
	return out, nil
}

// AppendWeight pushes a weight observation, keeping the array date ordered.
func (r *MongoDBRepository) AppendWeight(ctx context.Context, cattleID string, w models.WeightRecord) error {
	update := bson.M{"$push": bson.M{"weights": bson.M{
		"$each": bson.A{w},
		"$sort": bson.M{"date": 1},
	}}}
	res, err := r.db.Collection(collAnimals).UpdateOne(ctx, bson.M{"_id": cattleID}, update)
	if err != nil {
		return fmt.Errorf("failed to append weight: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("animal %s: %w", cattleID, models.ErrNotFound)
	}
	return nil
}

// ListPens returns every pen.
func (r *MongoDBRepository) ListPens(ctx context.Context) ([]models.Pen, error) {
	var out []models.Pen
	if err := r.find(ctx, collPens, bson.M{}, bson.D{{Key: "name", Value: 1}}, &out); err != nil {
		return nil, fmt.Errorf("list pens: %w", err)
	}
	return out, nil
}

// GetPen loads one pen by ID.
func (r *MongoDBRepository) GetPen(ctx context.Context, id string) (models.Pen, error) {
	var p models.Pen
	if err := r.findOne(ctx, collPens, bson.M{"_id": id}, &p); err != nil {
		return models.Pen{}, fmt.Errorf("find pen %s: %w", id, err)
	}
	return p, nil
}

// GetFeedAllocation loads one feed allocation by ID.
func (r *MongoDBRepository) GetFeedAllocation(ctx context.Context, id string) (models.FeedAllocation, error) {
	var rec models.FeedAllocation
	if err := r.findOne(ctx, collFeedAllocations, bson.M{"_id": id}, &rec); err != nil {
		return models.FeedAllocation{}, fmt.Errorf("find feed allocation %s: %w", id, err)
	}
	return rec, nil
}

// ListFeedAllocations returns a pen's feed allocations in range, oldest first.
func (r *MongoDBRepository) ListFeedAllocations(ctx context.Context, penID string, dr models.DateRange) ([]models.FeedAllocation, error) {
	var out []models.FeedAllocation
	if err := r.find(ctx, collFeedAllocations, ownerRangeFilter("pen_id", penID, dr), byDate, &out); err != nil {
		return nil, fmt.Errorf("list feed allocations for pen %s: %w", penID, err)
	}
	return out, nil
}

// InsertFeedAllocation stores a new feed allocation.
func (r *MongoDBRepository) InsertFeedAllocation(ctx context.Context, rec models.FeedAllocation) error {
	return r.insert(ctx, collFeedAllocations, rec)
}

// ListPenFeedActivities returns a pen's simple feed records in range.
func (r *MongoDBRepository) ListPenFeedActivities(ctx context.Context, penID string, dr models.DateRange) ([]models.PenFeedActivity, error) {
	var out []models.PenFeedActivity
	if err := r.find(ctx, collPenFeedActivity, ownerRangeFilter("pen_id", penID, dr), byDate, &out); err != nil {
		return nil, fmt.Errorf("list feed activities for pen %s: %w", penID, err)
	}
	return out, nil
}

// InsertPenFeedActivity stores a simple feed record.
func (r *MongoDBRepository) InsertPenFeedActivity(ctx context.Context, rec models.PenFeedActivity) error {
	return r.insert(ctx, collPenFeedActivity, rec)
}

// ListMedicationActivities returns a pen's medication activities in range,
// both pen-wide and single-animal ones.
func (r *MongoDBRepository) ListMedicationActivities(ctx context.Context, penID string, dr models.DateRange) ([]models.MedicationActivity, error) {
	var out []models.MedicationActivity
	if err := r.find(ctx, collMedicationActs, ownerRangeFilter("pen_id", penID, dr), byDate, &out); err != nil {
		return nil, fmt.Errorf("list medication activities for pen %s: %w", penID, err)
	}
	return out, nil
}

// InsertMedicationActivity stores a medication activity.
func (r *MongoDBRepository) InsertMedicationActivity(ctx context.Context, rec models.MedicationActivity) error {
	return r.insert(ctx, collMedicationActs, rec)
}

// ListHealthRecords returns an animal's individual health records in range.
func (r *MongoDBRepository) ListHealthRecords(ctx context.Context, cattleID string, dr models.DateRange) ([]models.HealthRecord, error) {
	var out []models.HealthRecord
	if err := r.find(ctx, collHealthRecords, ownerRangeFilter("cattle_id", cattleID, dr), byDate, &out); err != nil {
		return nil, fmt.Errorf("list health records for %s: %w", cattleID, err)
	}
	return out, nil
}

// InsertHealthRecord stores a health record.
func (r *MongoDBRepository) InsertHealthRecord(ctx context.Context, rec models.HealthRecord) error {
	return r.insert(ctx, collHealthRecords, rec)
}

// GetInventoryItem loads one stock line.
func (r *MongoDBRepository) GetInventoryItem(ctx context.Context, id string) (models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.findOne(ctx, collInventory, bson.M{"_id": id}, &item); err != nil {
		return models.InventoryItem{}, fmt.Errorf("find inventory item %s: %w", id, err)
	}
	return item, nil
}

// DecrementInventory subtracts qty only while the stored quantity covers it,
// so concurrent deductions can never drive stock negative. It reports false
// when the guard did not match an existing item.
func (r *MongoDBRepository) DecrementInventory(ctx context.Context, id string, qty float64) (bool, error) {
	filter := bson.M{"_id": id, "quantity": bson.M{"$gte": qty}}
	res, err := r.db.Collection(collInventory).UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"quantity": -qty}})
	if err != nil {
		return false, fmt.Errorf("failed to decrement inventory: %w", err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}
	if _, err := r.GetInventoryItem(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// IncrementInventory adds qty to a stock line.
func (r *MongoDBRepository) IncrementInventory(ctx context.Context, id string, qty float64) error {
	res, err := r.db.Collection(collInventory).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"quantity": qty}})
	if err != nil {
		return fmt.Errorf("failed to increment inventory: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("inventory item %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// SaveHerdReport archives a herd report.
func (r *MongoDBRepository) SaveHerdReport(ctx context.Context, report models.HerdReport) error {
	return r.insert(ctx, collHerdReports, report)
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

var byDate = bson.D{{Key: "date", Value: 1}}

// ownerRangeFilter matches owner and, when bounded, whole calendar days in UTC.
func ownerRangeFilter(field, owner string, dr models.DateRange) bson.M {
	filter := bson.M{field: owner}
	date := bson.M{}
	if !dr.Start.IsZero() {
		date["$gte"] = models.StartOfDay(dr.Start)
	}
	if !dr.End.IsZero() {
		date["$lt"] = models.StartOfDay(dr.End).Add(24 * time.Hour)
	}
	if len(date) > 0 {
		filter["date"] = date
	}
	return filter
}

func (r *MongoDBRepository) findOne(ctx context.Context, coll string, filter bson.M, out interface{}) error {
	err := r.db.Collection(coll).FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ErrNotFound
	}
	return err
}

func (r *MongoDBRepository) find(ctx context.Context, coll string, filter bson.M, sort bson.D, out interface{}) error {
	cursor, err := r.db.Collection(coll).Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}

func (r *MongoDBRepository) insert(ctx context.Context, coll string, doc interface{}) error {
	if _, err := r.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", coll, err)
	}
	return nil
}
