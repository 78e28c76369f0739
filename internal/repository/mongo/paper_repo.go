package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"pariksha/paper-share/internal/domain"
	"pariksha/paper-share/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const paperCollectionName = "papers"

// mongoPaperRepository implements repository.PaperRepository
type mongoPaperRepository struct {
	collection *mongo.Collection
}

// NewMongoPaperRepository creates a new Paper repository backed by MongoDB.
func NewMongoPaperRepository(db *mongo.Database) repository.PaperRepository {
	return &mongoPaperRepository{
		collection: db.Collection(paperCollectionName),
	}
}

// Create inserts a new paper into the database.
func (r *mongoPaperRepository) Create(ctx context.Context, paper *domain.Paper) (primitive.ObjectID, error) {
	if paper.Title == "" || paper.UploadedBy == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("paper title and uploader ID are required")
	}
	if !paper.Status.IsValid() {
		return primitive.NilObjectID, errors.New("invalid paper status")
	}

	paper.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	paper.CreatedAt = now
	paper.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, paper)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a paper by its ID.
func (r *mongoPaperRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Paper, error) {
	var paper domain.Paper
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&paper)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &paper, nil
}

// Find returns papers matching filter in the requested order, capped at limit.
func (r *mongoPaperRepository) Find(ctx context.Context, filter repository.PaperFilter, sort repository.PaperSort, limit int64) ([]domain.Paper, error) {
	findOptions := options.Find().SetSort(sortDocument(sort))
	if limit > 0 {
		findOptions.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filterDocument(filter), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var papers []domain.Paper
	if err = cursor.All(ctx, &papers); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return papers, nil
}

// UpdateStatus applies a moderation transition as a single conditional
// update. The filter guards on the expected status, so two concurrent
// moderation calls on the same paper cannot both win the race.
func (r *mongoPaperRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, expected, next domain.PaperStatus, reason *string) (*domain.Paper, error) {
	if !next.IsValid() {
		return nil, errors.New("invalid target status")
	}

	filter := bson.M{"_id": id, "status": expected}
	set := bson.M{
		"status":    next,
		"updatedAt": time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if reason != nil {
		set["rejectionReason"] = *reason
	} else {
		update["$unset"] = bson.M{"rejectionReason": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var paper domain.Paper
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&paper)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Either the paper does not exist or its status moved on.
			return nil, repository.ErrStatusMismatch
		}
		return nil, err
	}
	return &paper, nil
}

// IncrementDownloadCount bumps the counter server-side and returns the
// post-increment value. Concurrent calls never lose updates because the
// read-modify-write happens inside MongoDB, not in this process.
func (r *mongoPaperRepository) IncrementDownloadCount(ctx context.Context, id primitive.ObjectID) (int, error) {
	filter := bson.M{"_id": id}
	update := bson.M{"$inc": bson.M{"downloadCount": 1}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var paper domain.Paper
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&paper)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}
	return paper.DownloadCount, nil
}

// Delete removes a paper's metadata record.
func (r *mongoPaperRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Distinct returns the distinct values of a string field across papers
// matching filter.
func (r *mongoPaperRepository) Distinct(ctx context.Context, field string, filter repository.PaperFilter) ([]string, error) {
	raw, err := r.collection.Distinct(ctx, field, filterDocument(filter))
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			values = append(values, s)
		}
	}
	return values, nil
}

// Count returns the number of papers matching filter.
func (r *mongoPaperRepository) Count(ctx context.Context, filter repository.PaperFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, filterDocument(filter))
}

// SumDownloadCounts totals downloadCount across papers matching filter.
func (r *mongoPaperRepository) SumDownloadCounts(ctx context.Context, filter repository.PaperFilter) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filterDocument(filter)}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$downloadCount"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// filterDocument translates a repository.PaperFilter into a MongoDB query
// document. All predicates are combined conjunctively; the free-text
// search is a disjunction over title, subject and tags.
func filterDocument(f repository.PaperFilter) bson.M {
	query := bson.M{}

	if f.Status != nil {
		query["status"] = *f.Status
	}
	if f.UploadedBy != nil {
		query["uploadedBy"] = *f.UploadedBy
	}
	if f.Subject != "" {
		query["subject"] = containsPattern(f.Subject)
	}
	if f.Class != "" {
		query["class"] = containsPattern(f.Class)
	}
	if f.Semester != "" {
		query["semester"] = f.Semester
	}
	if f.ExamType != "" {
		query["examType"] = f.ExamType
	}
	if f.Year != "" {
		query["year"] = f.Year
	}
	if f.Search != "" {
		pattern := containsPattern(f.Search)
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"subject": pattern},
			bson.M{"tags": pattern},
		}
	}

	return query
}

// containsPattern builds a case-insensitive substring regex with the
// user input escaped, so filter values are never interpreted as regex.
func containsPattern(value string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
}

// sortDocument maps a PaperSort to a MongoDB sort specification.
func sortDocument(sort repository.PaperSort) bson.D {
	switch sort {
	case repository.SortPopular:
		return bson.D{{Key: "downloadCount", Value: -1}, {Key: "createdAt", Value: -1}}
	case repository.SortTitle:
		return bson.D{{Key: "title", Value: 1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}

// EnsurePaperIndexes creates necessary indexes for the papers collection.
func EnsurePaperIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Moderation queues and public listings both filter on status
			// and order by recency.
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// Owner dashboard lookups.
			Keys:    bson.D{{Key: "uploadedBy", Value: 1}},
			Options: options.Index(),
		},
		{
			// Popularity sort within approved papers.
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "downloadCount", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
