package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jobtracker/jobtracker-api/internal/core/domain"
	"github.com/jobtracker/jobtracker-api/internal/core/ports"
)

type ApplicationRepository struct {
	db    *mongo.Database
	col   *mongo.Collection
	users *mongo.Collection
}

func NewApplicationRepository(db *mongo.Database) *ApplicationRepository {
	return &ApplicationRepository{
		db:    db,
		col:   db.Collection(collectionApplications),
		users: db.Collection(collectionUsers),
	}
}

// Create inserts a new application document and assigns its ID.
func (r *ApplicationRepository) Create(ctx context.Context, app *domain.JobApplication) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextID(ctx, r.db, collectionApplications)
	if err != nil {
		return err
	}
	app.ID = id

	if _, err := r.col.InsertOne(ctx, app); err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// FindByID retrieves an application regardless of owner.
func (r *ApplicationRepository) FindByID(ctx context.Context, id int64) (*domain.JobApplication, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var a domain.JobApplication
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	normalize(&a)
	return &a, nil
}

func (r *ApplicationRepository) List(ctx context.Context, filter ports.ListApplicationsFilter) ([]*domain.JobApplication, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query, err := r.buildFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	cur, err := r.col.Find(ctx, query, options.Find().SetSort(sortSpec(filter.Ordering)))
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	apps := make([]*domain.JobApplication, 0)
	if err := cur.All(ctx, &apps); err != nil {
		return nil, fmt.Errorf("decode applications: %w", err)
	}
	for _, a := range apps {
		normalize(a)
	}
	return apps, nil
}

func (r *ApplicationRepository) buildFilter(ctx context.Context, filter ports.ListApplicationsFilter) (bson.M, error) {
	clauses := bson.A{}
	if filter.OwnerID != 0 {
		clauses = append(clauses, bson.M{"user_id": filter.OwnerID})
	}
	if filter.Status != "" {
		clauses = append(clauses, bson.M{"status": string(filter.Status)})
	}
	if filter.Company != "" {
		clauses = append(clauses, bson.M{"company": filter.Company})
	}

	for _, term := range filter.Search {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
		or := bson.A{
			bson.M{"job_title": re},
			bson.M{"company": re},
		}
		if filter.SearchOwner {
			ids, err := r.ownerIDsMatching(ctx, re)
			if err != nil {
				return nil, err
			}
			if len(ids) > 0 {
				or = append(or, bson.M{"user_id": bson.M{"$in": ids}})
			}
		} else {
			or = append(or, bson.M{"location": re})
		}
		clauses = append(clauses, bson.M{"$or": or})
	}

	if len(clauses) == 0 {
		return bson.M{}, nil
	}
	return bson.M{"$and": clauses}, nil
}

func (r *ApplicationRepository) ownerIDsMatching(ctx context.Context, re primitive.Regex) ([]int64, error) {
	cur, err := r.users.Find(ctx, bson.M{"username": re}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("search owners: %w", err)
	}
	var docs []struct {
		ID int64 `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode owners: %w", err)
	}
	ids := make([]int64, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

func sortSpec(ordering []domain.Ordering) bson.D {
	if len(ordering) == 0 {
		ordering = domain.DefaultOrdering
	}
	spec := make(bson.D, 0, len(ordering)+1)
	for _, o := range ordering {
		dir := 1
		if o.Desc {
			dir = -1
		}
		spec = append(spec, bson.E{Key: string(o.Field), Value: dir})
	}
	return append(spec, bson.E{Key: "_id", Value: -1})
}

// Update writes the mutable fields when both _id and user_id match.
func (r *ApplicationRepository) Update(ctx context.Context, app *domain.JobApplication) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": app.ID, "user_id": app.UserID},
		bson.M{"$set": bson.M{
			"job_title":    app.JobTitle,
			"company":      app.Company,
			"location":     app.Location,
			"date_applied": app.DateApplied,
			"job_link":     app.JobLink,
			"status":       string(app.Status),
			"notes":        app.Notes,
			"updated_at":   app.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrOwnershipMismatch
	}
	return nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, id, ownerID int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "user_id": ownerID})
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrApplicationNotFound
	}
	return nil
}

// normalize converts the driver's local-time decoding back to UTC.
func normalize(a *domain.JobApplication) {
	a.DateApplied = a.DateApplied.UTC()
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
}
