// internal/registry/mongo.go
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"orgsvc/pkg/ident"
)

const (
	tenantCollection = "organizations"
	adminCollection  = "master_users"
)

// tenantDoc / adminDoc are the store-level shapes; domain types carry
// ident.ID instead of driver object ids.
type tenantDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	PartitionID string             `bson:"partition_id"`
	AdminID     primitive.ObjectID `bson:"admin_id"`
	CreatedAt   time.Time          `bson:"created_at"`
}

type adminDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"hashed_password"`
	TenantID     primitive.ObjectID `bson:"org_id"`
}

type mongoRegistry struct {
	db  *mongo.Database
	log *zap.SugaredLogger
}

// NewMongoRegistry returns a Registry backed by the master database.
func NewMongoRegistry(cli *mongo.Client, dbName string, log *zap.SugaredLogger) Registry {
	return &mongoRegistry{db: cli.Database(dbName), log: log}
}

// EnsureIndexes creates the unique indexes that make the store the
// authority on name and email uniqueness. Safe to call repeatedly.
func EnsureIndexes(ctx context.Context, cli *mongo.Client, dbName string) error {
	db := cli.Database(dbName)
	_, err := db.Collection(tenantCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("organizations name index: %w", err)
	}
	_, err = db.Collection(adminCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("master_users email index: %w", err)
	}
	return nil
}

func (r *mongoRegistry) FindByName(ctx context.Context, name string) (*Tenant, error) {
	return r.findTenant(ctx, bson.M{"name": name})
}

func (r *mongoRegistry) FindByID(ctx context.Context, id ident.ID) (*Tenant, error) {
	return r.findTenant(ctx, bson.M{"_id": id.ObjectID()})
}

func (r *mongoRegistry) findTenant(ctx context.Context, filter bson.M) (*Tenant, error) {
	var doc tenantDoc
	err := r.db.Collection(tenantCollection).FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, r.classify(err)
	}
	t := doc.toTenant()
	return &t, nil
}

func (r *mongoRegistry) Insert(ctx context.Context, name, partitionID string) (*Tenant, error) {
	doc := tenantDoc{
		ID:          primitive.NewObjectID(),
		Name:        name,
		PartitionID: partitionID,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := r.db.Collection(tenantCollection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrNameConflict
		}
		return nil, r.classify(err)
	}
	t := doc.toTenant()
	return &t, nil
}

func (r *mongoRegistry) UpdateFields(ctx context.Context, id ident.ID, patch TenantPatch) error {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.PartitionID != nil {
		set["partition_id"] = *patch.PartitionID
	}
	if patch.AdminID != nil {
		set["admin_id"] = patch.AdminID.ObjectID()
	}
	if len(set) == 0 {
		return nil
	}
	res, err := r.db.Collection(tenantCollection).UpdateOne(ctx,
		bson.M{"_id": id.ObjectID()}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrNameConflict
		}
		return r.classify(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRegistry) Delete(ctx context.Context, id ident.ID) error {
	res, err := r.db.Collection(tenantCollection).DeleteOne(ctx, bson.M{"_id": id.ObjectID()})
	if err != nil {
		return r.classify(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRegistry) FindAdminByEmail(ctx context.Context, email string) (*Admin, error) {
	var doc adminDoc
	err := r.db.Collection(adminCollection).FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, r.classify(err)
	}
	a := doc.toAdmin()
	return &a, nil
}

func (r *mongoRegistry) InsertAdmin(ctx context.Context, email, passwordHash string, tenantID ident.ID) (*Admin, error) {
	doc := adminDoc{
		ID:           primitive.NewObjectID(),
		Email:        email,
		PasswordHash: passwordHash,
		TenantID:     tenantID.ObjectID(),
	}
	if _, err := r.db.Collection(adminCollection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailConflict
		}
		return nil, r.classify(err)
	}
	a := doc.toAdmin()
	return &a, nil
}

func (r *mongoRegistry) DeleteAdminsOf(ctx context.Context, tenantID ident.ID) error {
	_, err := r.db.Collection(adminCollection).DeleteMany(ctx, bson.M{"org_id": tenantID.ObjectID()})
	if err != nil {
		return r.classify(err)
	}
	return nil
}

func (r *mongoRegistry) classify(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	r.log.Warnw("unclassified registry store error", "err", err)
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func (d tenantDoc) toTenant() Tenant {
	return Tenant{
		ID:          ident.FromObjectID(d.ID),
		Name:        d.Name,
		PartitionID: d.PartitionID,
		AdminID:     ident.FromObjectID(d.AdminID),
		CreatedAt:   d.CreatedAt,
	}
}

func (d adminDoc) toAdmin() Admin {
	return Admin{
		ID:           ident.FromObjectID(d.ID),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		TenantID:     ident.FromObjectID(d.TenantID),
	}
}
