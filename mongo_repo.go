package accounts

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoDirectory struct {
	collection *mongo.Collection
}

type dbAccount struct {
	ID          ID              `bson:"_id"`
	DisplayName string          `bson:"displayName"`
	Email       string          `bson:"email"`
	Credential  string          `bson:"credential,omitempty"`
	State       ActivationState `bson:"state"`
	Role        Role            `bson:"role"`
	Provider    AuthProvider    `bson:"provider"`
	Proficiency string          `bson:"proficiency,omitempty"`
	CreatedAt   time.Time       `bson:"createdAt"`
}

// NewMongoDirectory ensures the unique email index that turns InsertOne
// into the atomic insert-if-absent the service relies on.
func NewMongoDirectory(c *mongo.Collection) Directory {
	_, err := c.Indexes().CreateOne(context.TODO(), mongo.IndexModel{
		Keys:    bson.M{"email": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Printf("email index not ensured: %v", err)
	}
	return &mongoDirectory{collection: c}
}

func (m *mongoDirectory) Exists(email string) (bool, error) {
	_, err := m.findAccountBy("email", email)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (m *mongoDirectory) InsertIfAbsent(acc *Account) error {
	dba := dbAccountFromAccount(acc)
	if _, err := m.collection.InsertOne(context.TODO(), &dba); err != nil {
		if isDuplicateKey(err) {
			return ErrExistingEmail
		}
		return err
	}
	return nil
}

func (m *mongoDirectory) FindByEmail(email string) (*Account, error) {
	return m.findAccountBy("email", email)
}

func (m *mongoDirectory) FindByID(id ID) (*Account, error) {
	return m.findAccountBy("_id", string(id))
}

func (m *mongoDirectory) findAccountBy(key string, val string) (*Account, error) {
	var dba dbAccount
	sr := m.collection.FindOne(context.TODO(), bson.M{key: val})

	if sr.Err() == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}

	if err := sr.Decode(&dba); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}

	acc := accountFromDBAccount(dba)
	return &acc, nil
}

func (m *mongoDirectory) UpdateState(id ID, state ActivationState) error {
	return m.setField(bson.M{"_id": string(id)}, "state", string(state))
}

func (m *mongoDirectory) UpdateRole(email string, role Role) error {
	return m.setField(bson.M{"email": email}, "role", string(role))
}

func (m *mongoDirectory) UpdateProficiency(id ID, profile string) error {
	return m.setField(bson.M{"_id": string(id)}, "proficiency", profile)
}

func (m *mongoDirectory) setField(filter bson.M, field string, val string) error {
	res, err := m.collection.UpdateOne(context.TODO(), filter, bson.M{"$set": bson.M{field: val}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func isDuplicateKey(err error) bool {
	we, ok := err.(mongo.WriteException)
	if !ok {
		return false
	}
	for _, e := range we.WriteErrors {
		if e.Code == 11000 {
			return true
		}
	}
	return false
}

func dbAccountFromAccount(a *Account) dbAccount {
	return dbAccount{a.ID, a.DisplayName, a.Email, a.Credential, a.State, a.Role, a.Provider, a.Proficiency, a.CreatedAt}
}

func accountFromDBAccount(a dbAccount) Account {
	return Account{a.ID, a.DisplayName, a.Email, a.Credential, a.State, a.Role, a.Provider, a.Proficiency, a.CreatedAt}
}

// mongoIntegrationStore keeps the one active configuration in a
// single-document collection.
type mongoIntegrationStore struct {
	collection *mongo.Collection
}

type dbIntegration struct {
	ID              string          `bson:"_id"`
	APIURL          string          `bson:"apiUrl"`
	APIKey          string          `bson:"apiKey"`
	CourseID        string          `bson:"courseId"`
	ConnectionState ConnectionState `bson:"connectionState"`
	UpdatedAt       time.Time       `bson:"updatedAt"`
}

const integrationDocID = "current"

func NewMongoIntegrationStore(c *mongo.Collection) IntegrationStore {
	return &mongoIntegrationStore{collection: c}
}

func (m *mongoIntegrationStore) Save(integration *LMSIntegration) error {
	doc := dbIntegration{
		ID:              integrationDocID,
		APIURL:          integration.APIURL,
		APIKey:          integration.APIKey,
		CourseID:        integration.CourseID,
		ConnectionState: integration.ConnectionState,
		UpdatedAt:       integration.UpdatedAt,
	}
	_, err := m.collection.ReplaceOne(context.TODO(), bson.M{"_id": integrationDocID}, &doc,
		options.Replace().SetUpsert(true))
	return err
}

func (m *mongoIntegrationStore) Current() (*LMSIntegration, error) {
	var doc dbIntegration
	sr := m.collection.FindOne(context.TODO(), bson.M{"_id": integrationDocID})

	if sr.Err() == mongo.ErrNoDocuments {
		return nil, ErrNoIntegration
	}

	if err := sr.Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNoIntegration
		}
		return nil, err
	}

	return &LMSIntegration{
		APIURL:          doc.APIURL,
		APIKey:          doc.APIKey,
		CourseID:        doc.CourseID,
		ConnectionState: doc.ConnectionState,
		UpdatedAt:       doc.UpdatedAt,
	}, nil
}
