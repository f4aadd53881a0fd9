package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultCartCollection = "carts"

// FirestoreStore keeps cart documents in a Firestore collection.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore uses collection "carts" when collection is blank.
func NewFirestoreStore(client *firestore.Client, collection string) (*FirestoreStore, error) {
	if client == nil {
		return nil, errors.New("cart store: firestore client is required")
	}
	collection = strings.TrimSpace(collection)
	if collection == "" {
		collection = defaultCartCollection
	}
	return &FirestoreStore{client: client, collection: collection}, nil
}

type firestoreLine struct {
	ProductID string  `firestore:"productId"`
	Size      *string `firestore:"size"`
	Color     *string `firestore:"color"`
	Quantity  int     `firestore:"quantity"`
}

type firestoreCart struct {
	Lines     []firestoreLine `firestore:"lines"`
	UpdatedAt time.Time       `firestore:"updatedAt"`
}

func (s *FirestoreStore) Load(ctx context.Context, id string) (Document, error) {
	snap, err := s.client.Collection(s.collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Document{}, ErrDocumentNotFound
		}
		return Document{}, fmt.Errorf("cart store: get %s: %w", id, err)
	}

	var record firestoreCart
	if err := snap.DataTo(&record); err != nil {
		return Document{}, fmt.Errorf("%w: %s: %v", ErrCorruptDocument, id, err)
	}
	doc := Document{ID: id, UpdatedAt: record.UpdatedAt, Lines: make([]Line, 0, len(record.Lines))}
	for _, l := range record.Lines {
		doc.Lines = append(doc.Lines, Line{
			ProductID: l.ProductID,
			Size:      optionFromPtr(l.Size),
			Color:     optionFromPtr(l.Color),
			Quantity:  l.Quantity,
		})
	}
	return doc, nil
}

func (s *FirestoreStore) Save(ctx context.Context, doc Document) error {
	record := firestoreCart{UpdatedAt: doc.UpdatedAt, Lines: make([]firestoreLine, 0, len(doc.Lines))}
	for _, l := range doc.Lines {
		record.Lines = append(record.Lines, firestoreLine{
			ProductID: l.ProductID,
			Size:      optionToPtr(l.Size),
			Color:     optionToPtr(l.Color),
			Quantity:  l.Quantity,
		})
	}
	if _, err := s.client.Collection(s.collection).Doc(doc.ID).Set(ctx, record); err != nil {
		return fmt.Errorf("cart store: set %s: %w", doc.ID, err)
	}
	return nil
}

func optionFromPtr(v *string) Option {
	if v == nil {
		return None()
	}
	return Some(*v)
}

func optionToPtr(o Option) *string {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}
