package db

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"triage-chatbot/pkg"
)

// FirestoreStore keeps conversations, specialists and triage records as
// Firestore documents.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a Firestore-backed store for projectID.
func NewFirestoreStore(ctx context.Context, projectID string) (*FirestoreStore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

// Close releases the underlying client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) conversations() *firestore.CollectionRef {
	return s.client.Collection("conversations")
}

func (s *FirestoreStore) specialists() *firestore.CollectionRef {
	return s.client.Collection("specialists")
}

func (s *FirestoreStore) triageRecords() *firestore.CollectionRef {
	return s.client.Collection("triage_records")
}

// specialistDoc adds a lower-cased key; Firestore has no case-insensitive
// equality filter.
type specialistDoc struct {
	Name         string `firestore:"name"`
	Specialty    string `firestore:"specialty"`
	SpecialtyKey string `firestore:"specialty_key"`
	Available    bool   `firestore:"available"`
}

func (d specialistDoc) toDomain(id string) *pkg.Specialist {
	return &pkg.Specialist{ID: id, Name: d.Name, Specialty: d.Specialty, Available: d.Available}
}

func notFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func (s *FirestoreStore) GetConversation(ctx context.Context, id string) (*pkg.Conversation, error) {
	snap, err := s.conversations().Doc(id).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("conversation %s: %w", id, pkg.ErrNotFound)
		}
		return nil, fmt.Errorf("firestore GetConversation: %w", err)
	}
	var conv pkg.Conversation
	if err := snap.DataTo(&conv); err != nil {
		return nil, fmt.Errorf("firestore GetConversation decode: %w", err)
	}
	conv.ID = snap.Ref.ID
	return &conv, nil
}

func (s *FirestoreStore) SaveConversation(ctx context.Context, conv *pkg.Conversation) error {
	if _, err := s.conversations().Doc(conv.ID).Set(ctx, conv); err != nil {
		return fmt.Errorf("firestore SaveConversation: %w", err)
	}
	return nil
}

func (s *FirestoreStore) GetSpecialist(ctx context.Context, id string) (*pkg.Specialist, error) {
	snap, err := s.specialists().Doc(id).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("specialist %s: %w", id, pkg.ErrNotFound)
		}
		return nil, fmt.Errorf("firestore GetSpecialist: %w", err)
	}
	var doc specialistDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetSpecialist decode: %w", err)
	}
	return doc.toDomain(snap.Ref.ID), nil
}

func (s *FirestoreStore) FindAvailableSpecialist(ctx context.Context, specialty string) (*pkg.Specialist, error) {
	iter := s.specialists().
		Where("specialty_key", "==", strings.ToLower(specialty)).
		Where("available", "==", true).
		OrderBy("name", firestore.Asc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, fmt.Errorf("specialist for %q: %w", specialty, pkg.ErrNotFound)
		}
		return nil, fmt.Errorf("firestore FindAvailableSpecialist: %w", err)
	}
	var doc specialistDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode specialistDoc: %w", err)
	}
	return doc.toDomain(snap.Ref.ID), nil
}

func (s *FirestoreStore) UpsertSpecialist(ctx context.Context, sp *pkg.Specialist) error {
	doc := specialistDoc{
		Name:         sp.Name,
		Specialty:    sp.Specialty,
		SpecialtyKey: strings.ToLower(sp.Specialty),
		Available:    sp.Available,
	}
	if _, err := s.specialists().Doc(sp.ID).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore UpsertSpecialist: %w", err)
	}
	return nil
}

// AppendTriage uses Create so an existing record is never overwritten.
func (s *FirestoreStore) AppendTriage(ctx context.Context, rec *pkg.TriageRecord) error {
	if _, err := s.triageRecords().Doc(rec.ID).Create(ctx, rec); err != nil {
		return fmt.Errorf("firestore AppendTriage: %w", err)
	}
	return nil
}

func (s *FirestoreStore) GetTriage(ctx context.Context, id string) (*pkg.TriageRecord, error) {
	snap, err := s.triageRecords().Doc(id).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("triage %s: %w", id, pkg.ErrNotFound)
		}
		return nil, fmt.Errorf("firestore GetTriage: %w", err)
	}
	var rec pkg.TriageRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("firestore GetTriage decode: %w", err)
	}
	rec.ID = snap.Ref.ID
	return &rec, nil
}
