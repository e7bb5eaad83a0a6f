package user

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"screenrent/backend/internal/ids"
)

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) doc(uid ids.UserID) *firestore.DocumentRef {
	return r.fs.Collection("users").Doc(uid.String())
}

func (r *Repo) Get(ctx context.Context, uid ids.UserID) (*Profile, error) {
	doc, err := r.doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, uid)
		}
		return nil, err
	}
	var p Profile
	if err := doc.DataTo(&p); err != nil {
		return nil, err
	}
	if p.UID == "" {
		p.UID = uid
	}
	return &p, nil
}

// UpsertMinimal makes sure a user document exists for an authenticated
// principal the first time the backend sees it.
func (r *Repo) UpsertMinimal(ctx context.Context, uid ids.UserID, email string) error {
	_, err := r.doc(uid).Set(ctx, map[string]any{
		"uid":       uid.String(),
		"email":     email,
		"updatedAt": time.Now().UTC(),
	}, firestore.MergeAll)
	return err
}

func (r *Repo) UpdateProfile(ctx context.Context, uid ids.UserID, updates map[string]any) error {
	updates["updatedAt"] = time.Now().UTC()
	_, err := r.doc(uid).Set(ctx, updates, firestore.MergeAll)
	return err
}

// SetStripeAccount records a freshly created connected account. Onboarding
// starts incomplete; the webhook flips the flags later.
func (r *Repo) SetStripeAccount(ctx context.Context, uid ids.UserID, accountID ids.AccountID) error {
	_, err := r.doc(uid).Set(ctx, map[string]any{
		"stripeAccountId":          accountID.String(),
		"stripeOnboardingComplete": false,
		"updatedAt":                time.Now().UTC(),
	}, firestore.MergeAll)
	return err
}

// FindByStripeAccount resolves a user by the connected-account secondary
// index. Returns ErrNotFound on zero matches and ErrAmbiguous on more than
// one, so webhook reconciliation never updates the wrong document.
func (r *Repo) FindByStripeAccount(ctx context.Context, accountID ids.AccountID) (*Profile, error) {
	iter := r.fs.Collection("users").
		Where("stripeAccountId", "==", accountID.String()).
		Limit(2).
		Documents(ctx)
	docs, err := iter.GetAll()
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no user for account %s", ErrNotFound, accountID)
	}
	if len(docs) > 1 {
		return nil, fmt.Errorf("%w: account %s", ErrAmbiguous, accountID)
	}

	var p Profile
	if err := docs[0].DataTo(&p); err != nil {
		return nil, err
	}
	if p.UID == "" {
		p.UID = ids.UserID(docs[0].Ref.ID)
	}
	return &p, nil
}

// UpdateAccountFlags mirrors processor-side onboarding state onto the user.
// Idempotent: re-applying the same event writes the same values.
func (r *Repo) UpdateAccountFlags(ctx context.Context, uid ids.UserID, detailsSubmitted, chargesEnabled, payoutsEnabled bool) error {
	_, err := r.doc(uid).Update(ctx, []firestore.Update{
		{Path: "stripeOnboardingComplete", Value: detailsSubmitted},
		{Path: "stripeChargesEnabled", Value: chargesEnabled},
		{Path: "stripePayoutsEnabled", Value: payoutsEnabled},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	return err
}
