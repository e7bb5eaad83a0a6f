package content

import (
	"context"
	"fmt"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	credentialspb "cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"

	"screenrent/backend/internal/config"
)

// Uploader issues V4 signed PUT URLs so clients push creative assets
// straight to the bucket without routing bytes through the API.
type Uploader struct {
	cfg config.Config
	iam *credentials.IamCredentialsClient
}

func NewUploader(cfg config.Config) *Uploader {
	// IAM client is optional; only needed for signed URLs.
	iamClient, _ := credentials.NewIamCredentialsClient(context.Background())
	return &Uploader{cfg: cfg, iam: iamClient}
}

type SignedUploadURL struct {
	URL       string `json:"url"`
	Method    string `json:"method"`
	ExpiresAt int64  `json:"expiresAt"`
}

func (u *Uploader) SignedURL(ctx context.Context, objectPath, contentType string, expiresSeconds int64) (*SignedUploadURL, error) {
	if objectPath == "" {
		return nil, fmt.Errorf("%w: objectPath is required", ErrBadRequest)
	}
	if u.cfg.StorageBucket == "" {
		return nil, fmt.Errorf("FIREBASE_STORAGE_BUCKET is not set")
	}
	if u.cfg.SignedURLServiceAccountEmail == "" {
		return nil, fmt.Errorf("SIGNED_URL_SERVICE_ACCOUNT_EMAIL is not set")
	}
	if u.iam == nil {
		return nil, fmt.Errorf("IAM credentials client not available")
	}
	if expiresSeconds <= 0 || expiresSeconds > 3600 {
		expiresSeconds = 900
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	exp := time.Now().Add(time.Duration(expiresSeconds) * time.Second)

	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "PUT",
		Expires:        exp,
		ContentType:    contentType,
		GoogleAccessID: u.cfg.SignedURLServiceAccountEmail,
		SignBytes: func(b []byte) ([]byte, error) {
			name := fmt.Sprintf("projects/-/serviceAccounts/%s", u.cfg.SignedURLServiceAccountEmail)
			resp, err := u.iam.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    name,
				Payload: b,
			})
			if err != nil {
				return nil, err
			}
			return resp.SignedBlob, nil
		},
	}

	url, err := storage.SignedURL(u.cfg.StorageBucket, objectPath, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to sign url (check service account + permissions): %v", err)
	}

	return &SignedUploadURL{URL: url, Method: "PUT", ExpiresAt: exp.Unix()}, nil
}
