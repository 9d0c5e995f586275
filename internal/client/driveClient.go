package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"prepkit-store/internal/config"

	"golang.org/x/oauth2/google"
)

const driveScope = "https://www.googleapis.com/auth/drive"

type DriveClient interface {
	// GrantAnyoneWithLink makes the folder viewable by anyone holding its
	// link. Granting twice returns an error for which IsAlreadyGranted
	// reports true.
	GrantAnyoneWithLink(ctx context.Context, folderID string) error
	// GrantReader adds a per-user view grant for the given email.
	GrantReader(ctx context.Context, folderID, email string) error
	GetFolder(ctx context.Context, folderID string) (*Folder, error)
}

type Folder struct {
	Name string `json:"name"`
	Link string `json:"webViewLink"`
}

// DriveError carries the provider's error reason so callers can distinguish
// "already granted" from genuine failures instead of blanket-catching.
type DriveError struct {
	Status  int
	Reason  string
	Message string
}

func (e *DriveError) Error() string {
	return fmt.Sprintf("drive error %d (%s): %s", e.Status, e.Reason, e.Message)
}

func IsAlreadyGranted(err error) bool {
	var de *DriveError
	if errors.As(err, &de) {
		return de.Reason == "duplicate" || de.Reason == "alreadyExists"
	}
	return false
}

type driveClientImpl struct {
	httpClient *http.Client
	baseApiURL string
}

func NewDriveClient(ctx context.Context, cfg *config.Drive) (DriveClient, error) {
	creds, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read drive credentials: %w", err)
	}

	jwtCfg, err := google.JWTConfigFromJSON(creds, driveScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}

	httpClient := jwtCfg.Client(ctx)
	httpClient.Timeout = 30 * time.Second

	return &driveClientImpl{
		httpClient: httpClient,
		baseApiURL: cfg.BaseApiURL,
	}, nil
}

func (c *driveClientImpl) GrantAnyoneWithLink(ctx context.Context, folderID string) error {
	return c.createPermission(ctx, folderID, map[string]string{
		"role": "reader",
		"type": "anyone",
	})
}

func (c *driveClientImpl) GrantReader(ctx context.Context, folderID, email string) error {
	return c.createPermission(ctx, folderID, map[string]string{
		"role":         "reader",
		"type":         "user",
		"emailAddress": email,
	})
}

func (c *driveClientImpl) createPermission(ctx context.Context, folderID string, permission map[string]string) error {
	body, err := json.Marshal(permission)
	if err != nil {
		return fmt.Errorf("marshal permission: %w", err)
	}

	endpoint := fmt.Sprintf("%s/files/%s/permissions?sendNotificationEmail=false",
		c.baseApiURL, url.PathEscape(folderID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeDriveError(resp)
	}

	io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *driveClientImpl) GetFolder(ctx context.Context, folderID string) (*Folder, error) {
	endpoint := fmt.Sprintf("%s/files/%s?fields=name,webViewLink",
		c.baseApiURL, url.PathEscape(folderID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeDriveError(resp)
	}

	var folder Folder
	if err := json.NewDecoder(resp.Body).Decode(&folder); err != nil {
		return nil, fmt.Errorf("decode folder metadata: %w", err)
	}

	return &folder, nil
}

func decodeDriveError(resp *http.Response) error {
	b, _ := io.ReadAll(resp.Body)

	var payload struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Errors  []struct {
				Reason string `json:"reason"`
			} `json:"errors"`
		} `json:"error"`
	}

	de := &DriveError{Status: resp.StatusCode, Message: string(b)}
	if err := json.Unmarshal(b, &payload); err == nil {
		de.Message = payload.Error.Message
		if len(payload.Error.Errors) > 0 {
			de.Reason = payload.Error.Errors[0].Reason
		}
	}
	return de
}
