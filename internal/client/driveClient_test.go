package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestDriveClient(srv *httptest.Server) *driveClientImpl {
	return &driveClientImpl{
		httpClient: srv.Client(),
		baseApiURL: srv.URL,
	}
}

func driveErrorResponse(w http.ResponseWriter, status int, reason, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":    status,
			"message": message,
			"errors":  []map[string]string{{"reason": reason}},
		},
	})
}

func TestGrantAnyoneWithLink(t *testing.T) {
	var gotPermission map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/folder-js/permissions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotPermission)
		json.NewEncoder(w).Encode(map[string]string{"id": "perm1"})
	}))
	defer srv.Close()

	c := newTestDriveClient(srv)
	if err := c.GrantAnyoneWithLink(context.Background(), "folder-js"); err != nil {
		t.Fatalf("GrantAnyoneWithLink: %v", err)
	}
	if gotPermission["role"] != "reader" || gotPermission["type"] != "anyone" {
		t.Fatalf("unexpected permission body: %v", gotPermission)
	}
}

func TestGrantAlreadyExistsIsDistinguishable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		driveErrorResponse(w, http.StatusForbidden, "duplicate", "permission already exists")
	}))
	defer srv.Close()

	c := newTestDriveClient(srv)
	err := c.GrantAnyoneWithLink(context.Background(), "folder-js")
	if err == nil {
		t.Fatal("expected error from duplicate grant")
	}
	if !IsAlreadyGranted(err) {
		t.Fatalf("expected IsAlreadyGranted for duplicate reason, got %v", err)
	}
}

func TestGrantOtherErrorsAreNotSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		driveErrorResponse(w, http.StatusForbidden, "insufficientFilePermissions", "nope")
	}))
	defer srv.Close()

	c := newTestDriveClient(srv)
	err := c.GrantReader(context.Background(), "folder-js", "a@b.com")
	if err == nil {
		t.Fatal("expected error")
	}
	if IsAlreadyGranted(err) {
		t.Fatalf("reason %q must not count as already granted", "insufficientFilePermissions")
	}
}

func TestGetFolder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/folder-js" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if fields := r.URL.Query().Get("fields"); fields != "name,webViewLink" {
			t.Errorf("unexpected fields param %q", fields)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"name":        "JS Interview Kit",
			"webViewLink": "https://drive.google.com/drive/folders/folder-js",
		})
	}))
	defer srv.Close()

	c := newTestDriveClient(srv)
	folder, err := c.GetFolder(context.Background(), "folder-js")
	if err != nil {
		t.Fatalf("GetFolder: %v", err)
	}
	if folder.Name != "JS Interview Kit" {
		t.Errorf("unexpected name %q", folder.Name)
	}
	if folder.Link != "https://drive.google.com/drive/folders/folder-js" {
		t.Errorf("unexpected link %q", folder.Link)
	}
}
