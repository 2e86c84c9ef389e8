package gdrive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/Ning0612/Drivemover/internal/domain"
	"github.com/Ning0612/Drivemover/internal/gateway"
)

const (
	// PageSize is the number of items to fetch per list request
	PageSize = 1000

	// entryFields are the file fields every call requests, so that any
	// returned file can be decoded into a domain.Entry
	entryFields = "id, name, mimeType, description, parents, webViewLink, " +
		"sha256Checksum, size, quotaBytesUsed, properties, createdTime, " +
		"modifiedTime, trashed"

	permissionFields = "id, type, role, emailAddress, domain, displayName"
)

// Client implements gateway.Gateway against the Google Drive v3 API
type Client struct {
	service *drive.Service
	account domain.Account
	retries int
}

// New creates a Drive gateway using an authorised token
func New(ctx context.Context, token *oauth2.Token, oauthConfig *oauth2.Config, account domain.Account, retries int) (*Client, error) {
	httpClient := oauthConfig.Client(ctx, token)

	service, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	if retries < 1 {
		retries = 1
	}

	return &Client{
		service: service,
		account: account,
		retries: retries,
	}, nil
}

// NewWithService creates a Drive gateway from an existing service, for tests
func NewWithService(service *drive.Service, account domain.Account, retries int) *Client {
	if retries < 1 {
		retries = 1
	}
	return &Client{service: service, account: account, retries: retries}
}

func (c *Client) GetEntry(ctx context.Context, id string) (domain.Entry, error) {
	call := c.service.Files.Get(id).Fields(googleapi.Field(entryFields))
	if c.account.Type == domain.AccountBusiness {
		call = call.SupportsAllDrives(true)
	}

	var file *drive.File
	err := c.withRetry(ctx, func() error {
		var callErr error
		file, callErr = call.Context(ctx).Do()
		return callErr
	})
	if err != nil {
		return domain.Entry{}, c.mapError(err)
	}

	return c.decodeEntry(ctx, file)
}

func (c *Client) ListChildren(ctx context.Context, parentID string) ([]domain.Entry, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false", escapeQuery(parentID))
	return c.listEntries(ctx, query)
}

func (c *Client) FindByProperty(ctx context.Context, key, value string) ([]domain.Entry, error) {
	query := fmt.Sprintf("properties has { key='%s' and value='%s' } and trashed=false",
		escapeQuery(key), escapeQuery(value))
	return c.listEntries(ctx, query)
}

// listEntries runs a files.list query, looping until no page token remains
func (c *Client) listEntries(ctx context.Context, query string) ([]domain.Entry, error) {
	var result []domain.Entry
	pageToken := ""

	for {
		call := c.service.Files.List().
			Q(query).
			Spaces("drive").
			OrderBy("folder,name").
			PageSize(PageSize).
			Fields(googleapi.Field(fmt.Sprintf("nextPageToken, files(%s)", entryFields)))

		switch c.account.Type {
		case domain.AccountPersonal:
			call = call.Corpora("user")
		case domain.AccountBusiness:
			call = call.Corpora("drive").
				DriveId(c.account.DriveID).
				IncludeItemsFromAllDrives(true).
				SupportsAllDrives(true)
		}

		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		var fileList *drive.FileList
		err := c.withRetry(ctx, func() error {
			var callErr error
			fileList, callErr = call.Context(ctx).Do()
			return callErr
		})
		if err != nil {
			return nil, c.mapError(err)
		}

		for _, f := range fileList.Files {
			entry, err := c.decodeEntry(ctx, f)
			if err != nil {
				return nil, err
			}
			result = append(result, entry)
		}

		pageToken = fileList.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return result, nil
}

func (c *Client) ListPermissions(ctx context.Context, entryID string) ([]domain.Permission, error) {
	var result []domain.Permission
	pageToken := ""

	for {
		call := c.service.Permissions.List(entryID).
			Fields(googleapi.Field(fmt.Sprintf("nextPageToken, permissions(%s)", permissionFields)))
		if c.account.Type == domain.AccountBusiness {
			call = call.SupportsAllDrives(true)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		var permList *drive.PermissionList
		err := c.withRetry(ctx, func() error {
			var callErr error
			permList, callErr = call.Context(ctx).Do()
			return callErr
		})
		if err != nil {
			return nil, c.mapError(err)
		}

		for _, p := range permList.Permissions {
			perm, err := decodePermission(p)
			if err != nil {
				return nil, err
			}
			result = append(result, perm)
		}

		pageToken = permList.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return result, nil
}

func (c *Client) CreateFolder(ctx context.Context, template domain.Entry, parentID string) (domain.Entry, error) {
	body := &drive.File{
		Name:         template.Name,
		MimeType:     domain.MimeTypeFolder,
		Parents:      []string{parentID},
		CreatedTime:  template.CreatedAt.Format(time.RFC3339Nano),
		ModifiedTime: template.ModifiedAt.Format(time.RFC3339Nano),
		Properties: map[string]string{
			domain.PropKeyOriginalID: template.ID,
		},
	}

	var file *drive.File
	err := c.withRetry(ctx, func() error {
		var callErr error
		file, callErr = c.service.Files.Create(body).
			Fields(googleapi.Field(entryFields)).
			Context(ctx).Do()
		return callErr
	})
	if err != nil {
		return domain.Entry{}, c.mapError(err)
	}

	return c.decodeEntry(ctx, file)
}

func (c *Client) CopyFile(ctx context.Context, template domain.Entry, parentID string) (domain.Entry, error) {
	body := &drive.File{
		Name:         template.Name,
		MimeType:     template.MimeType,
		Description:  template.Description,
		Parents:      []string{parentID},
		CreatedTime:  template.CreatedAt.Format(time.RFC3339Nano),
		ModifiedTime: template.ModifiedAt.Format(time.RFC3339Nano),
		Properties: map[string]string{
			domain.PropKeyOriginalID: template.ID,
		},
	}

	var file *drive.File
	err := c.withRetry(ctx, func() error {
		var callErr error
		file, callErr = c.service.Files.Copy(template.ID, body).
			Fields(googleapi.Field(entryFields)).
			Context(ctx).Do()
		return callErr
	})
	if err != nil {
		return domain.Entry{}, c.mapError(err)
	}

	return c.decodeEntry(ctx, file)
}

func (c *Client) UpdateProperties(ctx context.Context, entryID string, props map[string]string) (domain.Entry, error) {
	body := &drive.File{Properties: make(map[string]string)}
	for k, v := range props {
		if v == "" {
			// the API removes a property when its value is null
			body.NullFields = append(body.NullFields, "Properties."+k)
			continue
		}
		body.Properties[k] = v
	}

	return c.updateEntry(ctx, entryID, body, nil)
}

func (c *Client) RenameEntry(ctx context.Context, entryID, newName string) (domain.Entry, error) {
	if newName == "" {
		return domain.Entry{}, fmt.Errorf("no new name given for entry '%s'", entryID)
	}
	return c.updateEntry(ctx, entryID, &drive.File{Name: newName}, nil)
}

func (c *Client) MoveEntry(ctx context.Context, entryID, newParentID string) (domain.Entry, error) {
	current, err := c.GetEntry(ctx, entryID)
	if err != nil {
		return domain.Entry{}, err
	}
	reparent := func(call *drive.FilesUpdateCall) *drive.FilesUpdateCall {
		return call.RemoveParents(current.ParentID).AddParents(newParentID)
	}
	return c.updateEntry(ctx, entryID, &drive.File{}, reparent)
}

func (c *Client) updateEntry(ctx context.Context, entryID string, body *drive.File, modify func(*drive.FilesUpdateCall) *drive.FilesUpdateCall) (domain.Entry, error) {
	call := c.service.Files.Update(entryID, body).Fields(googleapi.Field(entryFields))
	if c.account.Type == domain.AccountBusiness {
		call = call.SupportsAllDrives(true)
	}
	if modify != nil {
		call = modify(call)
	}

	var file *drive.File
	err := c.withRetry(ctx, func() error {
		var callErr error
		file, callErr = call.Context(ctx).Do()
		return callErr
	})
	if err != nil {
		return domain.Entry{}, c.mapError(err)
	}

	return c.decodeEntry(ctx, file)
}

func (c *Client) DeletePermission(ctx context.Context, entryID, permissionID string) error {
	call := c.service.Permissions.Delete(entryID, permissionID)
	if c.account.Type == domain.AccountBusiness {
		call = call.SupportsAllDrives(true)
	}

	err := c.withRetry(ctx, func() error {
		return call.Context(ctx).Do()
	})
	return c.mapError(err)
}

// decodeEntry converts a Drive file into a domain.Entry, fetching its full
// permission list. Multi-parent and trashed entries are rejected.
func (c *Client) decodeEntry(ctx context.Context, file *drive.File) (domain.Entry, error) {
	if file.Id == "" {
		return domain.Entry{}, fmt.Errorf("%w: file without id", domain.ErrIntegrity)
	}
	if file.Trashed {
		return domain.Entry{}, fmt.Errorf("%w: entry '%s' is trashed", domain.ErrIntegrity, file.Id)
	}
	if len(file.Parents) != 1 {
		return domain.Entry{}, fmt.Errorf("%w: entry '%s' has %d parents, want exactly 1",
			domain.ErrIntegrity, file.Id, len(file.Parents))
	}

	permissions, err := c.ListPermissions(ctx, file.Id)
	if err != nil {
		return domain.Entry{}, err
	}

	createdAt, _ := time.Parse(time.RFC3339, file.CreatedTime)
	modifiedAt, _ := time.Parse(time.RFC3339, file.ModifiedTime)

	return domain.Entry{
		ID:          file.Id,
		Name:        file.Name,
		MimeType:    file.MimeType,
		Description: file.Description,
		ParentID:    file.Parents[0],
		CreatedAt:   createdAt,
		ModifiedAt:  modifiedAt,
		SizeBytes:   file.Size,
		QuotaBytes:  file.QuotaBytesUsed,
		Checksum:    file.Sha256Checksum,
		ViewLink:    file.WebViewLink,
		Properties:  file.Properties,
		Permissions: permissions,
	}, nil
}

func decodePermission(p *drive.Permission) (domain.Permission, error) {
	perm := domain.Permission{
		ID:          p.Id,
		Type:        domain.PermissionType(p.Type),
		Role:        domain.Role(p.Role),
		UserEmail:   p.EmailAddress,
		Domain:      p.Domain,
		DisplayName: p.DisplayName,
	}
	if err := perm.Validate(); err != nil {
		return domain.Permission{}, err
	}
	return perm, nil
}

// withRetry retries transient failures up to the configured attempt count.
// Anything that survives the retries is fatal to the run.
func (c *Client) withRetry(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) {
			return lastErr
		}

		// exponential backoff: 1s, 2s, 4s, ...
		delay := time.Duration(1<<attempt) * time.Second
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}

func isTransient(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 500, 502, 503:
			return true
		}
	}
	return false
}

// escapeQuery escapes special characters in Drive query strings
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "'", "\\'")
	return s
}

// mapError converts Google API errors to domain errors
func (c *Client) mapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 404:
			return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
		case 403:
			return fmt.Errorf("%w: %v", domain.ErrPermissionDenied, err)
		case 429:
			return fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
		}
	}

	return err
}

// Compile-time interface check
var _ gateway.Gateway = (*Client)(nil)
