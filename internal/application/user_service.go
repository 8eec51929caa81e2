package application

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/authgate/authgate/internal/domain/entity"
	"github.com/authgate/authgate/internal/domain/repository"
	"github.com/authgate/authgate/pkg/apperr"
	"github.com/authgate/authgate/pkg/helpers"
	"github.com/authgate/authgate/pkg/mailer"
)

// UserService is the user directory: CRUD, credential checks, soft delete,
// paginated listing, and the secondary Elasticsearch index.
type UserService struct {
	Repo         repository.UserRepository
	Pub          EventPublisher
	Logger       *logrus.Logger
	GCS          *storage.Client
	GCSBucket    string
	ES           *elasticsearch.Client
	ESUsersIndex string
}

func NewUserService(repo repository.UserRepository, pub EventPublisher, logger *logrus.Logger, gcs *storage.Client, gcsBucket string, es *elasticsearch.Client, esUsersIndex string) *UserService {
	return &UserService{
		Repo:         repo,
		Pub:          pub,
		Logger:       logger,
		GCS:          gcs,
		GCSBucket:    gcsBucket,
		ES:           es,
		ESUsersIndex: esUsersIndex,
	}
}

type CreateUserInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Avatar   string
}

// CreateUser hashes the password and inserts the user as ACTIVE. A taken
// email fails Conflict, whether caught by the pre-check or by the store's
// unique constraint.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*entity.User, error) {
	if existing, err := s.Repo.GetByEmail(ctx, in.Email); err == nil && existing != nil {
		return nil, apperr.Conflict("email already in use")
	} else if err != nil && !apperr.IsNotFound(err) {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}

	u := &entity.User{
		Email:    in.Email,
		Password: hash,
		Name:     in.Name,
		Phone:    in.Phone,
		Avatar:   in.Avatar,
		Status:   entity.StatusActive,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.indexUser(ctx, u)
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *UserService) GetByIDWithRoles(ctx context.Context, id string) (*entity.UserWithRoles, error) {
	return s.Repo.GetByIDWithRoles(ctx, id)
}

func (s *UserService) GetByEmailWithRoles(ctx context.Context, email string) (*entity.UserWithRoles, error) {
	return s.Repo.GetByEmailWithRoles(ctx, email)
}

// ValidatePassword checks a plain password against the stored hash.
func (s *UserService) ValidatePassword(u *entity.User, password string) bool {
	return helpers.CompareHashAndPassword(u.Password, password)
}

type UpdateUserInput struct {
	Name   string
	Phone  string
	Avatar string
}

func (s *UserService) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Phone != "" {
		u.Phone = in.Phone
	}
	if in.Avatar != "" {
		u.Avatar = in.Avatar
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	s.indexUser(ctx, u)
	return u, nil
}

// ChangePassword fails Conflict on a wrong old password and leaves the
// stored hash untouched in that case.
func (s *UserService) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !helpers.CompareHashAndPassword(u.Password, oldPassword) {
		return apperr.Conflict("old password is incorrect")
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal("hash password", err)
	}
	if err := s.Repo.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}
	if s.Pub != nil {
		job := mailer.EmailJob{To: u.Email, Event: mailer.EventPasswordChanged, Data: map[string]any{"name": u.Name}}
		if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("publish password-changed event failed")
		}
	}
	return nil
}

func (s *UserService) UpdateStatus(ctx context.Context, id string, status entity.UserStatus) (*entity.User, error) {
	if _, err := s.Repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.Repo.GetByID(ctx, id)
}

// Delete soft-deletes: the row stays, the status flips to BANNED.
func (s *UserService) Delete(ctx context.Context, id string) error {
	_, err := s.UpdateStatus(ctx, id, entity.StatusBanned)
	return err
}

func (s *UserService) VerifyEmail(ctx context.Context, id string) error {
	return s.Repo.SetEmailVerified(ctx, id)
}

// Pagination is the listing metadata returned alongside the page.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// List returns a page of sanitized users plus pagination metadata.
func (s *UserService) List(ctx context.Context, p repository.ListUsersParams) ([]entity.Projection, *Pagination, error) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 10
	}
	users, err := s.Repo.List(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	total, err := s.Repo.Count(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	out := make([]entity.Projection, 0, len(users))
	for i := range users {
		out = append(out, users[i].Project())
	}
	meta := &Pagination{
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(p.Limit))),
	}
	return out, meta, nil
}

// UploadAvatar stores the image in GCS and records the public URL.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", apperr.Errorf("avatar storage not configured")
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", apperr.Internal("upload avatar", err)
	}
	u.Avatar = url
	if err := s.Repo.Update(ctx, u); err != nil {
		return "", err
	}
	s.indexUser(ctx, u)
	return url, nil
}

// indexUser mirrors the user into the Elasticsearch index used by the admin
// search endpoint. Best-effort; failures are logged only.
func (s *UserService) indexUser(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"phone":      u.Phone,
		"status":     u.Status,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

// Search performs a multi_match query on email, name and phone.
func (s *UserService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name", "phone"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, apperr.Internal("search users", err)
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperr.Internal("decode search response", err)
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

var _ UserDirectory = (*UserService)(nil)
