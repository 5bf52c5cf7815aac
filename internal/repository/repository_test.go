package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/iliyamo/postboard-api/internal/model"
	"github.com/iliyamo/postboard-api/internal/repository"
	"github.com/iliyamo/postboard-api/internal/testutil"
)

func seedUsers(t *testing.T, repo *repository.UserRepo, n int) []*model.User {
	t.Helper()
	out := make([]*model.User, 0, n)
	for i := 1; i <= n; i++ {
		u := &model.User{
			Email:        fmt.Sprintf("user%02d@example.com", i),
			PasswordHash: "x",
			FirstName:    "First",
			LastName:     "Last",
			Age:          20 + i%3,
			Phone:        "+100000000",
		}
		if err := repo.Create(context.Background(), u); err != nil {
			t.Fatalf("create user %d: %v", i, err)
		}
		out = append(out, u)
	}
	return out
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name             string
		page, limit, max int
		want             repository.Page
		offset           int
	}{
		{"defaults", 0, 0, 100, repository.Page{Page: 1, Limit: 10}, 0},
		{"second page", 2, 10, 100, repository.Page{Page: 2, Limit: 10}, 10},
		{"capped", 3, 500, 100, repository.Page{Page: 3, Limit: 100}, 200},
		{"no cap", 1, 500, 0, repository.Page{Page: 1, Limit: 500}, 0},
		{"negative", -4, -1, 100, repository.Page{Page: 1, Limit: 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.NewPage(tt.page, tt.limit, tt.max)
			if got != tt.want {
				t.Fatalf("NewPage() = %+v, want %+v", got, tt.want)
			}
			if got.Offset() != tt.offset {
				t.Fatalf("Offset() = %d, want %d", got.Offset(), tt.offset)
			}
		})
	}
}

func TestUserListSecondPage(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepo(testutil.NewDB(t))
	users := seedUsers(t, repo, 25)

	// a deleted row inside the first window shifts the page by one
	if err := repo.SoftDelete(ctx, users[4].ID); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}

	res, err := repo.List(ctx, repository.UserFilter{}, repository.Page{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.TotalCount != 24 {
		t.Fatalf("TotalCount = %d, want 24", res.TotalCount)
	}
	if len(res.Data) != 10 {
		t.Fatalf("len(Data) = %d, want 10", len(res.Data))
	}
	// live rows 11..20 are seeded users 12..21
	for i, u := range res.Data {
		want := users[11+i].ID
		if u.ID != want {
			t.Fatalf("Data[%d].ID = %d, want %d", i, u.ID, want)
		}
	}
}

func TestUserListFilter(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepo(testutil.NewDB(t))
	seedUsers(t, repo, 9)

	age := 20
	res, err := repo.List(ctx, repository.UserFilter{Age: &age}, repository.Page{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.TotalCount != 3 {
		t.Fatalf("TotalCount = %d, want 3", res.TotalCount)
	}
	for _, u := range res.Data {
		if u.Age != 20 {
			t.Fatalf("filter leaked age %d", u.Age)
		}
	}

	res, err = repo.List(ctx, repository.UserFilter{Email: " USER03@example.com"}, repository.Page{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.TotalCount != 1 || res.Data[0].Email != "user03@example.com" {
		t.Fatalf("email filter = %+v", res)
	}
}

func TestUserSoftDeleteKeepsRow(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewUserRepo(db)
	u := seedUsers(t, repo, 1)[0]

	if err := repo.SoftDelete(ctx, u.ID); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, u.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("GetByID() error = %v, want ErrNotFound", err)
	}
	if err := repo.SoftDelete(ctx, u.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second SoftDelete() error = %v, want ErrNotFound", err)
	}

	var raw model.User
	if err := db.Unscoped().First(&raw, u.ID).Error; err != nil {
		t.Fatalf("row was removed: %v", err)
	}
	if !raw.DeletedAt.Valid {
		t.Fatal("deleted_at not set")
	}
	if raw.Email != u.Email || raw.FirstName != u.FirstName {
		t.Fatalf("fields cleared on delete: %+v", raw)
	}

	taken, err := repo.EmailTaken(ctx, u.Email, 0)
	if err != nil {
		t.Fatalf("EmailTaken() error = %v", err)
	}
	if !taken {
		t.Fatal("soft-deleted email should stay taken")
	}
}

func TestUserEmailTakenExcludesSelf(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepo(testutil.NewDB(t))
	users := seedUsers(t, repo, 2)

	taken, err := repo.EmailTaken(ctx, users[0].Email, users[0].ID)
	if err != nil || taken {
		t.Fatalf("EmailTaken(self) = %v, %v", taken, err)
	}
	taken, err = repo.EmailTaken(ctx, users[0].Email, users[1].ID)
	if err != nil || !taken {
		t.Fatalf("EmailTaken(other) = %v, %v", taken, err)
	}
}

func TestUserCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepo(testutil.NewDB(t))
	seedUsers(t, repo, 1)

	err := repo.Create(ctx, &model.User{Email: "USER01@example.com", PasswordHash: "x", Phone: "1"})
	if !errors.Is(err, repository.ErrEmailExists) {
		t.Fatalf("Create() error = %v, want ErrEmailExists", err)
	}
}

func TestUserUpdateAndRole(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepo(testutil.NewDB(t))
	u := seedUsers(t, repo, 1)[0]

	got, err := repo.Update(ctx, u.ID, map[string]any{"first_name": "Ada"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.FirstName != "Ada" || got.LastName != "Last" {
		t.Fatalf("Update() = %+v", got)
	}

	got, err = repo.SetRole(ctx, u.Email, model.RoleAdmin)
	if err != nil {
		t.Fatalf("SetRole() error = %v", err)
	}
	if got.Role != model.RoleAdmin {
		t.Fatalf("Role = %q", got.Role)
	}

	got, err = repo.SetAvatar(ctx, u.ID, "https://cdn/avatar.png")
	if err != nil {
		t.Fatalf("SetAvatar() error = %v", err)
	}
	if got.Avatar == nil || *got.Avatar != "https://cdn/avatar.png" {
		t.Fatalf("Avatar = %v", got.Avatar)
	}

	if _, err := repo.Update(ctx, 999, map[string]any{"age": 1}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Update(missing) error = %v", err)
	}
}

func TestTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTokenRepo(testutil.NewDB(t))

	for i, pair := range []model.Token{
		{UserID: 1, Email: "a@b.c", AccessTokenHash: "a1", RefreshTokenHash: "r1"},
		{UserID: 1, Email: "a@b.c", AccessTokenHash: "a2", RefreshTokenHash: "r2"},
		{UserID: 2, Email: "x@y.z", AccessTokenHash: "a3", RefreshTokenHash: "r3"},
	} {
		if err := repo.Store(ctx, &pair); err != nil {
			t.Fatalf("Store(%d) error = %v", i, err)
		}
	}

	if _, err := repo.FindActive(ctx, 1, "access", "a2"); err != nil {
		t.Fatalf("FindActive(access) error = %v", err)
	}
	if _, err := repo.FindActive(ctx, 1, "refresh", "r1"); err != nil {
		t.Fatalf("FindActive(refresh) error = %v", err)
	}
	if _, err := repo.FindActive(ctx, 1, "access", "r1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("refresh hash matched as access: %v", err)
	}
	if _, err := repo.FindActive(ctx, 2, "access", "a1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("pair matched for another user: %v", err)
	}

	n, err := repo.RevokeAllForUser(ctx, 1)
	if err != nil || n != 2 {
		t.Fatalf("RevokeAllForUser() = %d, %v", n, err)
	}
	if _, err := repo.FindActive(ctx, 1, "access", "a1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("revoked pair still active: %v", err)
	}
	if c, _ := repo.CountActive(ctx, 2); c != 1 {
		t.Fatalf("other user's pairs touched, CountActive = %d", c)
	}
}

func TestPostAndCommentCRUD(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	posts := repository.NewPostRepo(db)
	comments := repository.NewCommentRepo(db)

	p := &model.Post{AuthorID: 7, Title: "hello", Published: true}
	if err := posts.Create(ctx, p); err != nil {
		t.Fatalf("post Create() error = %v", err)
	}
	if err := posts.Create(ctx, &model.Post{AuthorID: 8, Title: "draft"}); err != nil {
		t.Fatalf("post Create() error = %v", err)
	}

	published := true
	res, err := posts.List(ctx, repository.PostFilter{Published: &published}, repository.Page{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("post List() error = %v", err)
	}
	if res.TotalCount != 1 || res.Data[0].ID != p.ID {
		t.Fatalf("published filter = %+v", res)
	}

	updated, err := posts.Update(ctx, p.ID, map[string]any{"photo": "https://cdn/p.png"})
	if err != nil || updated.Photo == nil {
		t.Fatalf("post Update() = %+v, %v", updated, err)
	}

	c := &model.Comment{AuthorID: 8, PostID: p.ID, Title: "nice", Text: "well said"}
	if err := comments.Create(ctx, c); err != nil {
		t.Fatalf("comment Create() error = %v", err)
	}
	postID := p.ID
	cres, err := comments.List(ctx, repository.CommentFilter{PostID: &postID}, repository.Page{Page: 1, Limit: 10})
	if err != nil || cres.TotalCount != 1 {
		t.Fatalf("comment List() = %+v, %v", cres, err)
	}

	if err := comments.SoftDelete(ctx, c.ID); err != nil {
		t.Fatalf("comment SoftDelete() error = %v", err)
	}
	if _, err := comments.GetByID(ctx, c.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("deleted comment visible: %v", err)
	}
	cres, err = comments.List(ctx, repository.CommentFilter{}, repository.Page{Page: 1, Limit: 10})
	if err != nil || cres.TotalCount != 0 || len(cres.Data) != 0 {
		t.Fatalf("deleted comment listed: %+v, %v", cres, err)
	}
}
