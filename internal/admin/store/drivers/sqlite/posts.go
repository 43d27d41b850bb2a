package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/store"
)

type postsRepo struct {
	q querier
}

const postColumns = `id, title, slug, body, excerpt, cover_image, category, tags,
	status, author_id, published_at, created_at, updated_at`

func scanPost(s rowScanner) (domain.Post, error) {
	var (
		p         domain.Post
		tags      string
		published sql.NullTime
	)
	err := s.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Body, &p.Excerpt, &p.CoverImage, &p.Category, &tags,
		&p.Status, &p.AuthorID, &published, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Post{}, err
	}
	p.Tags, err = decodeStrings(tags)
	if err != nil {
		return domain.Post{}, err
	}
	p.PublishedAt = mapNullTimePtr(published)
	return p, nil
}

func postFilterSQL(f store.PostFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		conds = append(conds, `status = ?`)
		args = append(args, string(f.Status))
	}
	if f.Category != "" {
		conds = append(conds, `category = ?`)
		args = append(args, f.Category)
	}
	if len(conds) == 0 {
		return ``, nil
	}
	return ` WHERE ` + strings.Join(conds, ` AND `), args
}

func (r *postsRepo) CreatePost(ctx context.Context, p domain.Post) error {
	tags, err := encodeStrings(p.Tags)
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO posts (id, title, slug, body, excerpt, cover_image, category, tags,
			status, author_id, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Slug, p.Body, p.Excerpt, p.CoverImage, p.Category, tags,
		string(p.Status), p.AuthorID, mapOptionalTime(p.PublishedAt), p.CreatedAt, p.UpdatedAt,
	)
	return mapUnique(err)
}

func (r *postsRepo) GetPostByID(ctx context.Context, id string) (domain.Post, error) {
	p, err := scanPost(r.q.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err != nil {
		return domain.Post{}, mapNotFound(err)
	}
	return p, nil
}

func (r *postsRepo) GetPostBySlug(ctx context.Context, slug string) (domain.Post, error) {
	p, err := scanPost(r.q.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug))
	if err != nil {
		return domain.Post{}, mapNotFound(err)
	}
	return p, nil
}

func (r *postsRepo) ListPosts(ctx context.Context, f store.PostFilter) ([]domain.Post, error) {
	where, args := postFilterSQL(f)
	limit, offset := pageArgs(f.Limit, f.Offset)
	args = append(args, limit, offset)

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts`+where+
			` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postsRepo) CountPosts(ctx context.Context, f store.PostFilter) (int64, error) {
	where, args := postFilterSQL(f)
	var count int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts`+where, args...).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postsRepo) PostSlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE slug = ?`, slug).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postsRepo) UpdatePost(ctx context.Context, p domain.Post) error {
	tags, err := encodeStrings(p.Tags)
	if err != nil {
		return err
	}
	res, err := r.q.ExecContext(ctx, `
		UPDATE posts SET title = ?, slug = ?, body = ?, excerpt = ?, cover_image = ?,
			category = ?, tags = ?, status = ?, published_at = ?, updated_at = ?
		WHERE id = ?`,
		p.Title, p.Slug, p.Body, p.Excerpt, p.CoverImage,
		p.Category, tags, string(p.Status), mapOptionalTime(p.PublishedAt),
		time.Now().UTC(), p.ID,
	)
	if err != nil {
		return mapUnique(err)
	}
	return requireRowAffected(res)
}

func (r *postsRepo) DeletePost(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
