package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/meridiantours/meridian/internal/admin/audit"
	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/meridiantours/meridian/pkg/idx"
	"github.com/meridiantours/meridian/pkg/slogx"
)

var (
	ErrPostNotFound    = errors.New("post_not_found")
	ErrPackageNotFound = errors.New("package_not_found")
	ErrSlugTaken       = errors.New("slug_taken")
)

// slugAttempts bounds the numeric de-duplication suffix search.
const slugAttempts = 100

// ContentService owns the published surface of the site: blog posts and
// travel packages. Admin CRUD goes through here so every mutation is audited
// and slugs stay unique; the public read paths only ever see published posts
// and active packages.
type ContentService struct {
	Store store.Store
	Audit *audit.Recorder
}

// PostInput carries the mutable blog post fields for create and update.
type PostInput struct {
	Title      string
	Slug       string // empty: derive from title on create, keep on update
	Body       string
	Excerpt    string
	CoverImage string
	Category   string
	Tags       []string
	Status     domain.PostStatus // empty defaults to draft on create
}

// CreatePost writes a new blog post authored by the acting principal. The
// slug derives from the title unless one is given, de-duplicated with a
// numeric suffix against existing posts.
func (s *ContentService) CreatePost(ctx context.Context, meta audit.Meta, in PostInput) (domain.Post, error) {
	l := slogx.FromContext(ctx)

	if strings.TrimSpace(in.Title) == "" {
		return domain.Post{}, validationf("title is required")
	}
	status := in.Status
	if status == "" {
		status = domain.PostDraft
	}
	if !status.IsValid() {
		return domain.Post{}, validationf("unknown post status %q", status)
	}

	slug, err := s.resolveSlug(ctx, in.Slug, in.Title, s.Store.Posts().PostSlugExists)
	if err != nil {
		return domain.Post{}, err
	}

	now := time.Now().UTC()
	p := domain.Post{
		ID:         idx.New().String(),
		Title:      in.Title,
		Slug:       slug,
		Body:       in.Body,
		Excerpt:    in.Excerpt,
		CoverImage: in.CoverImage,
		Category:   in.Category,
		Tags:       in.Tags,
		Status:     status,
		AuthorID:   meta.ActorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if status == domain.PostPublished {
		p.PublishedAt = &now
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Posts().CreatePost(ctx, p); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrSlugTaken
			}
			return err
		}
		return s.Audit.Record(ctx, tx, audit.Event{
			Meta:         meta,
			Action:       "post.create",
			ResourceType: "post",
			ResourceID:   p.ID,
			Detail:       map[string]any{"slug": p.Slug, "status": p.Status},
		})
	})
	if err != nil {
		return domain.Post{}, err
	}

	l.Info("post created", slog.String("post_id", p.ID), slog.String("slug", p.Slug))
	return p, nil
}

// GetPost returns a post by id, drafts included.
func (s *ContentService) GetPost(ctx context.Context, id string) (domain.Post, error) {
	p, err := s.Store.Posts().GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Post{}, ErrPostNotFound
		}
		return domain.Post{}, err
	}
	return p, nil
}

// GetPublishedPostBySlug is the public read: anything not published looks
// like it does not exist.
func (s *ContentService) GetPublishedPostBySlug(ctx context.Context, slug string) (domain.Post, error) {
	p, err := s.Store.Posts().GetPostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Post{}, ErrPostNotFound
		}
		return domain.Post{}, err
	}
	if p.Status != domain.PostPublished {
		return domain.Post{}, ErrPostNotFound
	}
	return p, nil
}

// ListPosts returns a filtered page of posts plus the total match count.
func (s *ContentService) ListPosts(ctx context.Context, f store.PostFilter) ([]domain.Post, int64, error) {
	posts, err := s.Store.Posts().ListPosts(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Store.Posts().CountPosts(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// ListPublishedPosts is the public listing, pinned to published status.
func (s *ContentService) ListPublishedPosts(ctx context.Context, category string, limit, offset int) ([]domain.Post, int64, error) {
	return s.ListPosts(ctx, store.PostFilter{
		Status:   domain.PostPublished,
		Category: category,
		Limit:    limit,
		Offset:   offset,
	})
}

// UpdatePost rewrites a post's mutable fields. The slug only changes when the
// input names a new one, so published URLs stay stable across edits.
// PublishedAt is stamped on the first move to published and kept thereafter.
func (s *ContentService) UpdatePost(ctx context.Context, meta audit.Meta, id string, in PostInput) (domain.Post, error) {
	l := slogx.FromContext(ctx)

	if strings.TrimSpace(in.Title) == "" {
		return domain.Post{}, validationf("title is required")
	}
	status := in.Status
	if status != "" && !status.IsValid() {
		return domain.Post{}, validationf("unknown post status %q", status)
	}

	p, err := s.Store.Posts().GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Post{}, ErrPostNotFound
		}
		return domain.Post{}, err
	}

	if in.Slug != "" && in.Slug != p.Slug {
		slug := slugify(in.Slug)
		if slug == "" {
			return domain.Post{}, validationf("slug %q is empty after normalisation", in.Slug)
		}
		taken, err := s.Store.Posts().PostSlugExists(ctx, slug)
		if err != nil {
			return domain.Post{}, err
		}
		if taken {
			return domain.Post{}, ErrSlugTaken
		}
		p.Slug = slug
	}

	p.Title = in.Title
	p.Body = in.Body
	p.Excerpt = in.Excerpt
	p.CoverImage = in.CoverImage
	p.Category = in.Category
	p.Tags = in.Tags
	now := time.Now().UTC()
	if status != "" {
		if status == domain.PostPublished && p.PublishedAt == nil {
			p.PublishedAt = &now
		}
		p.Status = status
	}
	p.UpdatedAt = now

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Posts().UpdatePost(ctx, p); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrSlugTaken
			}
			return err
		}
		return s.Audit.Record(ctx, tx, audit.Event{
			Meta:         meta,
			Action:       "post.update",
			ResourceType: "post",
			ResourceID:   p.ID,
			Detail:       map[string]any{"slug": p.Slug, "status": p.Status},
		})
	})
	if err != nil {
		return domain.Post{}, err
	}

	l.Info("post updated", slog.String("post_id", p.ID))
	return p, nil
}

// DeletePost removes a post outright. Archiving is the softer path.
func (s *ContentService) DeletePost(ctx context.Context, meta audit.Meta, id string) error {
	l := slogx.FromContext(ctx)

	p, err := s.Store.Posts().GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Posts().DeletePost(ctx, id); err != nil {
			return err
		}
		return s.Audit.Record(ctx, tx, audit.Event{
			Meta:         meta,
			Action:       "post.delete",
			ResourceType: "post",
			ResourceID:   id,
			Detail:       map[string]any{"slug": p.Slug},
		})
	})
	if err != nil {
		return err
	}

	l.Info("post deleted", slog.String("post_id", id))
	return nil
}

// PackageInput carries the mutable travel package fields.
type PackageInput struct {
	Name         string
	Slug         string // empty: derive from name on create, keep on update
	Destination  string
	Description  string
	DurationDays int
	PriceCents   int64
	Currency     string
	Inclusions   []string
	Exclusions   []string
	IsFeatured   bool
	Active       *bool // nil keeps the current value (create defaults to true)
}

func (in PackageInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return validationf("name is required")
	}
	if in.DurationDays <= 0 {
		return validationf("duration_days must be positive")
	}
	if in.PriceCents < 0 {
		return validationf("price_cents must not be negative")
	}
	if in.Currency != "" && len(in.Currency) != 3 {
		return validationf("currency %q is not an ISO 4217 code", in.Currency)
	}
	return nil
}

// CreatePackage writes a new travel package.
func (s *ContentService) CreatePackage(ctx context.Context, meta audit.Meta, in PackageInput) (domain.TravelPackage, error) {
	l := slogx.FromContext(ctx)

	if err := in.validate(); err != nil {
		return domain.TravelPackage{}, err
	}

	slug, err := s.resolveSlug(ctx, in.Slug, in.Name, s.Store.Packages().PackageSlugExists)
	if err != nil {
		return domain.TravelPackage{}, err
	}

	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	now := time.Now().UTC()
	p := domain.TravelPackage{
		ID:           idx.New().String(),
		Name:         in.Name,
		Slug:         slug,
		Destination:  in.Destination,
		Description:  in.Description,
		DurationDays: in.DurationDays,
		PriceCents:   in.PriceCents,
		Currency:     strings.ToUpper(currency),
		Inclusions:   in.Inclusions,
		Exclusions:   in.Exclusions,
		IsFeatured:   in.IsFeatured,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Active != nil {
		p.Active = *in.Active
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Packages().CreatePackage(ctx, p); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrSlugTaken
			}
			return err
		}
		return s.Audit.Record(ctx, tx, audit.Event{
			Meta:         meta,
			Action:       "package.create",
			ResourceType: "package",
			ResourceID:   p.ID,
			Detail:       map[string]any{"slug": p.Slug},
		})
	})
	if err != nil {
		return domain.TravelPackage{}, err
	}

	l.Info("package created", slog.String("package_id", p.ID), slog.String("slug", p.Slug))
	return p, nil
}

// GetPackage returns a package by id, inactive ones included.
func (s *ContentService) GetPackage(ctx context.Context, id string) (domain.TravelPackage, error) {
	p, err := s.Store.Packages().GetPackageByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TravelPackage{}, ErrPackageNotFound
		}
		return domain.TravelPackage{}, err
	}
	return p, nil
}

// GetActivePackageBySlug is the public read: inactive packages look like
// they do not exist.
func (s *ContentService) GetActivePackageBySlug(ctx context.Context, slug string) (domain.TravelPackage, error) {
	p, err := s.Store.Packages().GetPackageBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TravelPackage{}, ErrPackageNotFound
		}
		return domain.TravelPackage{}, err
	}
	if !p.Active {
		return domain.TravelPackage{}, ErrPackageNotFound
	}
	return p, nil
}

// ListPackages returns a filtered page of packages plus the total match count.
func (s *ContentService) ListPackages(ctx context.Context, f store.PackageFilter) ([]domain.TravelPackage, int64, error) {
	packages, err := s.Store.Packages().ListPackages(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Store.Packages().CountPackages(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return packages, total, nil
}

// ListPublicPackages is the storefront listing: active only, featured first.
func (s *ContentService) ListPublicPackages(ctx context.Context, f store.PackageFilter) ([]domain.TravelPackage, int64, error) {
	f.ActiveOnly = true
	f.FeaturedFirst = true
	return s.ListPackages(ctx, f)
}

// UpdatePackage rewrites a package's mutable fields. As with posts, the slug
// only moves when the input names a new one.
func (s *ContentService) UpdatePackage(ctx context.Context, meta audit.Meta, id string, in PackageInput) (domain.TravelPackage, error) {
	l := slogx.FromContext(ctx)

	if err := in.validate(); err != nil {
		return domain.TravelPackage{}, err
	}

	p, err := s.Store.Packages().GetPackageByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TravelPackage{}, ErrPackageNotFound
		}
		return domain.TravelPackage{}, err
	}

	if in.Slug != "" && in.Slug != p.Slug {
		slug := slugify(in.Slug)
		if slug == "" {
			return domain.TravelPackage{}, validationf("slug %q is empty after normalisation", in.Slug)
		}
		taken, err := s.Store.Packages().PackageSlugExists(ctx, slug)
		if err != nil {
			return domain.TravelPackage{}, err
		}
		if taken {
			return domain.TravelPackage{}, ErrSlugTaken
		}
		p.Slug = slug
	}

	p.Name = in.Name
	p.Destination = in.Destination
	p.Description = in.Description
	p.DurationDays = in.DurationDays
	p.PriceCents = in.PriceCents
	if in.Currency != "" {
		p.Currency = strings.ToUpper(in.Currency)
	}
	p.Inclusions = in.Inclusions
	p.Exclusions = in.Exclusions
	p.IsFeatured = in.IsFeatured
	if in.Active != nil {
		p.Active = *in.Active
	}
	p.UpdatedAt = time.Now().UTC()

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Packages().UpdatePackage(ctx, p); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrSlugTaken
			}
			return err
		}
		return s.Audit.Record(ctx, tx, audit.Event{
			Meta:         meta,
			Action:       "package.update",
			ResourceType: "package",
			ResourceID:   p.ID,
			Detail:       map[string]any{"slug": p.Slug},
		})
	})
	if err != nil {
		return domain.TravelPackage{}, err
	}

	l.Info("package updated", slog.String("package_id", p.ID))
	return p, nil
}

// DeletePackage removes a package outright.
func (s *ContentService) DeletePackage(ctx context.Context, meta audit.Meta, id string) error {
	l := slogx.FromContext(ctx)

	p, err := s.Store.Packages().GetPackageByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPackageNotFound
		}
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Packages().DeletePackage(ctx, id); err != nil {
			return err
		}
		return s.Audit.Record(ctx, tx, audit.Event{
			Meta:         meta,
			Action:       "package.delete",
			ResourceType: "package",
			ResourceID:   id,
			Detail:       map[string]any{"slug": p.Slug},
		})
	})
	if err != nil {
		return err
	}

	l.Info("package deleted", slog.String("package_id", id))
	return nil
}

// resolveSlug picks the slug for a new record: the explicit one when given,
// otherwise the title-derived one, de-duplicated with a numeric suffix.
func (s *ContentService) resolveSlug(
	ctx context.Context,
	explicit, title string,
	exists func(context.Context, string) (bool, error),
) (string, error) {
	source := explicit
	if source == "" {
		source = title
	}
	base := slugify(source)
	if base == "" {
		return "", validationf("slug %q is empty after normalisation", source)
	}

	slug := base
	for i := 2; i <= slugAttempts; i++ {
		taken, err := exists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("could not find a free slug for %q", base)
}

// slugify lowercases the input and collapses every non-alphanumeric run into
// a single hyphen.
func slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastHyphen := true // swallow leading separators
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
