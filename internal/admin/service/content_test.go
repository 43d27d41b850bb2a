package service

import (
	"context"
	"testing"
	"time"

	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/stretchr/testify/require"
)

func newContentService(s store.Store) *ContentService {
	return &ContentService{Store: s, Audit: newRecorder(s)}
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple title", "Bali In June", "bali-in-june"},
		{"punctuation collapses", "Petra, Wadi Rum & the Dead Sea!", "petra-wadi-rum-the-dead-sea"},
		{"already a slug", "kyoto-temple-walk", "kyoto-temple-walk"},
		{"leading and trailing junk", "  --Hidden Gems--  ", "hidden-gems"},
		{"uppercase and digits", "Top 10 Beaches 2026", "top-10-beaches-2026"},
		{"only junk", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, slugify(tt.input))
		})
	}
}

func TestCreatePostGeneratesUniqueSlugs(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newContentService(st)

	author := seedPrincipal(t, st, "writer", "wanderlust-blog", "editor")
	meta := testMeta(author.ID)

	first, err := svc.CreatePost(ctx, meta, PostInput{Title: "Bali in June"})
	require.NoError(t, err)
	require.Equal(t, "bali-in-june", first.Slug)
	require.Equal(t, domain.PostDraft, first.Status)
	require.Equal(t, author.ID, first.AuthorID)
	require.Nil(t, first.PublishedAt)

	second, err := svc.CreatePost(ctx, meta, PostInput{Title: "Bali in June"})
	require.NoError(t, err)
	require.Equal(t, "bali-in-june-2", second.Slug)

	third, err := svc.CreatePost(ctx, meta, PostInput{Title: "Bali in June"})
	require.NoError(t, err)
	require.Equal(t, "bali-in-june-3", third.Slug)

	// An explicit slug wins over the title-derived one.
	custom, err := svc.CreatePost(ctx, meta, PostInput{Title: "Bali in June", Slug: "bali-guide"})
	require.NoError(t, err)
	require.Equal(t, "bali-guide", custom.Slug)

	_, err = svc.CreatePost(ctx, meta, PostInput{Title: "No Title Material", Slug: "!!!"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestPublishStampsPublishedAtOnce(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newContentService(st)

	author := seedPrincipal(t, st, "writer2", "draft-hoarder", "editor")
	meta := testMeta(author.ID)

	p, err := svc.CreatePost(ctx, meta, PostInput{Title: "Slow Travel"})
	require.NoError(t, err)
	require.Nil(t, p.PublishedAt)

	p, err = svc.UpdatePost(ctx, meta, p.ID, PostInput{Title: "Slow Travel", Status: domain.PostPublished})
	require.NoError(t, err)
	require.NotNil(t, p.PublishedAt)
	firstPublish := *p.PublishedAt

	// Unpublish and republish keeps the original publication date.
	p, err = svc.UpdatePost(ctx, meta, p.ID, PostInput{Title: "Slow Travel", Status: domain.PostDraft})
	require.NoError(t, err)
	require.NotNil(t, p.PublishedAt)

	time.Sleep(10 * time.Millisecond)
	p, err = svc.UpdatePost(ctx, meta, p.ID, PostInput{Title: "Slow Travel", Status: domain.PostPublished})
	require.NoError(t, err)
	require.Equal(t, firstPublish.Unix(), p.PublishedAt.Unix())
}

func TestUpdatePostKeepsSlugStable(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newContentService(st)

	author := seedPrincipal(t, st, "writer3", "url-stability", "editor")
	meta := testMeta(author.ID)

	p, err := svc.CreatePost(ctx, meta, PostInput{Title: "Winter in Lapland"})
	require.NoError(t, err)
	require.Equal(t, "winter-in-lapland", p.Slug)

	// Retitling alone never moves a published URL.
	p, err = svc.UpdatePost(ctx, meta, p.ID, PostInput{Title: "Winter in Finnish Lapland"})
	require.NoError(t, err)
	require.Equal(t, "winter-in-lapland", p.Slug)

	other, err := svc.CreatePost(ctx, meta, PostInput{Title: "Aurora Hunting"})
	require.NoError(t, err)

	_, err = svc.UpdatePost(ctx, meta, other.ID, PostInput{Title: "Aurora Hunting", Slug: "winter-in-lapland"})
	require.ErrorIs(t, err, ErrSlugTaken)

	p, err = svc.UpdatePost(ctx, meta, p.ID, PostInput{Title: "Winter in Finnish Lapland", Slug: "lapland-winter"})
	require.NoError(t, err)
	require.Equal(t, "lapland-winter", p.Slug)
}

func TestPublicPostVisibility(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newContentService(st)

	author := seedPrincipal(t, st, "writer4", "publish-button", "editor")
	meta := testMeta(author.ID)

	draft, err := svc.CreatePost(ctx, meta, PostInput{Title: "Unfinished Notes", Category: "guides"})
	require.NoError(t, err)

	published, err := svc.CreatePost(ctx, meta, PostInput{
		Title:    "Street Food in Penang",
		Category: "guides",
		Status:   domain.PostPublished,
	})
	require.NoError(t, err)

	_, err = svc.GetPublishedPostBySlug(ctx, draft.Slug)
	require.ErrorIs(t, err, ErrPostNotFound)

	got, err := svc.GetPublishedPostBySlug(ctx, published.Slug)
	require.NoError(t, err)
	require.Equal(t, published.ID, got.ID)

	posts, total, err := svc.ListPublishedPosts(ctx, "guides", 10, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, posts, 1)
	require.Equal(t, published.ID, posts[0].ID)
}

func TestPackageValidationAndDefaults(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newContentService(st)

	actor := seedPrincipal(t, st, "packager", "bundle-builder", "admin")
	meta := testMeta(actor.ID)

	t.Run("currency defaults to USD", func(t *testing.T) {
		pkg, err := svc.CreatePackage(ctx, meta, PackageInput{
			Name:         "Jordan Highlights",
			Destination:  "Jordan",
			DurationDays: 7,
			PriceCents:   189900,
		})
		require.NoError(t, err)
		require.Equal(t, "USD", pkg.Currency)
		require.Equal(t, "jordan-highlights", pkg.Slug)
		require.True(t, pkg.Active)
	})

	t.Run("duration must be positive", func(t *testing.T) {
		_, err := svc.CreatePackage(ctx, meta, PackageInput{
			Name:        "Day Zero",
			Destination: "Nowhere",
		})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("currency must be three letters", func(t *testing.T) {
		_, err := svc.CreatePackage(ctx, meta, PackageInput{
			Name:         "Bad Money",
			DurationDays: 3,
			Currency:     "DOLLARS",
		})
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestPublicPackageListing(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newContentService(st)

	actor := seedPrincipal(t, st, "packager2", "featured-first", "admin")
	meta := testMeta(actor.ID)

	plain, err := svc.CreatePackage(ctx, meta, PackageInput{
		Name:         "Classic Vietnam",
		Destination:  "Vietnam",
		DurationDays: 10,
		PriceCents:   249900,
	})
	require.NoError(t, err)

	featured, err := svc.CreatePackage(ctx, meta, PackageInput{
		Name:         "Vietnam and Cambodia Combo",
		Destination:  "Vietnam",
		DurationDays: 14,
		PriceCents:   349900,
		IsFeatured:   true,
	})
	require.NoError(t, err)

	inactive := false
	_, err = svc.CreatePackage(ctx, meta, PackageInput{
		Name:         "Retired Tour",
		Destination:  "Vietnam",
		DurationDays: 5,
		PriceCents:   99900,
		Active:       &inactive,
	})
	require.NoError(t, err)

	pkgs, total, err := svc.ListPublicPackages(ctx, store.PackageFilter{Destination: "Vietnam"})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, pkgs, 2)
	require.Equal(t, featured.ID, pkgs[0].ID)
	require.Equal(t, plain.ID, pkgs[1].ID)

	// The retired package is gone from the public surface entirely.
	_, err = svc.GetActivePackageBySlug(ctx, "retired-tour")
	require.ErrorIs(t, err, ErrPackageNotFound)
}
