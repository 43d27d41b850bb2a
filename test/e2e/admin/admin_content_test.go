package admin_test

import (
	"testing"

	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/stretchr/testify/require"
)

// TestPostLifecycle walks a blog post from draft to published to archived:
// 1. Create starts as a draft with a title-derived slug
// 2. Publishing stamps published_at
// 3. The public surface serves the post while published
// 4. Archiving hides it from the public surface but keeps published_at
func TestPostLifecycle(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	post, err := session.CreatePost(ctx, adminsdk.PostPayload{
		Title:    "Hidden Gems of Ha Giang",
		Body:     "The loop road rewards early risers.",
		Excerpt:  "A practical guide to the northern loop.",
		Category: "travel-guides",
		Tags:     []string{"vietnam", "motorbike"},
	})
	require.NoError(t, err)
	require.Equal(t, "draft", post.Status)
	require.Equal(t, "hidden-gems-of-ha-giang", post.Slug, "Slug should derive from the title")
	require.Nil(t, post.PublishedAt, "Drafts have no publication time")
	t.Logf("Created draft %s with slug %s", post.ID, post.Slug)

	// Drafts are invisible publicly
	_, err = client.GetPublishedPost(ctx, post.Slug)
	assertNotFound(t, err, "Public read of a draft")

	// Publish
	published, err := session.UpdatePost(ctx, post.ID, adminsdk.PostPayload{
		Title:    post.Title,
		Body:     post.Body,
		Excerpt:  post.Excerpt,
		Category: post.Category,
		Tags:     post.Tags,
		Status:   "published",
	})
	require.NoError(t, err)
	require.Equal(t, "published", published.Status)
	require.NotNil(t, published.PublishedAt, "Publishing should stamp published_at")
	firstPublishedAt := *published.PublishedAt
	t.Logf("Published at %s", firstPublishedAt)

	// Now the public surface serves it
	publicPost, err := client.GetPublishedPost(ctx, post.Slug)
	require.NoError(t, err)
	require.Equal(t, post.ID, publicPost.ID)
	require.Equal(t, "The loop road rewards early risers.", publicPost.Body)

	// Archive hides it again but keeps the original publication time
	archived, err := session.UpdatePost(ctx, post.ID, adminsdk.PostPayload{
		Title:  post.Title,
		Body:   post.Body,
		Status: "archived",
	})
	require.NoError(t, err)
	require.Equal(t, "archived", archived.Status)
	require.NotNil(t, archived.PublishedAt)
	require.Equal(t, firstPublishedAt, *archived.PublishedAt, "Archiving should keep published_at")

	_, err = client.GetPublishedPost(ctx, post.Slug)
	assertNotFound(t, err, "Public read of an archived post")

	t.Logf("Post lifecycle complete")
}

// TestPostSlugHandling verifies slug derivation, de-duplication and the
// conflict on explicit collisions.
func TestPostSlugHandling(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	first, err := session.CreatePost(ctx, adminsdk.PostPayload{Title: "Street Food in Hanoi"})
	require.NoError(t, err)
	require.Equal(t, "street-food-in-hanoi", first.Slug)

	// A second post with the same title gets a numeric suffix
	second, err := session.CreatePost(ctx, adminsdk.PostPayload{Title: "Street Food in Hanoi"})
	require.NoError(t, err)
	require.Equal(t, "street-food-in-hanoi-2", second.Slug, "Same title should de-duplicate with a suffix")
	t.Logf("Duplicate title de-duplicated to %s", second.Slug)

	// Moving an existing post onto a taken slug is a conflict
	_, err = session.UpdatePost(ctx, second.ID, adminsdk.PostPayload{
		Title: second.Title,
		Slug:  "street-food-in-hanoi",
	})
	assertConflict(t, err, "slug_taken", "Update onto taken slug")

	// An update without a slug keeps the current one, so URLs stay stable
	renamed, err := session.UpdatePost(ctx, second.ID, adminsdk.PostPayload{
		Title: "Street Food in Hanoi, Revisited",
	})
	require.NoError(t, err)
	require.Equal(t, "street-food-in-hanoi-2", renamed.Slug, "Retitling should not move the slug")

	t.Logf("Slug handling verified")
}

// TestPublicPostListing verifies the public listing carries published posts
// only, newest first, with the category filter.
func TestPublicPostListing(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	_, err := session.CreatePost(ctx, adminsdk.PostPayload{Title: "Draft Guide", Category: "guides"})
	require.NoError(t, err)
	older, err := session.CreatePost(ctx, adminsdk.PostPayload{Title: "Older Guide", Category: "guides", Status: "published"})
	require.NoError(t, err)
	newer, err := session.CreatePost(ctx, adminsdk.PostPayload{Title: "Newer Guide", Category: "guides", Status: "published"})
	require.NoError(t, err)
	_, err = session.CreatePost(ctx, adminsdk.PostPayload{Title: "Visa News", Category: "news", Status: "published"})
	require.NoError(t, err)

	// Public list: published only, newest first
	list, err := client.ListPublishedPosts(ctx, adminsdk.PublicListOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(3), list.Total, "Drafts must not count")
	require.Equal(t, newer.ID, list.Posts[0].ID, "Newest published post should lead")

	// Category filter
	guides, err := client.ListPublishedPosts(ctx, adminsdk.PublicListOptions{Category: "guides"})
	require.NoError(t, err)
	require.Equal(t, int64(2), guides.Total)
	for _, p := range guides.Posts {
		require.Equal(t, "guides", p.Category)
	}

	// The admin listing sees drafts too
	adminList, err := session.ListPosts(ctx, adminsdk.ListPostsOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(4), adminList.Total, "Admin listing should include drafts")

	// And can pin a status
	drafts, err := session.ListPosts(ctx, adminsdk.ListPostsOptions{Status: "draft"})
	require.NoError(t, err)
	require.Equal(t, int64(1), drafts.Total)

	_ = older
	t.Logf("Public listing verified: %d published of %d total", list.Total, adminList.Total)
}

// TestPackageLifecycle verifies travel package CRUD and the public listing
// rules: active only, featured first.
func TestPackageLifecycle(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	standard, err := session.CreatePackage(ctx, adminsdk.PackagePayload{
		Name:         "Mekong Delta Explorer",
		Destination:  "Can Tho",
		Description:  "Three days on the water.",
		DurationDays: 3,
		PriceCents:   24900,
		Inclusions:   []string{"boat", "homestay", "breakfast"},
		Exclusions:   []string{"flights"},
	})
	require.NoError(t, err)
	require.Equal(t, "mekong-delta-explorer", standard.Slug)
	require.Equal(t, "USD", standard.Currency, "Currency should default to USD")
	require.True(t, standard.Active)
	require.False(t, standard.IsFeatured)
	t.Logf("Created package %s", standard.ID)

	featured, err := session.CreatePackage(ctx, adminsdk.PackagePayload{
		Name:         "Ha Long Bay Cruise",
		Destination:  "Ha Long",
		DurationDays: 2,
		PriceCents:   39900,
		Currency:     "aud",
		IsFeatured:   true,
	})
	require.NoError(t, err)
	require.Equal(t, "AUD", featured.Currency, "Currency should be normalised to upper case")

	inactive := false
	hidden, err := session.CreatePackage(ctx, adminsdk.PackagePayload{
		Name:         "Retired Tour",
		DurationDays: 5,
		PriceCents:   10000,
		Active:       &inactive,
	})
	require.NoError(t, err)
	require.False(t, hidden.Active)

	// Public listing: active only, featured leads even though it is not newest
	public, err := client.ListPublicPackages(ctx, adminsdk.PublicListOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(2), public.Total, "Inactive packages must not appear publicly")
	require.Equal(t, featured.ID, public.Packages[0].ID, "Featured package should lead the public list")

	// Admin listing sees everything
	adminList, err := session.ListPackages(ctx, adminsdk.ListPackagesOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(3), adminList.Total)

	// Update: deactivate the featured one and watch it vanish publicly
	_, err = session.UpdatePackage(ctx, featured.ID, adminsdk.PackagePayload{
		Name:         featured.Name,
		DurationDays: featured.DurationDays,
		PriceCents:   featured.PriceCents,
		Currency:     featured.Currency,
		IsFeatured:   true,
		Active:       &inactive,
	})
	require.NoError(t, err)

	public, err = client.ListPublicPackages(ctx, adminsdk.PublicListOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(1), public.Total)
	require.Equal(t, standard.ID, public.Packages[0].ID)

	// Delete
	err = session.DeletePackage(ctx, standard.ID)
	require.NoError(t, err)
	_, err = session.GetPackage(ctx, standard.ID)
	assertNotFound(t, err, "Get after delete")

	t.Logf("Package lifecycle complete")
}

// TestPackageValidation verifies the package payload checks.
func TestPackageValidation(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)
	session := loginAdmin(t, client)
	ctx := t.Context()

	tests := []struct {
		name    string
		payload adminsdk.PackagePayload
	}{
		{"missing name", adminsdk.PackagePayload{DurationDays: 3, PriceCents: 1000}},
		{"zero duration", adminsdk.PackagePayload{Name: "Tour", PriceCents: 1000}},
		{"negative price", adminsdk.PackagePayload{Name: "Tour", DurationDays: 3, PriceCents: -1}},
		{"bad currency", adminsdk.PackagePayload{Name: "Tour", DurationDays: 3, PriceCents: 1000, Currency: "DONG"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := session.CreatePackage(ctx, tt.payload)
			require.Error(t, err)
			require.Contains(t, err.Error(), "validation")
		})
	}

	t.Logf("Package validation verified")
}
