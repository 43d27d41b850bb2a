package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/meridiantours/meridian/internal/admin/audit"
	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/service"
	"github.com/meridiantours/meridian/pkg/adminsdk"
	"github.com/meridiantours/meridian/pkg/httpx"
)

// queryInt parses a non-negative integer query parameter, returning 0 when
// absent or malformed. Stores apply their own defaults and caps.
func queryInt(r *http.Request, name string) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// requestMeta captures who performed a request and from where, for the audit
// trail. ActorID is empty on unauthenticated endpoints.
func requestMeta(r *http.Request) audit.Meta {
	return audit.Meta{
		ActorID:   httpx.UserIDFromContext(r.Context()),
		OriginIP:  httpx.IPKeyExtractor(r),
		UserAgent: r.UserAgent(),
	}
}

// validationDetail strips the category prefix from a wrapped validation
// error, leaving just the field message for the response body.
func validationDetail(err error) string {
	return strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func toClientInfo(c domain.Client) adminsdk.ClientInfo {
	return adminsdk.ClientInfo{
		ID:             c.ID,
		FullName:       c.FullName,
		Email:          c.Email,
		Phone:          c.Phone,
		Nationality:    c.Nationality,
		PassportNumber: c.PassportNumber,
		Company:        c.Company,
		Address:        c.Address,
		Notes:          c.Notes,
		Active:         c.Active,
		CreatedAt:      c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      c.UpdatedAt.Format(time.RFC3339),
	}
}

func toClientInfos(clients []domain.Client) []adminsdk.ClientInfo {
	infos := make([]adminsdk.ClientInfo, len(clients))
	for i, c := range clients {
		infos[i] = toClientInfo(c)
	}
	return infos
}

func toApplicationInfo(a domain.Application) adminsdk.ApplicationInfo {
	return adminsdk.ApplicationInfo{
		ID:          a.ID,
		TrackingID:  a.TrackingID,
		ClientID:    a.ClientID,
		Type:        string(a.Type),
		Status:      string(a.Status),
		Priority:    a.Priority,
		Data:        a.Data,
		SubmittedAt: a.SubmittedAt.Format(time.RFC3339),
		UpdatedAt:   a.UpdatedAt.Format(time.RFC3339),
	}
}

func toApplicationInfos(apps []domain.Application) []adminsdk.ApplicationInfo {
	infos := make([]adminsdk.ApplicationInfo, len(apps))
	for i, a := range apps {
		infos[i] = toApplicationInfo(a)
	}
	return infos
}

func toStatusChangeInfos(history []domain.StatusChange) []adminsdk.StatusChangeInfo {
	infos := make([]adminsdk.StatusChangeInfo, len(history))
	for i, sc := range history {
		infos[i] = adminsdk.StatusChangeInfo{
			From:      string(sc.From),
			To:        string(sc.To),
			ChangedBy: sc.ChangedBy,
			Note:      sc.Note,
			ChangedAt: sc.ChangedAt.Format(time.RFC3339),
		}
	}
	return infos
}

func toTrackingResponse(v domain.TrackingView) adminsdk.TrackingResponse {
	timeline := make([]adminsdk.TrackingEvent, len(v.Timeline))
	for i, ev := range v.Timeline {
		timeline[i] = adminsdk.TrackingEvent{
			Status:     string(ev.Status),
			OccurredAt: ev.OccurredAt.Format(time.RFC3339),
		}
	}
	return adminsdk.TrackingResponse{
		TrackingID:  v.TrackingID,
		Type:        string(v.Type),
		Status:      string(v.Status),
		SubmittedAt: v.SubmittedAt.Format(time.RFC3339),
		UpdatedAt:   v.UpdatedAt.Format(time.RFC3339),
		Timeline:    timeline,
	}
}

func toPostInfo(p domain.Post) adminsdk.PostInfo {
	return adminsdk.PostInfo{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Body:        p.Body,
		Excerpt:     p.Excerpt,
		CoverImage:  p.CoverImage,
		Category:    p.Category,
		Tags:        p.Tags,
		Status:      string(p.Status),
		AuthorID:    p.AuthorID,
		PublishedAt: formatTimePtr(p.PublishedAt),
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}

func toPostInfos(posts []domain.Post) []adminsdk.PostInfo {
	infos := make([]adminsdk.PostInfo, len(posts))
	for i, p := range posts {
		infos[i] = toPostInfo(p)
	}
	return infos
}

func toPackageInfo(p domain.TravelPackage) adminsdk.PackageInfo {
	return adminsdk.PackageInfo{
		ID:           p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		Destination:  p.Destination,
		Description:  p.Description,
		DurationDays: p.DurationDays,
		PriceCents:   p.PriceCents,
		Currency:     p.Currency,
		Inclusions:   p.Inclusions,
		Exclusions:   p.Exclusions,
		IsFeatured:   p.IsFeatured,
		Active:       p.Active,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    p.UpdatedAt.Format(time.RFC3339),
	}
}

func toPackageInfos(packages []domain.TravelPackage) []adminsdk.PackageInfo {
	infos := make([]adminsdk.PackageInfo, len(packages))
	for i, p := range packages {
		infos[i] = toPackageInfo(p)
	}
	return infos
}

func toProductInfo(p domain.Product) adminsdk.ProductInfo {
	return adminsdk.ProductInfo{
		ID:            p.ID,
		Name:          p.Name,
		SKU:           p.SKU,
		Type:          string(p.Type),
		Description:   p.Description,
		PriceCents:    p.PriceCents,
		Currency:      p.Currency,
		StockQuantity: p.StockQuantity,
		Active:        p.Active,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.Format(time.RFC3339),
	}
}

func toProductInfos(products []domain.Product) []adminsdk.ProductInfo {
	infos := make([]adminsdk.ProductInfo, len(products))
	for i, p := range products {
		infos[i] = toProductInfo(p)
	}
	return infos
}

func toOrderInfo(o domain.Order) adminsdk.OrderInfo {
	items := make([]adminsdk.OrderItemInfo, len(o.Items))
	for i, it := range o.Items {
		items[i] = adminsdk.OrderItemInfo{
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			ProductSKU:     it.ProductSKU,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			TotalCents:     it.TotalCents,
		}
	}
	return adminsdk.OrderInfo{
		ID:            o.ID,
		Number:        o.Number,
		ClientID:      o.ClientID,
		SubtotalCents: o.SubtotalCents,
		DiscountCents: o.DiscountCents,
		TaxCents:      o.TaxCents,
		TotalCents:    o.TotalCents,
		Currency:      o.Currency,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		Items:         items,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     o.UpdatedAt.Format(time.RFC3339),
	}
}

func toOrderInfos(orders []domain.Order) []adminsdk.OrderInfo {
	infos := make([]adminsdk.OrderInfo, len(orders))
	for i, o := range orders {
		infos[i] = toOrderInfo(o)
	}
	return infos
}

func toUserInfo(p domain.Principal) adminsdk.UserInfo {
	info := adminsdk.UserInfo{
		ID:         p.ID,
		Username:   p.Username,
		Email:      p.Email,
		FullName:   p.FullName,
		Role:       p.Role,
		Active:     p.Active,
		MFAEnabled: p.MFAEnabled != nil,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
	}
	if p.LastLoginAt != nil {
		info.LastLoginAt = p.LastLoginAt.Format(time.RFC3339)
	}
	return info
}

func toAuditEntryInfo(e domain.AuditEntry) adminsdk.AuditEntryInfo {
	return adminsdk.AuditEntryInfo{
		ID:           e.ID,
		ActorID:      e.ActorID,
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Detail:       e.Detail,
		OriginIP:     e.OriginIP,
		UserAgent:    e.UserAgent,
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
	}
}

func toAuditEntryInfos(entries []domain.AuditEntry) []adminsdk.AuditEntryInfo {
	infos := make([]adminsdk.AuditEntryInfo, len(entries))
	for i, e := range entries {
		infos[i] = toAuditEntryInfo(e)
	}
	return infos
}

func toSigningKeyInfo(key domain.SigningKey) adminsdk.SigningKeyInfo {
	return adminsdk.SigningKeyInfo{
		ID:        key.ID,
		Kid:       key.Kid,
		Algorithm: key.Algorithm,
		CreatedAt: key.CreatedAt.Format(time.RFC3339),
		RetiredAt: formatTimePtr(key.RetiredAt),
		ExpiresAt: key.ExpiresAt.Format(time.RFC3339),
	}
}

func toSigningKeyInfos(keys []domain.SigningKey) []adminsdk.SigningKeyInfo {
	infos := make([]adminsdk.SigningKeyInfo, len(keys))
	for i, key := range keys {
		infos[i] = toSigningKeyInfo(key)
	}
	return infos
}

func toTokenResponse(pair *domain.TokenPair) adminsdk.TokenResponse {
	return adminsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	}
}
