package data

import (
	"context"
	"strings"
	"time"

	"github.com/lk2023060901/vehicle-discovery/internal/listing/biz"
	"github.com/lk2023060901/vehicle-discovery/internal/listing/types"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/database"
	"gorm.io/gorm"
)

// ListingPO is the listings table. The marketplace owns writes; this
// service only reads it outside of seeding.
type ListingPO struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Status   string `gorm:"size:16;not null;index:idx_listings_status_mode,priority:1"`
	Mode     string `gorm:"size:8;not null;index:idx_listings_status_mode,priority:2"`
	Category string `gorm:"size:16;not null;index:idx_listings_category"`
	BodyType string `gorm:"size:16"`

	Title string `gorm:"size:255;not null;default:''"`
	Make  string `gorm:"size:64;not null;default:''"`
	Model string `gorm:"size:64;not null;default:''"`
	Trim  string `gorm:"column:trim_level;size:64;not null;default:''"`

	Price    int64 `gorm:"not null;default:0;index:idx_listings_price"`
	Year     int64 `gorm:"not null;default:0"`
	Odometer int64 `gorm:"not null;default:0"`
	Power    int64 `gorm:"not null;default:0"`

	City    string `gorm:"size:128;not null;default:''"`
	Country string `gorm:"size:2;not null;default:''"`

	Fuel    string `gorm:"size:16"`
	Gearbox string `gorm:"size:16"`
	Doors   int
	Seats   int

	ServiceBook bool `gorm:"not null;default:false"`
	NonSmoker   bool `gorm:"not null;default:false"`
	Warranty    bool `gorm:"not null;default:false"`
	Damaged     bool `gorm:"not null;default:false"`

	Tags database.StringArray `gorm:"not null"`

	Sponsored         bool `gorm:"not null;default:false"`
	SponsoredUntil    *time.Time
	FirstRegistration *time.Time

	SellerID  string    `gorm:"size:64;not null;index:idx_listings_seller_id"`
	CreatedAt time.Time `gorm:"not null;index:idx_listings_created_at"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (ListingPO) TableName() string {
	return "listings"
}

func (po *ListingPO) toListing() *types.Listing {
	return &types.Listing{
		ID:                po.ID,
		Status:            types.Status(po.Status),
		Mode:              types.Mode(po.Mode),
		Category:          types.Category(po.Category),
		BodyType:          types.BodyType(po.BodyType),
		Title:             po.Title,
		Make:              po.Make,
		Model:             po.Model,
		Trim:              po.Trim,
		Price:             po.Price,
		Year:              po.Year,
		Odometer:          po.Odometer,
		Power:             po.Power,
		City:              po.City,
		Country:           po.Country,
		Fuel:              types.Fuel(po.Fuel),
		Gearbox:           types.Gearbox(po.Gearbox),
		Doors:             po.Doors,
		Seats:             po.Seats,
		ServiceBook:       po.ServiceBook,
		NonSmoker:         po.NonSmoker,
		Warranty:          po.Warranty,
		Damaged:           po.Damaged,
		Tags:              []string(po.Tags),
		Sponsored:         po.Sponsored,
		SponsoredUntil:    utcPtr(po.SponsoredUntil),
		FirstRegistration: utcPtr(po.FirstRegistration),
		SellerID:          po.SellerID,
		CreatedAt:         po.CreatedAt.UTC(),
	}
}

func fromListing(l *types.Listing) *ListingPO {
	po := &ListingPO{
		ID:                l.ID,
		Status:            string(l.Status),
		Mode:              string(l.Mode),
		Category:          string(l.Category),
		BodyType:          string(l.BodyType),
		Title:             l.Title,
		Make:              l.Make,
		Model:             l.Model,
		Trim:              l.Trim,
		Price:             l.Price,
		Year:              l.Year,
		Odometer:          l.Odometer,
		Power:             l.Power,
		City:              l.City,
		Country:           l.Country,
		Fuel:              string(l.Fuel),
		Gearbox:           string(l.Gearbox),
		Doors:             l.Doors,
		Seats:             l.Seats,
		ServiceBook:       l.ServiceBook,
		NonSmoker:         l.NonSmoker,
		Warranty:          l.Warranty,
		Damaged:           l.Damaged,
		Tags:              database.StringArray(l.Tags),
		Sponsored:         l.Sponsored,
		SponsoredUntil:    storedPtr(l.SponsoredUntil),
		FirstRegistration: storedPtr(l.FirstRegistration),
		SellerID:          l.SellerID,
		CreatedAt:         storedTime(l.CreatedAt),
	}
	if po.Tags == nil {
		po.Tags = database.StringArray{}
	}
	return po
}

// storedTime is t at the precision postgres keeps, in UTC so text-backed
// drivers compare it correctly
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func storedPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := storedTime(*t)
	return &u
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// ListingRepo reads listings through gorm
type ListingRepo struct {
	db *database.DB
}

// NewListingRepo creates a listing repository
func NewListingRepo(db *database.DB) biz.ListingRepo {
	return &ListingRepo{db: db}
}

// Find translates the store predicate into SQL. It selects the same rows as
// StorePredicate.Matches.
func (r *ListingRepo) Find(ctx context.Context, p biz.StorePredicate) ([]*types.Listing, error) {
	var rows []*ListingPO
	if err := r.filtered(ctx, p).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toListings(rows), nil
}

// FindPage counts, orders and pages matches in SQL with the same ordering
// and clamping as biz.SortListings and biz.Paginate.
func (r *ListingRepo) FindPage(ctx context.Context, p biz.StorePredicate, sortKey types.SortKey, page, pageSize int) (*types.ResultPage, error) {
	total, err := database.Count(ctx, r.filtered(ctx, p), &ListingPO{}, nil)
	if err != nil {
		return nil, err
	}

	page, pageSize, totalPages := biz.ClampPage(int(total), page, pageSize)

	var rows []*ListingPO
	err = r.filtered(ctx, p).
		Scopes(sortScope(sortKey), database.Paginate(page, pageSize)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return &types.ResultPage{
		Items:      toListings(rows),
		Total:      int(total),
		TotalPages: totalPages,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// CountCreatedAfter counts matches created strictly after since
func (r *ListingRepo) CountCreatedAfter(ctx context.Context, p biz.StorePredicate, since time.Time) (int, error) {
	n, err := database.Count(ctx, r.filtered(ctx, p), &ListingPO{}, "created_at > ?", since.UTC())
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *ListingRepo) filtered(ctx context.Context, p biz.StorePredicate) *gorm.DB {
	modes := make([]string, len(p.Modes))
	for i, m := range p.Modes {
		modes[i] = string(m)
	}

	return r.db.WithContext(ctx).
		Model(&ListingPO{}).
		Where("status = ?", string(types.StatusActive)).
		Where("mode IN ?", modes).
		Scopes(
			queryScope(p.Query),
			database.ContainsFold("city", p.City),
			database.ContainsFold("model", p.Model),
			database.WhereIf(p.Country != "", "country = ?", p.Country),
			database.WhereIf(p.Category != "", "category = ?", string(p.Category)),
			database.WhereIf(p.BodyType != "", "body_type = ?", string(p.BodyType)),
			database.WhereIf(p.Fuel != "", "fuel = ?", string(p.Fuel)),
			database.WhereIf(p.Gearbox != "", "gearbox = ?", string(p.Gearbox)),
			rangeScope("price", p.Price),
			rangeScope("year", p.Year),
			rangeScope("odometer", p.Odometer),
			rangeScope("power", p.Power),
			registrationScope(p),
			flagScope("service_book", p.ServiceBook),
			flagScope("non_smoker", p.NonSmoker),
			flagScope("warranty", p.Warranty),
			flagScope("damaged", p.Damaged),
			database.WhereIf(p.SponsoredOnly, "sponsored = ?", true),
			database.WhereIf(p.SellerID != "", "seller_id = ?", p.SellerID),
		)
}

func toListings(rows []*ListingPO) []*types.Listing {
	out := make([]*types.Listing, len(rows))
	for i, po := range rows {
		out[i] = po.toListing()
	}
	return out
}

// CreateBatch inserts listings, assigning ids back onto them
func (r *ListingRepo) CreateBatch(ctx context.Context, tx *gorm.DB, listings []*types.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	if tx == nil {
		tx = r.db.DB
	}

	rows := make([]*ListingPO, len(listings))
	for i, l := range listings {
		rows[i] = fromListing(l)
	}
	if err := database.BatchInsert(ctx, tx, &rows, 200); err != nil {
		return err
	}
	for i, po := range rows {
		listings[i].ID = po.ID
		listings[i].CreatedAt = po.CreatedAt
	}
	return nil
}

// sortColumns maps field sort keys onto their column
var sortColumns = map[types.SortKey]string{
	types.SortPriceAsc:  "price",
	types.SortPriceDesc: "price",
	types.SortKmAsc:     "odometer",
	types.SortKmDesc:    "odometer",
	types.SortYearAsc:   "year",
	types.SortYearDesc:  "year",
	types.SortPowerAsc:  "power",
	types.SortPowerDesc: "power",
	types.SortDateAsc:   "created_at",
	types.SortDateDesc:  "created_at",
}

// sortScope orders rows like biz.SortListings, always ending with id
func sortScope(key types.SortKey) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if column, ok := sortColumns[key]; ok {
			desc := strings.HasSuffix(string(key), "_desc")
			db = database.OrderBy(column, desc)(db)
			return database.OrderBy("id", desc)(db)
		}

		db = database.OrderBy("sponsored", true)(db)
		db = db.Order("sponsored_until IS NULL")
		db = database.OrderBy("sponsored_until", true)(db)
		db = database.OrderBy("created_at", true)(db)
		return database.OrderBy("id", true)(db)
	}
}

func queryScope(q string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q == "" {
			return db
		}
		like := "%" + database.EscapeLike(strings.ToLower(q)) + "%"
		return db.Where(
			"(LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(make) LIKE ? ESCAPE '\\' OR LOWER(model) LIKE ? ESCAPE '\\' OR LOWER(trim_level) LIKE ? ESCAPE '\\')",
			like, like, like, like,
		)
	}
}

func rangeScope(column string, r types.IntRange) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if r.Min != nil {
			db = db.Where(column+" >= ?", *r.Min)
		}
		if r.Max != nil {
			db = db.Where(column+" <= ?", *r.Max)
		}
		return db
	}
}

func flagScope(column string, want *bool) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if want == nil {
			return db
		}
		return db.Where(column+" = ?", *want)
	}
}

func registrationScope(p biz.StorePredicate) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.Registered == nil {
			return db
		}
		if !*p.Registered {
			return db.Where("first_registration IS NULL")
		}
		db = db.Where("first_registration IS NOT NULL")
		if p.RegisteredFrom != nil {
			db = db.Where("first_registration >= ?", p.RegisteredFrom.UTC())
		}
		if p.RegisteredBefore != nil {
			db = db.Where("first_registration < ?", p.RegisteredBefore.UTC())
		}
		return db
	}
}
