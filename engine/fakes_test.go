package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"rtn-loyalty-tier3/models"
	"rtn-loyalty-tier3/repository"
)

// fakeRepo is an in-memory stand-in for every repository contract the
// engine writes through.
type fakeRepo struct {
	mu sync.Mutex

	counts        map[string]int
	profiles      map[string]*models.CustomerProfile
	cidOwners     map[string]string
	validationLog []models.ValidationLogEntry
	avtRecords    []models.AVTRecord
	savedHeaders  []models.TransactionRecord
	savedLines    [][]models.TransactionLineRecord

	products []models.Product
	rules    []models.AllowanceRule

	failCounts bool
	failAVT    bool
	failSave   bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		counts:    make(map[string]int),
		profiles:  make(map[string]*models.CustomerProfile),
		cidOwners: make(map[string]string),
	}
}

var (
	_ repository.CustomerRepositoryInterface      = (*fakeRepo)(nil)
	_ repository.DailyCountRepositoryInterface    = (*fakeRepo)(nil)
	_ repository.ValidationLogRepositoryInterface = (*fakeRepo)(nil)
	_ repository.AVTRepositoryInterface           = (*fakeRepo)(nil)
	_ repository.TransactionRepositoryInterface   = (*fakeRepo)(nil)
	_ repository.CatalogRepositoryInterface       = (*fakeRepo)(nil)
	_ repository.AllowanceRepositoryInterface     = (*fakeRepo)(nil)
)

func (f *fakeRepo) IncrementAndGet(ctx context.Context, loyaltyID, transactionDate string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCounts {
		return 0, errors.New("daily counts unavailable")
	}
	key := loyaltyID + "|" + transactionDate
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeRepo) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	return 0, nil
}

func (f *fakeRepo) UpsertOnVisit(ctx context.Context, loyaltyID, cidCustomerID, formatType, storeID string, isManagerCard bool) (*models.CustomerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if owner, taken := f.cidOwners[cidCustomerID]; taken && owner != loyaltyID {
		return nil, repository.ErrCIDCollision
	}

	now := time.Now()
	profile, ok := f.profiles[loyaltyID]
	if !ok {
		profile = &models.CustomerProfile{
			LoyaltyID:     loyaltyID,
			CIDCustomerID: cidCustomerID,
			FormatType:    formatType,
			StoreID:       storeID,
			FirstSeen:     now,
		}
		f.profiles[loyaltyID] = profile
		f.cidOwners[cidCustomerID] = loyaltyID
	}
	// first_seen, cid and store keep their first-sighting values; the
	// manager-card flag is sticky, matching the SQL upsert.
	profile.LastSeen = now
	profile.TotalTransactions++
	profile.IsManagerCard = profile.IsManagerCard || isManagerCard

	clone := *profile
	return &clone, nil
}

func (f *fakeRepo) MarkAVTVerified(ctx context.Context, loyaltyID string, when time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[loyaltyID]; ok {
		p.AVTVerified = true
		p.LastAVTVerified = &when
	}
	return nil
}

func (f *fakeRepo) Append(ctx context.Context, entry *models.ValidationLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validationLog = append(f.validationLog, *entry)
	return nil
}

func (f *fakeRepo) Insert(ctx context.Context, rec *models.AVTRecord) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAVT {
		return 0, errors.New("avt store unavailable")
	}
	f.avtRecords = append(f.avtRecords, *rec)
	return int64(len(f.avtRecords)), nil
}

func (f *fakeRepo) SaveDecision(ctx context.Context, rec *models.TransactionRecord, lines []models.TransactionLineRecord) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return 0, errors.New("transaction store unavailable")
	}
	f.savedHeaders = append(f.savedHeaders, *rec)
	f.savedLines = append(f.savedLines, lines)
	return int64(len(f.savedHeaders)), nil
}

// ResolveUPC mirrors the SQL resolution order: carton, then pack, then
// suppressed carton.
func (f *fakeRepo) ResolveUPC(ctx context.Context, upc string) (*models.UPCMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.products {
		if f.products[i].CartonUPC == upc {
			p := f.products[i]
			return &models.UPCMatch{Product: &p, UOM: models.UOMCarton, MatchedField: models.UPCFieldCarton, IsPromotional: p.CartonIsPromotional}, nil
		}
	}
	for i := range f.products {
		if f.products[i].PackUPC == upc {
			p := f.products[i]
			return &models.UPCMatch{Product: &p, UOM: models.UOMPack, MatchedField: models.UPCFieldPack, IsPromotional: p.PackIsPromotional}, nil
		}
	}
	for i := range f.products {
		if f.products[i].CartonSuppressedUPC == upc {
			p := f.products[i]
			return &models.UPCMatch{Product: &p, UOM: models.UOMCarton, MatchedField: models.UPCFieldCartonSuppressed, IsPromotional: p.CartonIsPromotional}, nil
		}
	}
	return &models.UPCMatch{UOM: models.UOMPack, Unknown: true}, nil
}

func (f *fakeRepo) UpsertProducts(ctx context.Context, skus []models.FeedSKU) (int, int, error) {
	return len(skus), 0, nil
}

func (f *fakeRepo) ActiveRules(ctx context.Context, day time.Time) ([]models.AllowanceRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AllowanceRule
	for _, r := range f.rules {
		if r.ActiveOn(day) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) ReplaceAllowances(ctx context.Context, allowances []models.FeedAllowance) (int, int, error) {
	return len(allowances), 0, nil
}

// Fixtures shared across stage tests.

var testDay = time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC)

func newTestEngine(repo *fakeRepo) *Engine {
	return NewEngine(Dependencies{
		Customers:    repo,
		DailyCounts:  repo,
		Validations:  repo,
		AVT:          repo,
		Transactions: repo,
		Catalog:      repo,
		Allowances:   repo,
	}, Config{
		DefaultLoyaltyDiscount: d("0.97"),
		DailyManagerCardCap:    5,
		Now:                    func() time.Time { return testDay },
	})
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func marlboroPack() models.Product {
	return models.Product{
		SKUGUID:      "SKU-MARL-GOLD",
		SKUName:      "MARLBORO GOLD PACK",
		Brand:        "MARLBORO",
		Manufacturer: "PM USA",
		Category:     "CIG",
		CartonUPC:    "00028200003850",
		PackUPC:      "028200003843",
	}
}

func loyaltyRule(id int64, amount string, skuguids ...string) models.AllowanceRule {
	return models.AllowanceRule{
		ID:                         id,
		AllowanceType:              models.AllowanceTypeLoyalty,
		MinQty:                     1,
		MaxAllowancePerTransaction: decimal.NewNullDecimal(d(amount)),
		StartDate:                  testDay.AddDate(0, -1, 0),
		EndDate:                    testDay.AddDate(0, 1, 0),
		Active:                     true,
		SKUGUIDs:                   skuguids,
	}
}

func couponRule(id int64, amount string, skuguids ...string) models.AllowanceRule {
	return models.AllowanceRule{
		ID:                       id,
		AllowanceType:            models.AllowanceTypeManufacturerCoupon,
		MinQty:                   1,
		ManufacturerFundedAmount: decimal.NewNullDecimal(d(amount)),
		StartDate:                testDay.AddDate(0, -1, 0),
		EndDate:                  testDay.AddDate(0, 1, 0),
		Active:                   true,
		SKUGUIDs:                 skuguids,
	}
}

func rewardsRequest(loyaltyID, avt string, lines ...models.RawLine) *models.RewardsRequest {
	return &models.RewardsRequest{
		StoreID:       "STORE-042",
		TransactionID: fmt.Sprintf("TX-%s", testDay.Format("20060102")),
		CashierID:     "C17",
		LoyaltyID:     loyaltyID,
		AVTStatus:     avt,
		Lines:         lines,
	}
}

func packLine(num, qty int, price string) models.RawLine {
	return models.RawLine{
		LineNumber: num,
		UPC:        "028200003843",
		Quantity:   qty,
		UnitPrice:  d(price),
	}
}
