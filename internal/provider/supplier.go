package provider

import (
	"math"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"product-scout/internal/domain"
)

// RandSource is the randomness behind the cost and demand estimates.
// *rand.Rand satisfies it.
type RandSource interface {
	Float64() float64
	Intn(n int) int
}

// NewRandSource returns a seeded source. A zero seed uses the current time.
func NewRandSource(seed int64) RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

const (
	DefaultSupplierPrice = 5.00
	supplierVariance     = 0.6
)

type basePrice struct {
	token string
	price float64
}

// supplierPrices is matched in order; the first token contained in the
// keyword wins.
var supplierPrices = []basePrice{
	{"phone", 5}, {"case", 2}, {"cable", 1.5}, {"led", 3}, {"light", 4},
	{"speaker", 8}, {"holder", 2}, {"organizer", 3}, {"mat", 5},
	{"bottle", 3}, {"band", 2}, {"brush", 1.5}, {"sunglasses", 3},
	{"jewelry", 2}, {"watch", 8}, {"bluetooth", 6}, {"charging", 2},
	{"ring", 1}, {"clip", 0.80}, {"mount", 3}, {"stand", 2.5},
	{"wireless", 6}, {"earbuds", 7}, {"usb", 1.2},
	{"eyelash", 3.5}, {"makeup", 1.8}, {"scrunchies", 0.5},
	{"blender", 8.5}, {"drawer", 2.8}, {"resistance", 4.5},
	{"ps5", 4}, {"nintendo", 3}, {"switch", 3}, {"gaming", 5},
	{"controller", 3.5}, {"headset", 8}, {"grips", 1.5},
	{"console", 4}, {"cooling", 3}, {"dock", 4.5}, {"vr", 5},
	{"mouse", 3}, {"pad", 1.5}, {"skin", 1.2}, {"cover", 2},
}

// SupplierEstimator guesses a wholesale unit cost from keyword tokens, with
// up to 30% jitter either way.
type SupplierEstimator struct {
	rnd RandSource
}

func NewSupplierEstimator(rnd RandSource) *SupplierEstimator {
	if rnd == nil {
		rnd = NewRandSource(0)
	}
	return &SupplierEstimator{rnd: rnd}
}

func (e *SupplierEstimator) Estimate(keyword string) float64 {
	lower := strings.ToLower(keyword)
	for _, bp := range supplierPrices {
		if strings.Contains(lower, bp.token) {
			variance := (e.rnd.Float64() - 0.5) * supplierVariance
			return roundCents(bp.price * (1 + variance))
		}
	}
	return DefaultSupplierPrice
}

// CompetitionFor tiers a keyword by how many listings sold.
func CompetitionFor(soldCount int) domain.Competition {
	switch {
	case soldCount > 300:
		return domain.CompetitionHigh
	case soldCount > 100:
		return domain.CompetitionMedium
	default:
		return domain.CompetitionLow
	}
}

type supplierSource struct {
	name       string
	searchURL  string
	multiplier float64
}

var supplierSources = []supplierSource{
	{"aliexpress", "https://www.aliexpress.com/wholesale?SearchText=%s", 1},
	{"alibaba", "https://www.alibaba.com/trade/search?SearchText=%s", 0.8},
	{"dhgate", "https://www.dhgate.com/wholesale/search.do?act=search&searchkey=%s", 0.9},
	{"banggood", "https://www.banggood.com/search/%s.html", 1},
	{"temu", "https://www.temu.com/search_result.html?search_key=%s", 0.85},
	{"amazon", "https://www.amazon.com/s?k=%s", 1.3},
	{"walmart", "https://www.walmart.com/search?q=%s", 1.2},
}

// SupplierLinks lists supplier searches for keyword with each source's
// price estimate scaled from base.
func SupplierLinks(keyword string, base float64) []domain.SupplierOffer {
	encoded := url.PathEscape(keyword)
	offers := make([]domain.SupplierOffer, 0, len(supplierSources))
	for _, src := range supplierSources {
		offers = append(offers, domain.SupplierOffer{
			Source:         src.name,
			URL:            strings.Replace(src.searchURL, "%s", encoded, 1),
			EstimatedPrice: roundCents(base * src.multiplier),
		})
	}
	return offers
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
