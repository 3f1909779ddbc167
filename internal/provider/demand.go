package provider

import (
	"math"

	"product-scout/internal/domain"
)

// DemandEstimator produces trend and social-proof scores. No live source is
// queried; the figures are drawn from the random source.
type DemandEstimator struct {
	rnd RandSource
}

func NewDemandEstimator(rnd RandSource) *DemandEstimator {
	if rnd == nil {
		rnd = NewRandSource(0)
	}
	return &DemandEstimator{rnd: rnd}
}

func (d *DemandEstimator) Estimate(keyword string) domain.Demand {
	trend := d.rnd.Intn(100)
	dem := domain.Demand{
		TrendScore:     trend,
		IsViral:        trend > 70,
		TrendStatus:    trendStatus(trend),
		GoogleTrends:   d.rnd.Intn(100),
		RedditMentions: d.rnd.Intn(200),
		InstagramPosts: d.rnd.Intn(50000),
		AmazonReviews:  d.rnd.Intn(5000),
		AmazonRating:   math.Round((3.5+d.rnd.Float64()*1.5)*10) / 10,
	}

	score := int(math.Floor(
		float64(dem.GoogleTrends)*0.3 +
			float64(dem.RedditMentions)/2*0.15 +
			float64(dem.InstagramPosts)/500*0.15 +
			float64(dem.AmazonReviews)/50*0.2 +
			dem.AmazonRating/5*100*0.2,
	))
	dem.DemandScore = min(100, score)
	dem.Validation = validation(score)
	return dem
}

func trendStatus(score int) string {
	switch {
	case score > 70:
		return "viral"
	case score > 40:
		return "trending"
	default:
		return "normal"
	}
}

func validation(score int) string {
	switch {
	case score > 70:
		return "high_demand"
	case score > 40:
		return "moderate_demand"
	default:
		return "low_demand"
	}
}
