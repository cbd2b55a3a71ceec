package dating

import (
	"net/http"

	"github.com/imadgeboyega/kiekky-matching/internal/common/utils"
)

// RecommendationQueryDTO is the validated query of the recommendations endpoint
type RecommendationQueryDTO struct {
	Limit      int    `validate:"min=1,max=50"`
	Gender     string `validate:"omitempty,max=32"`
	LookingFor string `validate:"omitempty,max=64"`
	Language   string `validate:"omitempty,max=16"`
	Explain    bool
}

func parseRecommendationQuery(r *http.Request, defaultLimit int) RecommendationQueryDTO {
	q := r.URL.Query()
	return RecommendationQueryDTO{
		Limit:      utils.QueryInt(r, "limit", defaultLimit),
		Explain:    utils.QueryBool(r, "explain", false),
		Gender:     q.Get("gender"),
		LookingFor: q.Get("looking_for"),
		Language:   q.Get("language"),
	}
}

func (d RecommendationQueryDTO) options() RecommendOptions {
	return RecommendOptions{
		Limit:   d.Limit,
		Explain: d.Explain,
		Filters: Filters{
			Gender:     d.Gender,
			LookingFor: d.LookingFor,
			Language:   d.Language,
		},
	}
}
