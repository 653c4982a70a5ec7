package views

// PredictionRequest documents the body of POST /predict. The handler validates the raw JSON object
// against features.CreditRisk rather than binding into this struct.
type PredictionRequest struct {
	ExtSource3             float64 `json:"EXT_SOURCE_3" example:"0.5"`
	ExtSource2             float64 `json:"EXT_SOURCE_2" example:"0.6"`
	FlagPhone              int     `json:"FLAG_PHONE" example:"1"`
	RegCityNotWorkCity     int     `json:"REG_CITY_NOT_WORK_CITY" example:"0"`
	RegionRatingClient     int     `json:"REGION_RATING_CLIENT" example:"2"`
	AmtReqCreditBureauYear float64 `json:"AMT_REQ_CREDIT_BUREAU_YEAR" example:"1"`
}

// PredictionResult is the body of a successful POST /predict.
type PredictionResult struct {
	// 0 = repaid, 1 = default
	Prediction int `json:"prediction" example:"0"`
	// Probability of the default class, rounded to 4 decimals.
	ProbabilityOfDefault float64 `json:"probability_of_default" example:"0.1234"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string `json:"status" example:"ok"`
	ModelLoaded bool   `json:"model_loaded" example:"true"`
}
