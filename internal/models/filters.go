package models

// TripFilter represents pagination parameters for listing trips
type TripFilter struct {
	Skip  int `form:"skip,default=0" binding:"min=0"`
	Limit int `form:"limit,default=100" binding:"min=1,max=1000"`
}

// TrendFilter represents parameters for the trend aggregation window
type TrendFilter struct {
	Limit int `form:"limit,default=10" binding:"min=1,max=100"`
}
