package report

// PeriodRequest is the date range of a report, both bounds included
type PeriodRequest struct {
	From string `form:"from" binding:"required,datetime=2006-01-02"`
	To   string `form:"to" binding:"required,datetime=2006-01-02"`
}
