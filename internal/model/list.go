package model

// ListQuery is the common shape of every admin list request. Filters are
// applied server-side by the repository; sorting applies to the returned page
// only and never triggers a refetch.
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
	Status   string
	SortBy   string
	SortDir  string

	// Kind-specific filters.
	QuestionId string
	Featured   *bool
}

type PageInfo struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

type PostListResponse struct {
	Data []PostResponse `json:"data"`
	Page PageInfo       `json:"page"`
}

type QuestionListResponse struct {
	Data []QuestionResponse `json:"data"`
	Page PageInfo           `json:"page"`
}

type AnswerListResponse struct {
	Data []AnswerResponse `json:"data"`
	Page PageInfo         `json:"page"`
}

type CommentListResponse struct {
	Data []CommentResponse `json:"data"`
	Page PageInfo          `json:"page"`
}

type ReportListResponse struct {
	Data []ReportResponse `json:"data"`
	Page PageInfo         `json:"page"`
}

type StatusTransitionRequest struct {
	ToStatus string `json:"toStatus"`

	// Confirmed acknowledges a cascade when the target status is a comment
	// soft delete; ignored for every other transition.
	Confirmed bool `json:"confirmed"`
}
