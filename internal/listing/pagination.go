package listing

// Pagination is the uniform page metadata every list response carries. It is
// derived from (total, perPage, page) on every query result and never
// mutated independently of one.
type Pagination struct {
	TotalItems      int64 `json:"totalItems"`
	ItemsPerPage    int   `json:"itemsPerPage"`
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	StartIndex      int   `json:"startIndex"`
	EndIndex        int   `json:"endIndex"`
}

// NewPagination computes page metadata. totalPages = ceil(total/perPage);
// the current page is clamped to [1, max(totalPages, 1)].
func NewPagination(totalItems int64, itemsPerPage, currentPage int) Pagination {
	if itemsPerPage < 1 {
		itemsPerPage = 1
	}

	totalPages := int((totalItems + int64(itemsPerPage) - 1) / int64(itemsPerPage))

	maxPage := totalPages
	if maxPage < 1 {
		maxPage = 1
	}
	if currentPage < 1 {
		currentPage = 1
	}
	if currentPage > maxPage {
		currentPage = maxPage
	}

	startIndex := (currentPage - 1) * itemsPerPage
	endIndex := startIndex + itemsPerPage - 1
	if int64(endIndex) >= totalItems {
		endIndex = int(totalItems) - 1
	}
	if totalItems == 0 {
		startIndex = 0
		endIndex = -1
	}

	return Pagination{
		TotalItems:      totalItems,
		ItemsPerPage:    itemsPerPage,
		CurrentPage:     currentPage,
		TotalPages:      totalPages,
		HasNextPage:     currentPage < totalPages,
		HasPreviousPage: currentPage > 1,
		StartIndex:      startIndex,
		EndIndex:        endIndex,
	}
}
