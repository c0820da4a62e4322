package table

// Pages tracks the pagination state of one list view. The invariant held
// after every mutator is 1 <= page <= max(1, totalPages). Sorting is tracked
// separately and never moves the page.
type Pages struct {
	page       int
	pageSize   int
	totalItems int
}

func NewPages(pageSize int) *Pages {
	if pageSize < 1 {
		pageSize = 1
	}
	return &Pages{page: 1, pageSize: pageSize}
}

func (p *Pages) Page() int       { return p.page }
func (p *Pages) PageSize() int   { return p.pageSize }
func (p *Pages) TotalItems() int { return p.totalItems }

func (p *Pages) TotalPages() int {
	if p.totalItems == 0 {
		return 0
	}
	return (p.totalItems + p.pageSize - 1) / p.pageSize
}

// Offset is the number of rows to skip for the current page.
func (p *Pages) Offset() int {
	return (p.page - 1) * p.pageSize
}

// SetPage clamps n into [1, max(1, totalPages)].
func (p *Pages) SetPage(n int) {
	p.page = n
	p.clamp()
}

// SetPageSize recomputes the page count for the new size and re-clamps the
// current page. Sizes below 1 are ignored.
func (p *Pages) SetPageSize(n int) {
	if n < 1 {
		return
	}
	p.pageSize = n
	p.clamp()
}

// SetTotal installs a fresh total (from a count query) and re-clamps.
func (p *Pages) SetTotal(total int) {
	if total < 0 {
		total = 0
	}
	p.totalItems = total
	p.clamp()
}

// SetFilter is called when the active filter set changes: the page always
// resets to 1 and the filtered total replaces the old one.
func (p *Pages) SetFilter(total int) {
	p.page = 1
	p.SetTotal(total)
}

func (p *Pages) clamp() {
	max := p.TotalPages()
	if max < 1 {
		max = 1
	}
	if p.page > max {
		p.page = max
	}
	if p.page < 1 {
		p.page = 1
	}
}
