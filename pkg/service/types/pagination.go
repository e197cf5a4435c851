package types

type Pagination struct {
	Page     uint64 `json:"page"`
	PageSize uint64 `json:"page_size"`
}

const DefaultPageSize = 100
const DefaultPage = 0

func NewDefaultPagination() *Pagination {
	return &Pagination{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}
}

func (p *Pagination) Load(pageNumber uint64, pageSize uint64) {
	p.Page = pageNumber
	if pageSize > 0 {
		p.PageSize = pageSize
	}
}

// Range returns the half open [start, end) window of the current page clamped
// to total. ok is false once the page lies past the end.
func (p *Pagination) Range(total uint64) (start uint64, end uint64, ok bool) {
	start = p.Page * p.PageSize
	if p.PageSize == 0 || start >= total {
		return 0, 0, false
	}
	end = min(start+p.PageSize, total)
	return start, end, true
}

func (p *Pagination) Next() {
	p.Page++
}
