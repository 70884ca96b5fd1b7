package shared

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// PageQuery 分页查询参数
type PageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// Normalize 归一化分页参数
func (q PageQuery) Normalize() (int, int) {
	return NormalizePagination(q.Page, q.PageSize)
}

// NormalizePagination 非法页码取 1，页大小默认 10、最大 50
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
