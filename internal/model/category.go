package model

// Supported interview categories.
const (
	CategoryFrontend  = "前端开发"
	CategoryBackend   = "后端开发"
	CategoryAlgorithm = "算法工程师"
	CategoryTesting   = "测试开发"
	CategoryProduct   = "产品经理"
	CategoryData      = "数据分析"
	CategoryDevOps    = "运维开发"
	CategoryMobile    = "移动开发"
)

// AllCategories returns the supported categories in display order.
func AllCategories() []string {
	return []string{
		CategoryFrontend,
		CategoryBackend,
		CategoryAlgorithm,
		CategoryTesting,
		CategoryProduct,
		CategoryData,
		CategoryDevOps,
		CategoryMobile,
	}
}
