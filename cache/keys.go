package cache

// Fixed keys for aggregate reads.
const (
	AllProductsKey    = "all-products"
	LatestProductsKey = "latest-products"
	CategoriesKey     = "categories"
	AllOrdersKey      = "all-orders"
	AdminStatsKey     = "admin-stats"
)

func ProductKey(id string) string      { return "product-" + id }
func OrderKey(id string) string        { return "order-" + id }
func MyOrdersKey(userID string) string { return "my-orders-" + userID }
