package catalog

// Default returns the built-in retail template set. Order matters: the
// first matching template wins, so the more specific patterns sit above the
// generic ones.
func Default() *Catalog {
	c, err := New(defaultTemplates...)
	if err != nil {
		// The built-in set is validated by tests; a broken entry is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return c
}

var defaultTemplates = []Template{
	{
		ID:       "top_stores",
		Triggers: [][]string{{"top", "best", "highest"}, {"store"}},
		Defaults: map[string]string{"top_n": "5"},
		Kinds:    map[string]PlaceholderKind{"top_n": KindInt},
		SQL: `SELECT s.store_name, s.store_region, SUM(f.total_amount) AS total_revenue
FROM fact_sales f
JOIN dim_store s ON f.store_id = s.store_id
GROUP BY s.store_name, s.store_region
ORDER BY total_revenue DESC
LIMIT {top_n}`,
	},
	{
		ID:       "top_products",
		Triggers: [][]string{{"top", "best", "highest"}, {"product"}},
		Defaults: map[string]string{"top_n": "10"},
		Kinds:    map[string]PlaceholderKind{"top_n": KindInt},
		SQL: `SELECT p.product_name, p.product_category, SUM(f.total_amount) AS total_sales
FROM fact_sales f
JOIN dim_product p ON f.product_id = p.product_id
GROUP BY p.product_name, p.product_category
ORDER BY total_sales DESC
LIMIT {top_n}`,
	},
	{
		ID:       "sales_by_category",
		Triggers: [][]string{{"category", "categories"}, {"sales", "revenue", "performance"}},
		SQL: `SELECT p.product_category,
       COUNT(*) AS transaction_count,
       SUM(f.total_amount) AS total_revenue,
       AVG(f.total_amount) AS avg_order_value
FROM fact_sales f
JOIN dim_product p ON f.product_id = p.product_id
GROUP BY p.product_category
ORDER BY total_revenue DESC`,
	},
	{
		ID:       "revenue_time_range",
		Triggers: [][]string{{"total revenue", "total sales", "sum of sales", "revenue", "sales"}},
		Requires: []string{"time_range"},
		SQL: `SELECT SUM(total_amount) AS total_revenue
FROM fact_sales
WHERE {time_range}`,
	},
	{
		ID:       "revenue_all_time",
		Triggers: [][]string{{"total revenue", "total sales", "sum of sales"}},
		SQL:      `SELECT SUM(total_amount) AS total_revenue FROM fact_sales`,
	},
	{
		ID:       "count_sales",
		Triggers: [][]string{{"how many", "count", "total number", "number of"}, {"sales", "transaction", "record", "order"}},
		SQL:      `SELECT COUNT(*) AS total_count FROM fact_sales`,
	},
	{
		ID:       "count_products",
		Triggers: [][]string{{"how many", "count", "total number", "number of"}, {"product"}},
		SQL:      `SELECT COUNT(*) AS product_count FROM dim_product`,
	},
	{
		ID:       "count_stores",
		Triggers: [][]string{{"how many", "count", "total number", "number of"}, {"store"}},
		SQL:      `SELECT COUNT(*) AS store_count FROM dim_store`,
	},
	{
		ID:       "average_sale",
		Triggers: [][]string{{"average", "avg"}, {"sales", "revenue", "amount", "order value", "transaction"}},
		SQL:      `SELECT AVG(total_amount) AS average_sale FROM fact_sales`,
	},
	{
		ID:       "list_sales",
		Triggers: [][]string{{"show sales", "show all sales", "list sales", "recent sales"}},
		SQL:      `SELECT * FROM fact_sales ORDER BY sale_date DESC LIMIT 20`,
	},
	{
		ID:       "list_products",
		Triggers: [][]string{{"show products", "show all products", "list products"}},
		SQL:      `SELECT * FROM dim_product LIMIT 20`,
	},
	{
		ID:       "list_stores",
		Triggers: [][]string{{"show stores", "show all stores", "list stores"}},
		SQL:      `SELECT * FROM dim_store LIMIT 20`,
	},
}
