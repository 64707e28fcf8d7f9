package rules

// defaultCategories is the built-in category table. Order is priority order:
// the first category with a matching pattern wins.
var defaultCategories = []struct {
	name     string
	patterns []string
}{
	{
		name: "Coffee & Beverages",
		patterns: []string{
			`\bstarbucks?\b`,
			`\bstarbcks?\b`,
			`\bcoffee\b`,
			`\bcafe\b`,
			`\bdunkin\b`,
			`\bpeets?\b`,
		},
	},
	{
		name: "Transportation",
		patterns: []string{
			`\buber\b`,
			`\blyft\b`,
			`\btaxi\b`,
			`\bcab\b`,
			`\bmetro\b`,
			`\bsubway\b`,
			`\btrain\b`,
			`\bbus\b`,
		},
	},
	{
		name: "Restaurant & Dining",
		patterns: []string{
			`\bmcdonalds?\b`,
			`\bmcdonald\b`,
			`\bburger\b`,
			`\bpizza\b`,
			`\brestaurant\b`,
			`\bdining\b`,
			`\bkfc\b`,
			`\bsubway\b`,
		},
	},
	{
		name: "Online Shopping",
		patterns: []string{
			`\bamazon\b`,
			`\bebay\b`,
			`\bshopify\b`,
			`\betsy\b`,
		},
	},
	{
		name: "Groceries",
		patterns: []string{
			`\bwalmart\b`,
			`\btarget\b`,
			`\bcostco\b`,
			`\bwhole\s*foods?\b`,
			`\bgrocery\b`,
			`\bsupermarket\b`,
		},
	},
	{
		name: "Entertainment",
		patterns: []string{
			`\bnetflix\b`,
			`\bspotify\b`,
			`\bhulu\b`,
			`\bdisney\b`,
			`\bcinema\b`,
			`\bmovie\b`,
			`\btheater\b`,
		},
	},
	{
		name: "Gas & Fuel",
		patterns: []string{
			`\bshell\b`,
			`\bchevron\b`,
			`\bexxon\b`,
			`\bmobil\b`,
			`\bgas\s*station\b`,
			`\bfuel\b`,
		},
	},
	{
		name: "Healthcare",
		patterns: []string{
			`\bcvs\b`,
			`\bwalgreens\b`,
			`\bpharmacy\b`,
			`\bdoctor\b`,
			`\bhospital\b`,
			`\bmedical\b`,
		},
	},
}
