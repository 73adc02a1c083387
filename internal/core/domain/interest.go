package domain

// CategoryGeneral is assigned when no interest bucket matches.
const CategoryGeneral = "general_interest"

// ExcludedDomains are logistics sites that never describe an interest.
var ExcludedDomains = map[string]struct{}{
	"accounts.google.com": {},
	"mail.google.com":     {},
	"calendar.google.com": {},
	"drive.google.com":    {},
	"docs.google.com":     {},
	"sheets.google.com":   {},
	"meet.google.com":     {},
	"zoom.us":             {},
	"slack.com":           {},
	"app.slack.com":       {},
	"notion.so":           {},
	"dropbox.com":         {},
	"box.com":             {},
	"okta.com":            {},
	"onelogin.com":        {},
	"microsoftonline.com": {},
	"login.live.com":      {},
	"apple.com":           {},
	"icloud.com":          {},
	"paypal.com":          {},
	"chase.com":           {},
	"bankofamerica.com":   {},
	"wellsfargo.com":      {},
	"amazon.com":          {},
	"ebay.com":            {},
	"bestbuy.com":         {},
	"fedex.com":           {},
	"ups.com":             {},
	"dhl.com":             {},
}

// ExcludedKeywords mark logistical pages when found in a title or URL.
var ExcludedKeywords = []string{
	"login", "sign in", "signin", "signup", "account", "settings", "help",
	"support", "privacy", "terms", "checkout", "cart", "order", "tracking",
	"dashboard", "home", "inbox", "calendar", "drive", "docs", "download",
	"oauth", "sso", "auth", "billing", "receipt",
}

// InterestBucket is a named group of interest keywords.
type InterestBucket struct {
	Name     string
	Keywords []string
}

// InterestBuckets are checked in order; the first match wins when categorising.
var InterestBuckets = []InterestBucket{
	{
		Name: "math_ai",
		Keywords: []string{
			"math", "algebra", "calculus", "probability", "statistics", "graph theory",
			"machine learning", "ml", "deep learning", "neural", "transformer",
			"llm", "reinforcement learning", "optimization", "bayesian", "arxiv",
			"pytorch", "tensorflow", "jax", "rag", "vector db", "embedding",
		},
	},
	{
		Name: "philosophy_ethics",
		Keywords: []string{
			"philosophy", "ethics", "morality", "moral", "epistemology",
			"metaphysics", "stoicism", "kant", "nietzsche", "utilitarian",
			"virtue", "deontology", "free will", "consciousness",
		},
	},
	{
		Name: "arts_gaming",
		Keywords: []string{
			"art", "painting", "gallery", "music", "album", "composer", "film",
			"cinema", "photography", "design", "architecture", "theatre", "gaming",
			"video game", "steam", "nintendo", "playstation", "xbox", "indie game",
		},
	},
}
