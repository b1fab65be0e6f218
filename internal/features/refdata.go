package features

// Static reference tables behind the extractors. These are part of the scoring
// contract: changing an entry changes feature values, so treat edits like a
// schema bump.

// Brand holds one entry of the brand impersonation dictionary.
type Brand struct {
	Name    string
	Domains []string
}

// BrandDictionary maps brand keywords to the domains those brands actually
// own. Ordered: the typosquat detector short-circuits on the first qualifying
// match, so iteration order is part of observed behavior.
var BrandDictionary = []Brand{
	{"google", []string{"google.com", "gmail.com", "youtube.com"}},
	{"microsoft", []string{"microsoft.com", "office.com", "outlook.com"}},
	{"apple", []string{"apple.com", "icloud.com"}},
	{"amazon", []string{"amazon.com", "aws.amazon.com"}},
	{"meta", []string{"facebook.com", "instagram.com", "whatsapp.com"}},
	{"paypal", []string{"paypal.com", "paypal.me"}},
	{"bank", []string{"chase.com", "bankofamerica.com", "wellsfargo.com", "citibank.com"}},
	{"investment", []string{"fidelity.com", "vanguard.com", "schwab.com"}},
	{"mail", []string{"yahoo.com", "hotmail.com", "aol.com", "protonmail.com"}},
	{"social", []string{"twitter.com", "linkedin.com", "pinterest.com", "reddit.com"}},
	{"education", []string{"coursera.org", "udemy.com", "edx.org"}},
}

// BrandNames that may legitimately appear in a URL; seeing several of them at
// once in a host is an impersonation signal.
var brandKeywords = []string{
	"google", "gmail", "youtube", "microsoft", "office", "outlook",
	"apple", "icloud", "amazon", "facebook", "instagram", "whatsapp",
	"paypal", "chase", "wellsfargo", "netflix", "ebay",
}

var suspiciousTLDs = map[string]bool{
	"tk": true, "ml": true, "ga": true, "cf": true, "gq": true,
	"xyz": true, "top": true, "club": true, "work": true, "click": true,
	"loan": true, "download": true, "racing": true, "win": true,
	"bid": true, "stream": true, "men": true, "date": true,
}

var phishingKeywords = []string{
	"login", "signin", "verify", "account", "security", "update",
	"confirm", "payment", "secure", "banking", "suspend", "unlock",
	"alert", "invoice", "billing", "webscr",
}

// suspiciousTerms is the deep model's AbnormalURL word list. A strict subset
// of phishingKeywords, kept separate because the trained model saw exactly
// these eight.
var suspiciousTerms = []string{
	"login", "signin", "verify", "account", "security", "update", "confirm", "payment",
}

var shortenerDomains = map[string]bool{
	"bit.ly": true, "tinyurl.com": true, "t.co": true, "goo.gl": true,
	"is.gd": true, "cli.gs": true, "ow.ly": true, "buff.ly": true,
	"rebrand.ly": true, "cutt.ly": true,
}

// homoglyphSubs maps look-alike characters to the letters they imitate.
// '1' imitates both 'l' and 'i', so every combination is tried.
var homoglyphSubs = map[rune][]rune{
	'0': {'o'},
	'1': {'l', 'i'},
	'5': {'s'},
	'3': {'e'},
	'8': {'b'},
}

// httpAllowlist are hosts that legitimately serve plain HTTP; they take no
// legitimacy penalty for the missing TLS.
var httpAllowlist = []string{"example.com", "info.cern.ch", "localhost"}
