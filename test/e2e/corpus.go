// Package e2e provides end-to-end tests driving the full profile pipeline
// over a large classification table and realistic browsing sessions.
package e2e

// Session is a browsing-history fragment with the expected classification
// outcome. Unknown and malformed entries must be skipped, never counted.
type Session struct {
	Name string
	URLs []string
	// Expected maps category names to the counts this session adds to an
	// empty profile.
	Expected map[string]uint32
}

// Corpus holds a classification table and browsing sessions for E2E tests.
type Corpus struct {
	// Domains maps registrable domains to category names, covering every
	// category in the taxonomy.
	Domains       map[string]string
	Sessions      []Session
	TotalDomains  int
	TotalSessions int
}

// BuildCorpus returns a classification table spanning the whole taxonomy and
// browsing sessions whose expected profiles are derived from that table.
func BuildCorpus() *Corpus {
	domains := buildDomains()
	sessions := buildSessions()
	return &Corpus{
		Domains:       domains,
		Sessions:      sessions,
		TotalDomains:  len(domains),
		TotalSessions: len(sessions),
	}
}

func buildDomains() map[string]string {
	return map[string]string{
		"petfinder.com":        "animals",
		"chewy.com":            "animals",
		"nationalzoo.si.edu":   "animals",
		"metmuseum.org":        "arts",
		"deviantart.com":       "arts",
		"playbill.com":         "arts",
		"caranddriver.com":     "autos",
		"edmunds.com":          "autos",
		"autotrader.com":       "autos",
		"forbes.com":           "business",
		"hbr.org":              "business",
		"inc.com":              "business",
		"indeed.com":           "career",
		"glassdoor.com":        "career",
		"linkedin.com":         "career",
		"coursera.org":         "education",
		"khanacademy.org":      "education",
		"edx.org":              "education",
		"vogue.com":            "fashion",
		"gq.com":               "fashion",
		"asos.com":             "fashion",
		"bloomberg.com":        "finance",
		"fool.com":             "finance",
		"nerdwallet.com":       "finance",
		"allrecipes.com":       "food",
		"foodnetwork.com":      "food",
		"epicurious.com":       "food",
		"seriouseats.com":      "food",
		"usa.gov":              "government",
		"irs.gov":              "government",
		"whitehouse.gov":       "government",
		"ravelry.com":          "hobbies",
		"boardgamegeek.com":    "hobbies",
		"thingiverse.com":      "hobbies",
		"houzz.com":            "home",
		"homedepot.com":        "home",
		"thespruce.com":        "home",
		"cnn.com":              "news",
		"nytimes.com":          "news",
		"reuters.com":          "news",
		"apnews.com":           "news",
		"zillow.com":           "real_estate",
		"realtor.com":          "real_estate",
		"redfin.com":           "real_estate",
		"change.org":           "society",
		"snopes.com":           "society",
		"pewresearch.org":      "society",
		"espn.com":             "sports",
		"nba.com":              "sports",
		"mlb.com":              "sports",
		"skysports.com":        "sports",
		"github.com":           "tech",
		"stackoverflow.com":    "tech",
		"arstechnica.com":      "tech",
		"lobste.rs":            "tech",
		"booking.com":          "travel",
		"tripadvisor.com":      "travel",
		"lonelyplanet.com":     "travel",
		"reddit.com":           "inconclusive",
		"twitter.com":          "inconclusive",
	}
}

func buildSessions() []Session {
	return []Session{
		{
			Name: "sports weekend",
			URLs: []string{
				"https://espn.com/nba/story/_/id/12345",
				"https://www.espn.com/nfl/scoreboard",
				"https://nba.com/games",
				"https://stats.nba.com/player/2544",
				"https://mlb.com/scores",
				"https://no-such-domain-xyzzy.example/page",
				"not a url at all",
			},
			Expected: map[string]uint32{"sports": 5},
		},
		{
			Name: "cooking evening",
			URLs: []string{
				"https://allrecipes.com/recipe/10813/best-chocolate-chip-cookies/",
				"https://www.allrecipes.com/recipes/80/main-dish/",
				"https://foodnetwork.com/recipes/alton-brown",
				"https://epicurious.com/recipes-menus",
			},
			Expected: map[string]uint32{"food": 4},
		},
		{
			Name: "mixed morning",
			URLs: []string{
				"https://cnn.com/us/politics",
				"https://nytimes.com/section/world",
				"https://bloomberg.com/markets",
				"https://github.com/golang/go/issues",
				"https://docs.github.com/en/actions",
			},
			Expected: map[string]uint32{"news": 2, "finance": 1, "tech": 2},
		},
		{
			Name: "house hunting",
			URLs: []string{
				"https://zillow.com/homes/for_sale/",
				"https://www.zillow.com/seattle-wa/",
				"https://realtor.com/realestateandhomes-search",
				"https://homedepot.com/b/Appliances",
			},
			Expected: map[string]uint32{"real_estate": 3, "home": 1},
		},
		{
			Name: "portal browsing",
			URLs: []string{
				"https://reddit.com/r/golang",
				"https://reddit.com/r/cooking",
				"https://twitter.com/home",
			},
			Expected: map[string]uint32{"inconclusive": 3},
		},
		{
			Name: "nothing classifiable",
			URLs: []string{
				"https://unknown-site-one.example/a",
				"https://unknown-site-two.example/b",
				"://broken",
			},
			Expected: map[string]uint32{},
		},
	}
}
